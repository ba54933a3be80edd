// Package artwork хранит обложки треков в виде файлов {images}/{ключ}.{расширение}
package artwork

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hazadus/go-jukebox/internal/library"
)

// ErrUnsupportedFormat возвращается для изображений неизвестного формата
var ErrUnsupportedFormat = errors.New("неподдерживаемый формат изображения")

// Extensions - поддерживаемые расширения в порядке поиска
var Extensions = []string{".gif", ".png", ".jpg", ".jpeg"}

// Store - директория с обложками
type Store struct {
	dir string
}

// NewStore создает хранилище обложек в указанной директории
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir возвращает директорию хранилища
func (s *Store) Dir() string {
	return s.dir
}

// Path возвращает путь к обложке трека, если она есть
func (s *Store) Path(key string) (string, bool) {
	for _, ext := range Extensions {
		path := filepath.Join(s.dir, key+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// NormalizeExt приводит расширение к виду ".png" и проверяет, что оно поддерживается.
// Принимает также MIME-тип вида "image/png".
func NormalizeExt(ext string) (string, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.TrimPrefix(ext, "image/")
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if !slices.Contains(Extensions, ext) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return ext, nil
}

// Save записывает обложку трека, заменяя существующую
func (s *Store) Save(key, ext string, data []byte) (string, error) {
	ext, err := NormalizeExt(ext)
	if err != nil {
		return "", err
	}
	if err := s.Remove(key); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("ошибка создания директории обложек: %w", err)
	}

	path := filepath.Join(s.dir, key+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("ошибка записи обложки: %w", err)
	}
	return path, nil
}

// Remove удаляет все обложки трека; отсутствие файлов не ошибка
func (s *Store) Remove(key string) error {
	var errs []error
	for _, ext := range Extensions {
		err := os.Remove(filepath.Join(s.dir, key+ext))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("ошибка удаления обложки %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Renumber переименовывает обложки вслед за перенумерацией каталога.
// Переименования выполняются по возрастанию старого ключа: новый ключ всегда меньше
// старого, поэтому целевой файл к этому моменту уже освобожден.
func (s *Store) Renumber(renames map[string]string) error {
	oldKeys := make([]string, 0, len(renames))
	for old := range renames {
		oldKeys = append(oldKeys, old)
	}
	slices.SortFunc(oldKeys, func(a, b string) int {
		return library.KeyPosition(a) - library.KeyPosition(b)
	})

	var errs []error
	for _, old := range oldKeys {
		newKey := renames[old]
		for _, ext := range Extensions {
			from := filepath.Join(s.dir, old+ext)
			if _, err := os.Stat(from); err != nil {
				continue
			}
			if err := os.Rename(from, filepath.Join(s.dir, newKey+ext)); err != nil {
				errs = append(errs, fmt.Errorf("ошибка переименования обложки %s -> %s: %w", old, newKey, err))
			}
		}
	}
	return errors.Join(errs...)
}
