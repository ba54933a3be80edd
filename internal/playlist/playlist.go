// Package playlist содержит именованные плейлисты - упорядоченные подмножества ключей каталога
package playlist

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Значения флага участия в воспроизведении в файле плейлиста
const (
	flagIncluded = "1"
	flagExcluded = "0"
	fileExt      = ".csv"
)

var (
	// ErrDuplicate возвращается при повторном добавлении ключа в плейлист
	ErrDuplicate = errors.New("трек уже есть в плейлисте")
	// ErrInvalidName возвращается для пустого имени или имени с разделителями пути
	ErrInvalidName = errors.New("недопустимое имя плейлиста")
)

// Catalog - то, что плейлисту нужно от каталога треков
type Catalog interface {
	Has(key string) bool
	IncrementPlayCount(key string)
}

// Entry - элемент плейлиста
type Entry struct {
	Key      string
	Included bool
}

// Playlist хранит элементы одного плейлиста и путь к его файлу
type Playlist struct {
	name    string
	dir     string
	entries []Entry
	pruned  []string
}

// New создает пустой плейлист
func New(dir, name string) (*Playlist, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &Playlist{name: name, dir: dir}, nil
}

// ValidateName проверяет, что имя плейлиста годится для имени файла
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Load читает плейлист из {dir}/{name}.csv. Отсутствие файла - не ошибка, а пустой плейлист.
// Строки с ключами, которых нет в каталоге, отбрасываются.
func Load(dir, name string, catalog Catalog) (*Playlist, error) {
	p, err := New(dir, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return nil, fmt.Errorf("ошибка чтения плейлиста: %w", err)
	}

	if err := p.decode(bytes.NewReader(data), catalog); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Playlist) decode(r io.Reader, catalog Catalog) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("ошибка разбора плейлиста %s: %w", p.name, err)
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}

		key := record[0]
		if !catalog.Has(key) || p.indexOf(key) >= 0 {
			p.pruned = append(p.pruned, key)
			continue
		}
		// Строка без флага считается включенной
		included := len(record) < 2 || record[1] == flagIncluded
		p.entries = append(p.entries, Entry{Key: key, Included: included})
	}
}

// Name возвращает имя плейлиста
func (p *Playlist) Name() string {
	return p.name
}

// Path возвращает путь к файлу плейлиста
func (p *Playlist) Path() string {
	return filepath.Join(p.dir, p.name+fileExt)
}

// Entries возвращает копию элементов плейлиста
func (p *Playlist) Entries() []Entry {
	return slices.Clone(p.entries)
}

// Len возвращает количество элементов
func (p *Playlist) Len() int {
	return len(p.entries)
}

// Contains сообщает, есть ли ключ в плейлисте
func (p *Playlist) Contains(key string) bool {
	return p.indexOf(key) >= 0
}

// Pruned возвращает ключи, отброшенные при загрузке
func (p *Playlist) Pruned() []string {
	return p.pruned
}

// Add добавляет ключ в конец плейлиста с включенным флагом.
// Повторное добавление возвращает ErrDuplicate, плейлист при этом не меняется.
func (p *Playlist) Add(key string) error {
	if p.indexOf(key) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, key)
	}
	p.entries = append(p.entries, Entry{Key: key, Included: true})
	return nil
}

// Toggle переключает флаг участия в воспроизведении; отсутствующий ключ игнорируется
func (p *Playlist) Toggle(key string) {
	if i := p.indexOf(key); i >= 0 {
		p.entries[i].Included = !p.entries[i].Included
	}
}

// Remove удаляет элемент; отсутствующий ключ игнорируется
func (p *Playlist) Remove(key string) {
	if i := p.indexOf(key); i >= 0 {
		p.entries = slices.Delete(p.entries, i, i+1)
	}
}

// Renumber следует за перенумерацией каталога: удаляет элементы с ключами removed
// и переименовывает остальные по renames. Возвращает true, если плейлист изменился.
func (p *Playlist) Renumber(removed []string, renames map[string]string) bool {
	changed := false
	entries := p.entries[:0]
	for _, e := range p.entries {
		if slices.Contains(removed, e.Key) {
			changed = true
			continue
		}
		if newKey, ok := renames[e.Key]; ok {
			e.Key = newKey
			changed = true
		}
		entries = append(entries, e)
	}
	p.entries = entries
	return changed
}

// Play увеличивает счетчик прослушиваний каждого включенного трека и возвращает их число.
// Каталог при этом не сохраняется.
func (p *Playlist) Play(catalog Catalog) int {
	played := 0
	for _, e := range p.entries {
		if e.Included {
			catalog.IncrementPlayCount(e.Key)
			played++
		}
	}
	return played
}

// Save перезаписывает файл плейлиста строками "ключ,1|0" без заголовка
func (p *Playlist) Save() error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	for _, e := range p.entries {
		flag := flagExcluded
		if e.Included {
			flag = flagIncluded
		}
		if err := writer.Write([]string{e.Key, flag}); err != nil {
			return fmt.Errorf("ошибка записи плейлиста: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("ошибка записи плейлиста: %w", err)
	}

	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("ошибка создания директории плейлистов: %w", err)
	}
	if err := os.WriteFile(p.Path(), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("ошибка записи файла плейлиста: %w", err)
	}
	return nil
}

func (p *Playlist) indexOf(key string) int {
	return slices.IndexFunc(p.entries, func(e Entry) bool { return e.Key == key })
}

// List возвращает имена плейлистов в директории в алфавитном порядке.
// Отсутствующая директория дает пустой список.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения директории плейлистов: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != fileExt {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), fileExt))
	}
	slices.Sort(names)
	return names, nil
}

// Delete удаляет файл плейлиста; отсутствующий файл не считается ошибкой
func Delete(dir, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(dir, name+fileExt))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ошибка удаления плейлиста: %w", err)
	}
	return nil
}
