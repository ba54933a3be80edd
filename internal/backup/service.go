// Package backup сохраняет каталог, плейлисты и обложки в S3 и восстанавливает их
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/hazadus/go-jukebox/internal/library"
	"github.com/hazadus/go-jukebox/internal/s3"
)

const manifestName = "manifest.yaml"

// Виды файлов в резервной копии
const (
	KindLibrary  = "library"
	KindPlaylist = "playlist"
	KindArtwork  = "artwork"
)

// ErrBackupNotFound возвращается для неизвестного идентификатора копии
var ErrBackupNotFound = errors.New("резервная копия не найдена")

// Storage - удаленное хранилище файлов
type Storage interface {
	UploadFile(ctx context.Context, reader io.Reader, key string) (string, error)
	DownloadFile(ctx context.Context, w io.WriterAt, key string) (int64, error)
	DeleteFile(ctx context.Context, key string) error
	ListFiles(ctx context.Context, prefix string) ([]s3.Object, error)
}

// Sources - локальные пути данных приложения
type Sources struct {
	LibraryFile string
	PlaylistDir string
	ImagesDir   string
}

// File - файл в составе резервной копии
type File struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
	Size int64  `yaml:"size"`
}

// Manifest описывает содержимое резервной копии
type Manifest struct {
	ID        string    `yaml:"id"`
	CreatedAt time.Time `yaml:"created_at"`
	Tracks    int       `yaml:"tracks"`
	Files     []File    `yaml:"files"`
}

// Size возвращает суммарный размер файлов копии
func (m *Manifest) Size() int64 {
	var total int64
	for _, f := range m.Files {
		total += f.Size
	}
	return total
}

// Info - краткие сведения о резервной копии в хранилище
type Info struct {
	ID        string
	Files     int
	Size      int64
	CreatedAt time.Time
}

// Progress сообщает о ходе копирования отдельного файла
type Progress struct {
	File  File
	Done  int64
	Index int
	Total int
}

// Service управляет резервными копиями
type Service struct {
	storage Storage
	prefix  string
	sources Sources
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService создает новый сервис резервного копирования
func NewService(storage Storage, prefix string, sources Sources, logger zerolog.Logger) *Service {
	return &Service{
		storage: storage,
		prefix:  strings.Trim(prefix, "/"),
		sources: sources,
		logger:  logger,
		now:     time.Now,
	}
}

// NewID формирует идентификатор копии из времени и короткого uuid
func NewID(t time.Time) string {
	return t.UTC().Format("20060102-150405") + "-" + uuid.NewString()[:8]
}

// Backup загружает каталог, плейлисты и обложки в хранилище.
// Манифест загружается последним, поэтому копия без манифеста считается незавершенной.
func (s *Service) Backup(ctx context.Context, onProgress func(Progress)) (*Manifest, error) {
	catalog := library.NewCatalog()
	if err := catalog.Load(s.sources.LibraryFile); err != nil {
		return nil, err
	}

	files, err := s.collect()
	if err != nil {
		return nil, err
	}

	createdAt := s.now()
	manifest := &Manifest{
		ID:        NewID(createdAt),
		CreatedAt: createdAt.UTC(),
		Tracks:    catalog.Len(),
	}

	for i, f := range files {
		if err := s.uploadFile(ctx, manifest.ID, f, i, len(files), onProgress); err != nil {
			return nil, err
		}
		manifest.Files = append(manifest.Files, f)
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации манифеста: %w", err)
	}
	if _, err := s.storage.UploadFile(ctx, bytes.NewReader(data), s.objectKey(manifest.ID, manifestName)); err != nil {
		return nil, fmt.Errorf("ошибка загрузки манифеста: %w", err)
	}

	s.logger.Info().Str("id", manifest.ID).Int("files", len(manifest.Files)).Msg("резервная копия создана")
	return manifest, nil
}

// collect перечисляет локальные файлы для копирования
func (s *Service) collect() ([]File, error) {
	info, err := os.Stat(s.sources.LibraryFile)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога: %w", err)
	}
	files := []File{{Kind: KindLibrary, Name: filepath.Base(s.sources.LibraryFile), Size: info.Size()}}

	extra, err := s.collectDirs()
	if err != nil {
		return nil, err
	}
	return append(files, extra...), nil
}

// collectDirs перечисляет локальные плейлисты и обложки
func (s *Service) collectDirs() ([]File, error) {
	dirs := []struct {
		kind string
		dir  string
		keep func(name string) bool
	}{
		{KindPlaylist, s.sources.PlaylistDir, func(name string) bool { return filepath.Ext(name) == ".csv" }},
		{KindArtwork, s.sources.ImagesDir, func(string) bool { return true }},
	}

	var files []File
	for _, d := range dirs {
		if d.dir == "" {
			continue
		}
		entries, err := os.ReadDir(d.dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения директории %s: %w", d.dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !d.keep(entry.Name()) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				return nil, err
			}
			files = append(files, File{Kind: d.kind, Name: entry.Name(), Size: info.Size()})
		}
	}
	return files, nil
}

func (s *Service) uploadFile(ctx context.Context, id string, f File, index, total int, onProgress func(Progress)) error {
	file, err := os.Open(s.localPath(f))
	if err != nil {
		return fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if onProgress != nil {
		reader = &ProgressReader{
			Reader: file,
			Size:   f.Size,
			OnProgress: func(done int64) {
				onProgress(Progress{File: f, Done: done, Index: index, Total: total})
			},
		}
	}

	if _, err := s.storage.UploadFile(ctx, reader, s.objectKey(id, f.Kind, f.Name)); err != nil {
		return fmt.Errorf("ошибка загрузки %s: %w", f.Name, err)
	}
	s.logger.Debug().Str("kind", f.Kind).Str("name", f.Name).Msg("файл загружен")
	return nil
}

// List возвращает резервные копии, от новых к старым.
// Копии без манифеста не показываются.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	objects, err := s.storage.ListFiles(ctx, s.prefix+"/")
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Info)
	complete := make(map[string]bool)
	for _, obj := range objects {
		rest := strings.TrimPrefix(obj.Key, s.prefix+"/")
		id, name, ok := strings.Cut(rest, "/")
		if !ok {
			continue
		}
		info, exists := byID[id]
		if !exists {
			info = &Info{ID: id}
			byID[id] = info
		}
		if name == manifestName {
			complete[id] = true
			info.CreatedAt = obj.LastModified
			continue
		}
		info.Files++
		info.Size += obj.Size
	}

	infos := make([]Info, 0, len(complete))
	for id := range complete {
		infos = append(infos, *byID[id])
	}
	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(b.ID, a.ID) })
	return infos, nil
}

// Manifest скачивает манифест копии
func (s *Service) Manifest(ctx context.Context, id string) (*Manifest, error) {
	buf := aws.NewWriteAtBuffer(nil)
	if _, err := s.storage.DownloadFile(ctx, buf, s.objectKey(id, manifestName)); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBackupNotFound, id, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(buf.Bytes(), &manifest); err != nil {
		return nil, fmt.Errorf("ошибка разбора манифеста: %w", err)
	}
	return &manifest, nil
}

// Restore скачивает файлы копии на место локальных.
// Каждый файл сначала пишется во временный и затем переименовывается.
func (s *Service) Restore(ctx context.Context, id string, onProgress func(Progress)) (*Manifest, error) {
	manifest, err := s.Manifest(ctx, id)
	if err != nil {
		return nil, err
	}

	for i, f := range manifest.Files {
		if err := s.restoreFile(ctx, id, f); err != nil {
			return nil, err
		}
		if onProgress != nil {
			onProgress(Progress{File: f, Done: f.Size, Index: i, Total: len(manifest.Files)})
		}
	}

	if err := s.removeStale(manifest); err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", id).Int("files", len(manifest.Files)).Msg("резервная копия восстановлена")
	return manifest, nil
}

func (s *Service) restoreFile(ctx context.Context, id string, f File) error {
	if f.Name != filepath.Base(f.Name) || f.Name == ".." {
		return fmt.Errorf("недопустимое имя файла в манифесте: %q", f.Name)
	}
	target := s.localPath(f)
	if target == "" {
		return fmt.Errorf("неизвестный вид файла в манифесте: %q", f.Kind)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("ошибка создания директории: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+f.Name+".*")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = s.storage.DownloadFile(ctx, tmp, s.objectKey(id, f.Kind, f.Name))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("ошибка восстановления %s: %w", f.Name, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("ошибка записи %s: %w", target, err)
	}
	return nil
}

// removeStale удаляет локальные плейлисты и обложки, которых нет в копии.
// Ключи треков позиционные: оставшийся файл привязался бы к другому треку.
func (s *Service) removeStale(manifest *Manifest) error {
	local, err := s.collectDirs()
	if err != nil {
		return err
	}

	var errs []error
	for _, f := range local {
		if slices.ContainsFunc(manifest.Files, func(m File) bool { return m.Kind == f.Kind && m.Name == f.Name }) {
			continue
		}
		if err := os.Remove(s.localPath(f)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("ошибка удаления %s: %w", f.Name, err))
			continue
		}
		s.logger.Debug().Str("kind", f.Kind).Str("name", f.Name).Msg("удален файл, которого нет в копии")
	}
	return errors.Join(errs...)
}

// Delete удаляет все файлы копии из хранилища
func (s *Service) Delete(ctx context.Context, id string) error {
	objects, err := s.storage.ListFiles(ctx, s.objectKey(id)+"/")
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		return fmt.Errorf("%w: %s", ErrBackupNotFound, id)
	}

	var errs []error
	for _, obj := range objects {
		errs = append(errs, s.storage.DeleteFile(ctx, obj.Key))
	}
	return errors.Join(errs...)
}

// localPath возвращает локальный путь файла копии
func (s *Service) localPath(f File) string {
	switch f.Kind {
	case KindLibrary:
		return s.sources.LibraryFile
	case KindPlaylist:
		return filepath.Join(s.sources.PlaylistDir, f.Name)
	case KindArtwork:
		return filepath.Join(s.sources.ImagesDir, f.Name)
	}
	return ""
}

func (s *Service) objectKey(id string, parts ...string) string {
	return path.Join(append([]string{s.prefix, id}, parts...)...)
}
