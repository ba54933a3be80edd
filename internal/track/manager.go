// Package track содержит логику управления каталогом треков и плейлистами
package track

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hazadus/go-jukebox/internal/artwork"
	"github.com/hazadus/go-jukebox/internal/library"
	"github.com/hazadus/go-jukebox/internal/metadata"
	"github.com/hazadus/go-jukebox/internal/playlist"
)

var (
	// ErrTrackNotFound возвращается для ключа, которого нет в каталоге
	ErrTrackNotFound = errors.New("трек не найден")
	// ErrDuplicateTrack возвращается при добавлении трека с тем же названием и исполнителем
	ErrDuplicateTrack = errors.New("такой трек уже есть в каталоге")
	// ErrEmptyField возвращается для пустого названия или исполнителя
	ErrEmptyField = errors.New("название и исполнитель не могут быть пустыми")
	// ErrNotInPlaylist возвращается, если трека нет в плейлисте
	ErrNotInPlaylist = errors.New("трека нет в плейлисте")
)

// Options пути к данным и логгер для Manager
type Options struct {
	LibraryFile string
	PlaylistDir string
	ImagesDir   string
	Logger      zerolog.Logger
}

// Details подробная информация о треке
type Details struct {
	library.Row
	ArtworkPath string
	Playlists   []string
}

// HasArtwork сообщает, есть ли у трека обложка
func (d Details) HasArtwork() bool {
	return d.ArtworkPath != ""
}

// PlaylistRow элемент плейлиста вместе с данными трека
type PlaylistRow struct {
	library.Row
	Included bool
}

// Manager управляет каталогом и плейлистами приложения.
// Все обращения к каталогу и плейлистам сериализуются одним мьютексом.
type Manager struct {
	mu          sync.Mutex
	catalog     *library.Catalog
	libraryFile string
	playlistDir string
	artwork     *artwork.Store
	logger      zerolog.Logger
}

// NewManager создает новый экземпляр Manager с пустым каталогом
func NewManager(opts Options) *Manager {
	return &Manager{
		catalog:     library.NewCatalog(),
		libraryFile: opts.LibraryFile,
		playlistDir: opts.PlaylistDir,
		artwork:     artwork.NewStore(opts.ImagesDir),
		logger:      opts.Logger,
	}
}

// LibraryFile возвращает путь к файлу каталога
func (m *Manager) LibraryFile() string {
	return m.libraryFile
}

// PlaylistDir возвращает директорию плейлистов
func (m *Manager) PlaylistDir() string {
	return m.playlistDir
}

// Artwork возвращает хранилище обложек
func (m *Manager) Artwork() *artwork.Store {
	return m.artwork
}

// Load перечитывает каталог из файла. Отсутствие файла возвращает ошибку
// library.ErrNotFound, текущий каталог при этом не меняется.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.catalog.Load(m.libraryFile); err != nil {
		return err
	}
	for _, line := range m.catalog.Skipped() {
		m.logger.Debug().Int("line", line).Str("file", m.libraryFile).Msg("пропущена некорректная строка каталога")
	}
	m.logger.Debug().Int("tracks", m.catalog.Len()).Msg("каталог загружен")
	return nil
}

// Save записывает каталог в файл
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save()
}

func (m *Manager) save() error {
	if err := m.catalog.Save(m.libraryFile); err != nil {
		return err
	}
	m.logger.Debug().Int("tracks", m.catalog.Len()).Str("file", m.libraryFile).Msg("каталог сохранен")
	return nil
}

// Len возвращает количество треков
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalog.Len()
}

// LoadAll возвращает строки для отображения всего каталога
func (m *Manager) LoadAll() []library.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalog.Rows()
}

// Search возвращает строки, у которых поле field содержит term
func (m *Manager) Search(term string, field library.Field) []library.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Collect(m.catalog.Search(term, field))
}

// Name возвращает название трека; false, если трека нет
func (m *Manager) Name(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalog.Name(key)
}

// Artist возвращает исполнителя трека; false, если трека нет
func (m *Manager) Artist(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalog.Artist(key)
}

// Rating возвращает рейтинг трека или -1, если трека нет
func (m *Manager) Rating(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalog.Rating(key)
}

// PlayCount возвращает число прослушиваний или -1, если трека нет
func (m *Manager) PlayCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalog.PlayCount(key)
}

// Details возвращает подробную информацию о треке
func (m *Manager) Details(key string) (Details, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.catalog.Row(key)
	if !ok {
		return Details{}, fmt.Errorf("%w: %s", ErrTrackNotFound, key)
	}
	details := Details{Row: row}
	details.ArtworkPath, _ = m.artwork.Path(key)

	names, err := playlist.List(m.playlistDir)
	if err != nil {
		return details, err
	}
	for _, name := range names {
		p, err := playlist.Load(m.playlistDir, name, m.catalog)
		if err != nil {
			m.logger.Warn().Err(err).Str("playlist", name).Msg("не удалось прочитать плейлист")
			continue
		}
		if p.Contains(key) {
			details.Playlists = append(details.Playlists, name)
		}
	}
	return details, nil
}

// SetRating меняет рейтинг трека и сохраняет каталог
func (m *Manager) SetRating(key string, rating int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.catalog.Has(key) {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, key)
	}
	m.catalog.SetRating(key, rating)
	m.logger.Info().Str("key", key).Int("rating", m.catalog.Rating(key)).Msg("рейтинг изменен")
	return m.save()
}

// IncrementPlayCount увеличивает счетчик прослушиваний.
// Каталог не сохраняется: счетчик живет только в памяти.
func (m *Manager) IncrementPlayCount(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.catalog.Has(key) {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, key)
	}
	m.catalog.IncrementPlayCount(key)
	return nil
}

// AddTrack добавляет трек в конец каталога и сохраняет его.
// Трек с тем же названием и исполнителем отклоняется с ErrDuplicateTrack, если не задан force.
func (m *Manager) AddTrack(name, artist string, rating int, force bool) (string, error) {
	name, artist = strings.TrimSpace(name), strings.TrimSpace(artist)
	if name == "" || artist == "" {
		return "", ErrEmptyField
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.catalog.FindDuplicate(name, artist); ok && !force {
		return existing, fmt.Errorf("%w: %s - %s (%s)", ErrDuplicateTrack, artist, name, existing)
	}

	key := m.catalog.Add(name, artist, rating)
	if err := m.save(); err != nil {
		return key, err
	}
	m.logger.Info().Str("key", key).Str("name", name).Str("artist", artist).Msg("трек добавлен")
	return key, nil
}

// ImportFile добавляет трек по тегам аудиофайла и сохраняет встроенную обложку
func (m *Manager) ImportFile(path string, rating int, force bool) (string, metadata.TrackInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return "", metadata.TrackInfo{}, fmt.Errorf("ошибка чтения аудиофайла: %w", err)
	}
	info := metadata.FromFile(path)

	key, err := m.AddTrack(info.Name, info.Artist, rating, force)
	if err != nil {
		return key, info, err
	}

	if info.HasPicture() {
		ext := info.Picture.Ext
		if ext == "" {
			ext = info.Picture.MIMEType
		}
		if _, err := m.SaveArtwork(key, ext, info.Picture.Data); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("не удалось сохранить обложку")
		}
	}
	return key, info, nil
}

// SaveArtwork сохраняет обложку трека
func (m *Manager) SaveArtwork(key, ext string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.catalog.Has(key) {
		return "", fmt.Errorf("%w: %s", ErrTrackNotFound, key)
	}
	return m.artwork.Save(key, ext, data)
}

// UpdateTrack меняет название, исполнителя и рейтинг трека и сохраняет каталог
func (m *Manager) UpdateTrack(key, name, artist string, rating int) error {
	name, artist = strings.TrimSpace(name), strings.TrimSpace(artist)
	if name == "" || artist == "" {
		return ErrEmptyField
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.catalog.Update(key, name, artist, rating) {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, key)
	}
	m.logger.Info().Str("key", key).Msg("трек обновлен")
	return m.save()
}

// DeleteTracks удаляет треки, пересчитывает ключи оставшихся и сохраняет каталог.
// Обложки и плейлисты следуют за новой нумерацией. Возвращает карту переименований.
func (m *Manager) DeleteTracks(keys ...string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed, missing []string
	for _, key := range keys {
		switch {
		case !m.catalog.Has(key):
			missing = append(missing, key)
		case !slices.Contains(removed, key):
			removed = append(removed, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, strings.Join(missing, ", "))
	}

	// Плейлисты читаются до удаления, пока ключи еще указывают на прежние треки
	playlists, err := m.loadPlaylists()
	if err != nil {
		return nil, err
	}

	renames := m.catalog.Delete(removed...)
	if err := m.save(); err != nil {
		return renames, err
	}

	var errs []error
	for _, key := range removed {
		errs = append(errs, m.artwork.Remove(key))
	}
	errs = append(errs, m.artwork.Renumber(renames))

	for _, p := range playlists {
		if p.Renumber(removed, renames) {
			errs = append(errs, p.Save())
		}
	}

	m.logger.Info().Strs("keys", removed).Int("renumbered", len(renames)).Msg("треки удалены")
	return renames, errors.Join(errs...)
}

func (m *Manager) loadPlaylists() ([]*playlist.Playlist, error) {
	names, err := playlist.List(m.playlistDir)
	if err != nil {
		return nil, err
	}
	playlists := make([]*playlist.Playlist, 0, len(names))
	for _, name := range names {
		p, err := m.loadPlaylist(name)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	return playlists, nil
}

// loadPlaylist читает плейлист, отбрасывая ключи, которых нет в каталоге
func (m *Manager) loadPlaylist(name string) (*playlist.Playlist, error) {
	p, err := playlist.Load(m.playlistDir, name, m.catalog)
	if err != nil {
		return nil, err
	}
	for _, key := range p.Pruned() {
		m.logger.Debug().Str("playlist", name).Str("key", key).Msg("ключ отброшен при загрузке плейлиста")
	}
	return p, nil
}

// Playlists возвращает имена существующих плейлистов
func (m *Manager) Playlists() ([]string, error) {
	return playlist.List(m.playlistDir)
}

// OpenPlaylist возвращает элементы плейлиста вместе с данными треков
func (m *Manager) OpenPlaylist(name string) ([]PlaylistRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.loadPlaylist(name)
	if err != nil {
		return nil, err
	}

	rows := make([]PlaylistRow, 0, p.Len())
	for _, e := range p.Entries() {
		row, _ := m.catalog.Row(e.Key)
		rows = append(rows, PlaylistRow{Row: row, Included: e.Included})
	}
	return rows, nil
}

// AddToPlaylist добавляет треки в плейлист и сохраняет его, создавая при необходимости.
// Ошибки по отдельным ключам объединяются, остальные ключи все равно добавляются.
func (m *Manager) AddToPlaylist(name string, keys ...string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.loadPlaylist(name)
	if err != nil {
		return 0, err
	}

	var errs []error
	added := 0
	for _, key := range keys {
		if !m.catalog.Has(key) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrTrackNotFound, key))
			continue
		}
		if err := p.Add(key); err != nil {
			errs = append(errs, err)
			continue
		}
		added++
	}

	if added > 0 {
		if err := p.Save(); err != nil {
			return 0, err
		}
		m.logger.Info().Str("playlist", name).Int("added", added).Msg("треки добавлены в плейлист")
	}
	return added, errors.Join(errs...)
}

// TogglePlaylistEntry переключает участие трека в воспроизведении и сохраняет плейлист
func (m *Manager) TogglePlaylistEntry(name, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.loadPlaylist(name)
	if err != nil {
		return false, err
	}
	if !p.Contains(key) {
		return false, fmt.Errorf("%w: %s", ErrNotInPlaylist, key)
	}

	p.Toggle(key)
	entries := p.Entries()
	included := entries[slices.IndexFunc(entries, func(e playlist.Entry) bool { return e.Key == key })].Included
	return included, p.Save()
}

// RemoveFromPlaylist удаляет треки из плейлиста и сохраняет его
func (m *Manager) RemoveFromPlaylist(name string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.loadPlaylist(name)
	if err != nil {
		return err
	}

	var missing []string
	for _, key := range keys {
		if !p.Contains(key) {
			missing = append(missing, key)
			continue
		}
		p.Remove(key)
	}
	if len(missing) < len(keys) {
		if err := p.Save(); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrNotInPlaylist, strings.Join(missing, ", "))
	}
	return nil
}

// PlayPlaylist увеличивает счетчики прослушиваний включенных треков плейлиста.
// Возвращает ключи воспроизведенных треков. Каталог не сохраняется.
func (m *Manager) PlayPlaylist(name string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.loadPlaylist(name)
	if err != nil {
		return nil, err
	}

	var played []string
	for _, e := range p.Entries() {
		if e.Included {
			played = append(played, e.Key)
		}
	}
	p.Play(m.catalog)
	m.logger.Debug().Str("playlist", name).Int("played", len(played)).Msg("плейлист воспроизведен")
	return played, nil
}

// DeletePlaylist удаляет файл плейлиста
func (m *Manager) DeletePlaylist(name string) error {
	if err := playlist.Delete(m.playlistDir, name); err != nil {
		return err
	}
	m.logger.Info().Str("playlist", name).Msg("плейлист удален")
	return nil
}
