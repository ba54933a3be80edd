// Package metadata извлекает из аудиофайлов данные для импорта трека в каталог
package metadata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/mp3"
)

// UnknownArtist подставляется, когда исполнителя не удалось определить
const UnknownArtist = "Unknown Artist"

// Picture - встроенная обложка
type Picture struct {
	Ext      string
	MIMEType string
	Data     []byte
}

// TrackInfo - то, что удалось узнать о треке из файла
type TrackInfo struct {
	Name    string
	Artist  string
	Album   string
	Picture *Picture
}

// HasPicture сообщает, есть ли у трека встроенная обложка
func (i TrackInfo) HasPicture() bool {
	return i.Picture != nil && len(i.Picture.Data) > 0
}

// FromReader читает теги из reader. Пустые название и исполнитель
// дополняются из имени файла source в формате "Artist - Title".
func FromReader(reader io.ReadSeeker, source string) TrackInfo {
	fallback := FromFileName(source)

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return fallback
	}
	m, err := tag.ReadFrom(reader)
	if err != nil {
		return fallback
	}

	info := TrackInfo{
		Name:   strings.TrimSpace(m.Title()),
		Artist: strings.TrimSpace(m.Artist()),
		Album:  strings.TrimSpace(m.Album()),
	}
	if info.Name == "" {
		info.Name = fallback.Name
	}
	if info.Artist == "" {
		info.Artist = fallback.Artist
	}
	if p := m.Picture(); p != nil && len(p.Data) > 0 {
		info.Picture = &Picture{Ext: p.Ext, MIMEType: p.MIMEType, Data: p.Data}
	}
	return info
}

// FromFile читает теги из файла; при ошибке открытия использует имя файла
func FromFile(path string) TrackInfo {
	file, err := os.Open(path)
	if err != nil {
		return FromFileName(path)
	}
	defer file.Close()

	return FromReader(file, path)
}

// FromFileName разбирает имя файла в формате "Artist - Title"
func FromFileName(source string) TrackInfo {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	artist, title, found := strings.Cut(nameWithoutExt, " - ")
	if found {
		return TrackInfo{
			Name:   strings.TrimSpace(title),
			Artist: strings.TrimSpace(artist),
		}
	}

	return TrackInfo{
		Name:   strings.TrimSpace(nameWithoutExt),
		Artist: UnknownArtist,
	}
}

// Duration возвращает длительность MP3 файла
func Duration(path string) (time.Duration, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	streamer, format, err := mp3.Decode(file)
	if err != nil {
		return 0, fmt.Errorf("ошибка декодирования MP3: %w", err)
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}
