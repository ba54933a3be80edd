// Package download скачивает аудио из YouTube для импорта в каталог
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/hazadus/go-jukebox/internal/metadata"
	"github.com/hazadus/go-jukebox/internal/utils"
)

// ErrNoAudioFormat возвращается, если у видео нет формата со звуком
var ErrNoAudioFormat = errors.New("аудио формат не найден")

var (
	videoIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/v/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`),
	}
	bareVideoID = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// Result - скачанный трек
type Result struct {
	VideoID string
	Path    string
	Name    string
	Artist  string
	Size    int64
}

// Downloader скачивает аудиодорожки видео в директорию
type Downloader struct {
	client *youtube.Client
	dir    string
}

// NewDownloader создает загрузчик, сохраняющий файлы в dir
func NewDownloader(dir string) *Downloader {
	return &Downloader{client: &youtube.Client{}, dir: dir}
}

// Download скачивает лучшую аудиодорожку видео в файл "Artist - Title.mp3"
func (d *Downloader) Download(ctx context.Context, url string) (*Result, error) {
	videoID, err := ExtractVideoID(url)
	if err != nil {
		return nil, err
	}

	video, err := d.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о видео: %w", err)
	}

	format := FindBestAudioFormat(video.Formats)
	if format == nil {
		return nil, ErrNoAudioFormat
	}

	stream, _, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения потока: %w", err)
	}
	defer stream.Close()

	info := TrackInfo(video.Title, video.Author)
	result := &Result{
		VideoID: videoID,
		Name:    info.Name,
		Artist:  info.Artist,
		Path:    filepath.Join(d.dir, utils.TrackFileName(info.Artist, info.Name)),
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории: %w", err)
	}
	file, err := os.Create(result.Path)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла: %w", err)
	}
	defer file.Close()

	result.Size, err = io.Copy(file, stream)
	if err != nil {
		os.Remove(result.Path)
		return nil, fmt.Errorf("ошибка скачивания: %w", err)
	}
	return result, nil
}

// TrackInfo выделяет исполнителя и название из заголовка видео вида "Artist - Title".
// Если разделителя нет, исполнителем считается автор канала.
func TrackInfo(title, author string) metadata.TrackInfo {
	info := metadata.FromFileName(strings.TrimSpace(title) + ".mp3")
	if info.Artist == metadata.UnknownArtist {
		author = strings.TrimSuffix(strings.TrimSpace(author), " - Topic")
		if author != "" {
			info.Artist = author
		}
	}
	return info
}

// ExtractVideoID извлекает ID видео из различных форматов YouTube URL
func ExtractVideoID(url string) (string, error) {
	for _, re := range videoIDPatterns {
		if matches := re.FindStringSubmatch(url); len(matches) > 1 {
			return matches[1], nil
		}
	}

	// Если это просто ID видео (11 символов)
	if bareVideoID.MatchString(url) {
		return url, nil
	}

	return "", fmt.Errorf("не удалось извлечь ID видео из URL: %s", url)
}

// FindBestAudioFormat находит лучший аудио формат для скачивания
func FindBestAudioFormat(formats youtube.FormatList) *youtube.Format {
	audioFormats := formats.WithAudioChannels()
	if len(audioFormats) == 0 {
		return nil
	}

	bestFormat := &audioFormats[0]
	for i := range audioFormats {
		format := &audioFormats[i]

		bestIsMP4 := isMP4(bestFormat.MimeType)
		switch {
		// Предпочитаем MP4/M4A форматы для лучшей совместимости
		case isMP4(format.MimeType) && !bestIsMP4:
			bestFormat = format
		case isMP4(format.MimeType) == bestIsMP4 && format.Bitrate > bestFormat.Bitrate:
			bestFormat = format
		}
	}
	return bestFormat
}

func isMP4(mimeType string) bool {
	return strings.Contains(mimeType, "mp4") || strings.Contains(mimeType, "m4a")
}
