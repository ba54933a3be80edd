package player

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/hazadus/go-jukebox/internal/streaming"
	"github.com/hazadus/go-jukebox/internal/utils"
)

// ErrSourceNotFound возвращается, если аудиофайл трека не найден
var ErrSourceNotFound = errors.New("аудиофайл трека не найден")

// ResolveSource возвращает путь или адрес аудиофайла трека "Artist - Title.mp3" в musicDir.
// musicDir может быть локальной директорией или базовым URL.
func ResolveSource(musicDir, artist, name string) (string, error) {
	fileName := utils.TrackFileName(artist, name)

	if streaming.IsURL(musicDir) {
		source, err := url.JoinPath(musicDir, fileName)
		if err != nil {
			return "", fmt.Errorf("ошибка формирования адреса: %w", err)
		}
		return source, nil
	}

	source := filepath.Join(musicDir, fileName)
	if _, err := os.Stat(source); err != nil {
		return "", fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}
	return source, nil
}
