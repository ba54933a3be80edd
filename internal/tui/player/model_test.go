package player

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/hazadus/go-jukebox/internal/player"
	"github.com/hazadus/go-jukebox/internal/track"
)

func newTestManager(t *testing.T) *track.Manager {
	t.Helper()
	dir := t.TempDir()
	libraryFile := filepath.Join(dir, "music.csv")
	content := "name,artist,rating\nHello,Adele,3\n"
	if err := os.WriteFile(libraryFile, []byte(content), 0644); err != nil {
		t.Fatalf("Ошибка записи каталога: %v", err)
	}

	manager := track.NewManager(track.Options{
		LibraryFile: libraryFile,
		PlaylistDir: filepath.Join(dir, "playlists"),
		ImagesDir:   filepath.Join(dir, "images"),
		Logger:      zerolog.Nop(),
	})
	if err := manager.Load(); err != nil {
		t.Fatalf("Ошибка загрузки каталога: %v", err)
	}
	return manager
}

func newTestModel(t *testing.T) (*Model, *track.Manager) {
	t.Helper()
	manager := newTestManager(t)
	p := player.NewPlayer()
	t.Cleanup(func() { _ = p.Close() })

	model, err := NewModel(manager, p, t.TempDir(), "01")
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	return model, manager
}

func TestNewModel(t *testing.T) {
	model, _ := newTestModel(t)

	if model.details.Name != "Hello" || model.details.Artist != "Adele" {
		t.Errorf("Unexpected details: %+v", model.details)
	}
	if model.isPlaying {
		t.Error("Expected isPlaying to be false initially")
	}

	if _, err := NewModel(newTestManager(t), player.NewPlayer(), "", "42"); !errors.Is(err, track.ErrTrackNotFound) {
		t.Errorf("Expected ErrTrackNotFound, got %v", err)
	}
}

func TestPlaybackCountsPlayWithoutAudio(t *testing.T) {
	model, manager := newTestModel(t)

	msg := model.Init()()
	errMsg, ok := msg.(PlaybackErrorMsg)
	if !ok {
		t.Fatalf("Expected PlaybackErrorMsg, got %#v", msg)
	}
	if !errors.Is(errMsg.Error, player.ErrSourceNotFound) {
		t.Errorf("Expected ErrSourceNotFound, got %v", errMsg.Error)
	}
	if count := manager.PlayCount("01"); count != 1 {
		t.Errorf("Expected play count 1, got %d", count)
	}

	updated, _ := model.Update(msg)
	model = updated.(*Model)
	if model.details.PlayCount != 1 {
		t.Errorf("Expected refreshed play count, got %d", model.details.PlayCount)
	}
	if !strings.Contains(model.View(), "аудиофайл трека не найден") {
		t.Error("Expected error in view")
	}
}

func TestRatingKeys(t *testing.T) {
	model, manager := newTestModel(t)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	model = updated.(*Model)

	if rating := manager.Rating("01"); rating != 4 {
		t.Errorf("Expected rating 4, got %d", rating)
	}
	if model.details.Rating != 4 {
		t.Errorf("Expected refreshed rating, got %d", model.details.Rating)
	}
}

func TestFormatStatus(t *testing.T) {
	model, _ := newTestModel(t)

	if model.formatStatus() != "Пауза" {
		t.Error("Expected 'Пауза' for paused status")
	}

	model.isPlaying = true
	model.source = "/music/Adele - Hello.mp3"
	if model.formatStatus() != "Воспроизведение" {
		t.Error("Expected 'Воспроизведение' for local file")
	}

	model.source = "https://example.com/Adele - Hello.mp3"
	model.status.StuckCount = 3
	if got := model.formatStatus(); got != "Буферизация..." {
		t.Errorf("Expected stream status, got %q", got)
	}
}

func TestUpdateWindowSize(t *testing.T) {
	model, _ := newTestModel(t)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	playerModel := updated.(*Model)

	if playerModel.width != 100 {
		t.Errorf("Expected width 100, got %d", playerModel.width)
	}
	if playerModel.height != 40 {
		t.Errorf("Expected height 40, got %d", playerModel.height)
	}
}

func TestKeyHandling(t *testing.T) {
	model, _ := newTestModel(t)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	if cmd == nil {
		t.Fatal("Expected command to be returned for 'q' key")
	}
	if _, ok := cmd().(GoBackMsg); !ok {
		t.Error("Expected GoBackMsg")
	}
}

func TestVolumeKeys(t *testing.T) {
	model, _ := newTestModel(t)

	model.Update(tea.KeyMsg{Type: tea.KeyUp})
	model.Update(tea.KeyMsg{Type: tea.KeyUp})
	model.Update(tea.KeyMsg{Type: tea.KeyDown})

	if model.status.Volume != 0.5 {
		t.Errorf("Expected volume 0.5, got %v", model.status.Volume)
	}
	if model.player.Volume() != 0.5 {
		t.Errorf("Expected player volume 0.5, got %v", model.player.Volume())
	}
	if !strings.Contains(model.View(), "🔊 +0.5") {
		t.Errorf("View should show volume:\n%s", model.View())
	}
}
