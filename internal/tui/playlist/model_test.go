package playlist

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/hazadus/go-jukebox/internal/track"
)

func newTestManager(t *testing.T) *track.Manager {
	t.Helper()
	dir := t.TempDir()
	libraryFile := filepath.Join(dir, "music.csv")
	content := "name,artist,rating\nHello,Adele,3\nShape of You,Ed Sheeran,1\nHighway to Hell,AC/DC,2\n"
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
	if _, err := manager.AddToPlaylist("List1", "02", "01"); err != nil {
		t.Fatalf("Ошибка заполнения плейлиста: %v", err)
	}
	return manager
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	model, err := NewModel(newTestManager(t), "List1")
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	if len(model.list.Items()) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(model.list.Items()))
	}
	if key, _ := model.selectedKey(); key != "02" {
		t.Errorf("Expected playlist order to be kept, first key %q", key)
	}

	empty, err := NewModel(newTestManager(t), "Empty")
	if err != nil || len(empty.list.Items()) != 0 {
		t.Errorf("Missing playlist must open empty: %v", err)
	}

	if _, err := NewModel(newTestManager(t), "../bad"); err == nil {
		t.Error("Expected error for invalid playlist name")
	}
}

func TestToggleAndPlay(t *testing.T) {
	manager := newTestManager(t)
	model, _ := NewModel(manager, "List1")

	model, _ = model.Update(keyMsg(" "))
	rows, _ := manager.OpenPlaylist("List1")
	if rows[0].Included {
		t.Fatal("Expected first entry to be excluded after toggle")
	}

	model, _ = model.Update(keyMsg("p"))
	if manager.PlayCount("02") != 0 || manager.PlayCount("01") != 1 {
		t.Errorf("Only included tracks must be played: 02=%d 01=%d",
			manager.PlayCount("02"), manager.PlayCount("01"))
	}
	if model.status != "Воспроизведено треков: 1" {
		t.Errorf("Unexpected status %q", model.status)
	}
}

func TestRemoveEntry(t *testing.T) {
	manager := newTestManager(t)
	model, _ := NewModel(manager, "List1")

	model, _ = model.Update(keyMsg("x"))

	if len(model.list.Items()) != 1 {
		t.Fatalf("Expected 1 item after remove, got %d", len(model.list.Items()))
	}
	rows, _ := manager.OpenPlaylist("List1")
	if len(rows) != 1 || rows[0].Key != "01" {
		t.Errorf("Expected only 01 to remain, got %+v", rows)
	}
}

func TestNextPlaylist(t *testing.T) {
	manager := newTestManager(t)
	if _, err := manager.AddToPlaylist("Rock", "03"); err != nil {
		t.Fatalf("AddToPlaylist failed: %v", err)
	}
	model, _ := NewModel(manager, "List1")

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if model.Name() != "Rock" {
		t.Fatalf("Expected Rock, got %s", model.Name())
	}
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if model.Name() != "List1" {
		t.Errorf("Expected wrap to List1, got %s", model.Name())
	}
}

func TestEscGoesBack(t *testing.T) {
	model, _ := NewModel(newTestManager(t), "List1")

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("Expected command on esc")
	}
	if _, ok := cmd().(GoBackMsg); !ok {
		t.Error("Expected GoBackMsg")
	}
}
