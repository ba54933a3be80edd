package tracklist

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/hazadus/go-jukebox/internal/library"
	"github.com/hazadus/go-jukebox/internal/track"
)

const testLibrary = `name,artist,rating
Another Brick in the Wall,Pink Floyd,4
Stayin' Alive,Bee Gees,5
Highway to Hell,AC/DC,2
`

func newTestManager(t *testing.T) *track.Manager {
	t.Helper()
	dir := t.TempDir()
	libraryFile := filepath.Join(dir, "music.csv")
	if err := os.WriteFile(libraryFile, []byte(testLibrary), 0644); err != nil {
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

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	model := NewModel(newTestManager(t), "List1")

	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if len(model.list.Items()) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(model.list.Items()))
	}
	if key, ok := model.selectedKey(); !ok || key != "01" {
		t.Errorf("Expected first item 01 to be selected, got %q", key)
	}
}

func TestSubstringFilter(t *testing.T) {
	targets := []string{"Pink Floyd", "Bee Gees", "Foo Fighters", "Моргенштерн"}

	ranks := substringFilter("F", targets)
	if len(ranks) != 2 || ranks[0].Index != 0 || ranks[1].Index != 2 {
		t.Fatalf("Unexpected ranks: %+v", ranks)
	}
	if got := ranks[0].MatchedIndexes; len(got) != 1 || got[0] != 5 {
		t.Errorf("Unexpected matched indexes: %v", got)
	}

	ranks = substringFilter("штерн", targets)
	if len(ranks) != 1 || ranks[0].Index != 3 {
		t.Fatalf("Unexpected ranks for cyrillic term: %+v", ranks)
	}
	if got := ranks[0].MatchedIndexes; len(got) != 5 || got[0] != 6 {
		t.Errorf("Unexpected matched indexes for cyrillic term: %v", got)
	}
}

func TestSubstringFilterIndexesOriginalRunes(t *testing.T) {
	// strings.ToLower("İ") дает две руны, индексы должны считаться по исходной строке
	ranks := substringFilter("blues", []string{"İstanbul Blues"})
	if len(ranks) != 1 {
		t.Fatalf("Unexpected ranks: %+v", ranks)
	}
	want := []int{9, 10, 11, 12, 13}
	if got := ranks[0].MatchedIndexes; !slices.Equal(got, want) {
		t.Errorf("Expected matched indexes %v, got %v", want, got)
	}
}

func TestTabSwitchesSearchField(t *testing.T) {
	model := NewModel(newTestManager(t), "List1")

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})

	if model.field != library.FieldArtist {
		t.Fatalf("Expected artist field, got %v", model.field)
	}
	if value := model.list.Items()[1].FilterValue(); value != "Bee Gees" {
		t.Errorf("Expected artist as filter value, got %q", value)
	}
}

func TestRatingKeys(t *testing.T) {
	manager := newTestManager(t)
	model := NewModel(manager, "List1")

	model, _ = model.Update(keyMsg("+"))
	model, _ = model.Update(keyMsg("+"))

	if rating := manager.Rating("01"); rating != 5 {
		t.Errorf("Expected rating clamped to 5, got %d", rating)
	}

	model, _ = model.Update(keyMsg("-"))
	if rating := manager.Rating("01"); rating != 4 {
		t.Errorf("Expected rating 4, got %d", rating)
	}
	if model.status == "" {
		t.Error("Expected status message after rating change")
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	manager := newTestManager(t)
	model := NewModel(manager, "List1")

	model, _ = model.Update(keyMsg("d"))
	if manager.Len() != 3 {
		t.Fatal("Track must not be deleted on first press")
	}

	model, _ = model.Update(keyMsg("d"))
	if manager.Len() != 2 {
		t.Fatalf("Expected 2 tracks after confirmed delete, got %d", manager.Len())
	}
	if len(model.list.Items()) != 2 {
		t.Errorf("Expected list to be refreshed, got %d items", len(model.list.Items()))
	}
}

func TestDeleteConfirmationResetByOtherKey(t *testing.T) {
	manager := newTestManager(t)
	model := NewModel(manager, "List1")

	model, _ = model.Update(keyMsg("d"))
	model, _ = model.Update(keyMsg("+"))
	model, _ = model.Update(keyMsg("d"))

	if manager.Len() != 3 {
		t.Error("Confirmation must be reset by another key")
	}
}

func TestAddToDefaultPlaylist(t *testing.T) {
	manager := newTestManager(t)
	model := NewModel(manager, "List1")

	model, _ = model.Update(keyMsg("i"))
	model, _ = model.Update(keyMsg("i"))

	rows, err := manager.OpenPlaylist("List1")
	if err != nil {
		t.Fatalf("OpenPlaylist failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Key != "01" {
		t.Errorf("Expected playlist with track 01, got %+v", rows)
	}
	if model.status == "" {
		t.Error("Expected status about duplicate")
	}
}

func TestNavigationMessages(t *testing.T) {
	model := NewModel(newTestManager(t), "List1")

	tests := []struct {
		msg  tea.KeyMsg
		want tea.Msg
	}{
		{tea.KeyMsg{Type: tea.KeyEnter}, TrackSelectedMsg{Key: "01"}},
		{keyMsg("e"), TrackEditMsg{Key: "01"}},
		{keyMsg("a"), TrackAddMsg{}},
		{keyMsg("l"), PlaylistOpenMsg{Name: "List1"}},
	}

	for _, test := range tests {
		_, cmd := model.Update(test.msg)
		if cmd == nil {
			t.Fatalf("Expected command for %q", test.msg.String())
		}
		if got := cmd(); got != test.want {
			t.Errorf("Key %q: expected %#v, got %#v", test.msg.String(), test.want, got)
		}
	}
}

func TestQuit(t *testing.T) {
	model := NewModel(newTestManager(t), "List1")

	model, cmd := model.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if !model.quitting {
		t.Error("Expected quitting state")
	}
}
