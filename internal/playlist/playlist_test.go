package playlist

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// fakeCatalog - каталог из фиксированного набора ключей
type fakeCatalog struct {
	keys  map[string]bool
	plays map[string]int
}

func newFakeCatalog(keys ...string) *fakeCatalog {
	c := &fakeCatalog{keys: make(map[string]bool), plays: make(map[string]int)}
	for _, k := range keys {
		c.keys[k] = true
	}
	return c
}

func (c *fakeCatalog) Has(key string) bool { return c.keys[key] }

func (c *fakeCatalog) IncrementPlayCount(key string) {
	if c.keys[key] {
		c.plays[key]++
	}
}

func writePlaylist(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".csv"), []byte(content), 0644); err != nil {
		t.Fatalf("Ошибка записи тестового плейлиста: %v", err)
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	p, err := Load(t.TempDir(), "new", newFakeCatalog("01"))
	if err != nil {
		t.Fatalf("Отсутствующий файл не должен быть ошибкой: %v", err)
	}
	if p.Len() != 0 {
		t.Errorf("Ожидался пустой плейлист, получено %d элементов", p.Len())
	}
	if p.Name() != "new" {
		t.Errorf("Ожидалось имя new, получено %s", p.Name())
	}
}

func TestLoadPrunesUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	writePlaylist(t, dir, "mix", "01,1\n07,1\n03,0\n")

	p, err := Load(dir, "mix", newFakeCatalog("01", "02", "03", "04", "05"))
	if err != nil {
		t.Fatalf("Ошибка загрузки плейлиста: %v", err)
	}

	if p.Contains("07") {
		t.Error("Ключ 07 должен быть отброшен при загрузке")
	}
	expected := []Entry{{Key: "01", Included: true}, {Key: "03", Included: false}}
	if entries := p.Entries(); !slices.Equal(entries, expected) {
		t.Errorf("Ожидались элементы %v, получено %v", expected, entries)
	}
	if pruned := p.Pruned(); !slices.Equal(pruned, []string{"07"}) {
		t.Errorf("Ожидался отброшенный ключ 07, получено %v", pruned)
	}
}

func TestLoadRowWithoutFlag(t *testing.T) {
	dir := t.TempDir()
	writePlaylist(t, dir, "short", "02\n")

	p, err := Load(dir, "short", newFakeCatalog("02"))
	if err != nil {
		t.Fatalf("Ошибка загрузки плейлиста: %v", err)
	}
	if entries := p.Entries(); len(entries) != 1 || !entries[0].Included {
		t.Errorf("Строка без флага должна считаться включенной: %v", entries)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	writePlaylist(t, dir, "broken", "01,\"1\n02,1\n")

	if _, err := Load(dir, "broken", newFakeCatalog("01", "02")); err == nil {
		t.Error("Ожидалась ошибка для поврежденного файла плейлиста")
	}
}

func TestAddRejectsDuplicate(t *testing.T) {
	p, _ := New(t.TempDir(), "mix")

	if err := p.Add("01"); err != nil {
		t.Fatalf("Первое добавление не должно завершаться ошибкой: %v", err)
	}
	err := p.Add("01")
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("Ожидалась ошибка ErrDuplicate, получено: %v", err)
	}
	if p.Len() != 1 {
		t.Errorf("Плейлист должен содержать ровно 1 элемент, получено %d", p.Len())
	}
	if entries := p.Entries(); !entries[0].Included {
		t.Error("Новый элемент должен быть включен по умолчанию")
	}
}

func TestToggleAndRemove(t *testing.T) {
	p, _ := New(t.TempDir(), "mix")
	_ = p.Add("01")
	_ = p.Add("02")
	_ = p.Add("03")

	p.Toggle("02")
	p.Toggle("99")
	p.Remove("01")
	p.Remove("99")

	expected := []Entry{{Key: "02", Included: false}, {Key: "03", Included: true}}
	if entries := p.Entries(); !slices.Equal(entries, expected) {
		t.Errorf("Ожидались элементы %v, получено %v", expected, entries)
	}

	p.Toggle("02")
	if entries := p.Entries(); !entries[0].Included {
		t.Error("Повторное переключение должно вернуть флаг")
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "playlists")
	p, _ := New(dir, "mix")
	_ = p.Add("03")
	_ = p.Add("01")
	p.Toggle("01")

	if err := p.Save(); err != nil {
		t.Fatalf("Ошибка сохранения плейлиста: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "mix.csv"))
	if err != nil {
		t.Fatalf("Ошибка чтения файла плейлиста: %v", err)
	}
	if string(data) != "03,1\n01,0\n" {
		t.Errorf("Неверное содержимое файла: %q", data)
	}

	reloaded, err := Load(dir, "mix", newFakeCatalog("01", "03"))
	if err != nil {
		t.Fatalf("Ошибка загрузки плейлиста: %v", err)
	}
	if !slices.Equal(reloaded.Entries(), p.Entries()) {
		t.Errorf("Плейлист после перезагрузки отличается: %v vs %v", reloaded.Entries(), p.Entries())
	}
}

func TestPlayIncrementsIncludedOnly(t *testing.T) {
	catalog := newFakeCatalog("01", "02", "03")
	p, _ := New(t.TempDir(), "mix")
	_ = p.Add("01")
	_ = p.Add("02")
	_ = p.Add("03")
	p.Toggle("02")

	played := p.Play(catalog)
	p.Play(catalog)

	if played != 2 {
		t.Errorf("Ожидалось 2 воспроизведенных трека, получено %d", played)
	}
	if catalog.plays["01"] != 2 || catalog.plays["03"] != 2 {
		t.Errorf("Неверные счетчики включенных треков: %v", catalog.plays)
	}
	if catalog.plays["02"] != 0 {
		t.Errorf("Выключенный трек не должен воспроизводиться: %v", catalog.plays)
	}
}

func TestRenumber(t *testing.T) {
	p, _ := New(t.TempDir(), "mix")
	_ = p.Add("05")
	_ = p.Add("02")
	_ = p.Add("01")
	_ = p.Add("03")
	p.Toggle("05")

	// Из каталога удалены 02 и 04
	changed := p.Renumber([]string{"02", "04"}, map[string]string{"03": "02", "05": "03"})

	if !changed {
		t.Error("Ожидалось изменение плейлиста")
	}
	expected := []Entry{{Key: "03", Included: false}, {Key: "01", Included: true}, {Key: "02", Included: true}}
	if entries := p.Entries(); !slices.Equal(entries, expected) {
		t.Errorf("Ожидались элементы %v, получено %v", expected, entries)
	}

	if p.Renumber([]string{"09"}, map[string]string{"10": "09"}) {
		t.Error("Плейлист без затронутых ключей не должен меняться")
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"Favourites", false},
		{"List 1", false},
		{"", true},
		{"   ", true},
		{"../etc", true},
		{"a/b", true},
		{"..", true},
	}

	for _, test := range tests {
		err := ValidateName(test.name)
		if (err != nil) != test.wantErr {
			t.Errorf("ValidateName(%q) error = %v; wantErr %v", test.name, err, test.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateName(%q) должна возвращать ErrInvalidName: %v", test.name, err)
		}
	}
}

func TestListAndDelete(t *testing.T) {
	dir := t.TempDir()
	writePlaylist(t, dir, "rock", "01,1\n")
	writePlaylist(t, dir, "jazz", "02,1\n")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Ошибка записи файла: %v", err)
	}

	names, err := List(dir)
	if err != nil {
		t.Fatalf("Ошибка получения списка плейлистов: %v", err)
	}
	if !slices.Equal(names, []string{"jazz", "rock"}) {
		t.Errorf("Ожидались плейлисты [jazz rock], получено %v", names)
	}

	if err := Delete(dir, "rock"); err != nil {
		t.Fatalf("Ошибка удаления плейлиста: %v", err)
	}
	if err := Delete(dir, "rock"); err != nil {
		t.Errorf("Повторное удаление не должно быть ошибкой: %v", err)
	}

	names, _ = List(dir)
	if !slices.Equal(names, []string{"jazz"}) {
		t.Errorf("Ожидался плейлист [jazz], получено %v", names)
	}

	names, err = List(filepath.Join(dir, "missing"))
	if err != nil || len(names) != 0 {
		t.Errorf("Отсутствующая директория должна давать пустой список: %v, %v", names, err)
	}
}
