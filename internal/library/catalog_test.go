package library

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const sampleCSV = `name,artist,rating
Smells Like Teen Spirit,Nirvana,6
Uptown Funk,Bruno Mars,4
Bad Guy,Billie Eilish,3
Epilogue,YOASOBI,-1
"Hello, Goodbye",The Beatles,5
`

// writeCatalog записывает CSV во временный файл и возвращает путь
func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "music.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Ошибка записи тестового каталога: %v", err)
	}
	return path
}

func loadCatalog(t *testing.T, content string) *Catalog {
	t.Helper()
	catalog := NewCatalog()
	if err := catalog.Load(writeCatalog(t, content)); err != nil {
		t.Fatalf("Ошибка загрузки каталога: %v", err)
	}
	return catalog
}

func TestLoad(t *testing.T) {
	catalog := loadCatalog(t, sampleCSV)

	if catalog.Len() != 5 {
		t.Fatalf("Ожидалось 5 треков, получено %d", catalog.Len())
	}
	if name, ok := catalog.Name("01"); !ok || name != "Smells Like Teen Spirit" {
		t.Errorf("Неверное название трека 01: %q (%v)", name, ok)
	}
	if artist, ok := catalog.Artist("05"); !ok || artist != "The Beatles" {
		t.Errorf("Неверный исполнитель трека 05: %q (%v)", artist, ok)
	}
	if name, _ := catalog.Name("05"); name != "Hello, Goodbye" {
		t.Errorf("Поле с запятой прочитано неверно: %q", name)
	}
	if got := catalog.Rating("01"); got != 5 {
		t.Errorf("Рейтинг 6 должен стать 5, получено %d", got)
	}
	if got := catalog.Rating("04"); got != 0 {
		t.Errorf("Рейтинг -1 должен стать 0, получено %d", got)
	}
}

func TestLoadClampsRating(t *testing.T) {
	tests := []struct {
		rating   string
		expected int
	}{
		{"6", 5},
		{"-3", 0},
		{"abc", 0},
		{"2", 2},
	}

	for _, test := range tests {
		catalog := loadCatalog(t, "name,artist,rating\nSong A,Artist X,"+test.rating+"\n")
		if got := catalog.Rating("01"); got != test.expected {
			t.Errorf("Рейтинг %q: ожидалось %d, получено %d", test.rating, test.expected, got)
		}
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	content := `name,artist,rating
One,A,1
Two,B,2
Broken,Row
Three,C,3
Four,D,4
Five,E,5
`
	catalog := loadCatalog(t, content)

	if catalog.Len() != 5 {
		t.Fatalf("Ожидалось 5 треков, получено %d", catalog.Len())
	}
	expectedKeys := []string{"01", "02", "03", "04", "05"}
	if keys := catalog.Keys(); !slices.Equal(keys, expectedKeys) {
		t.Errorf("Ожидались ключи %v, получено %v", expectedKeys, keys)
	}
	if name, _ := catalog.Name("03"); name != "Three" {
		t.Errorf("Ожидался трек Three под ключом 03, получено %q", name)
	}
	if skipped := catalog.Skipped(); len(skipped) != 1 || skipped[0] != 4 {
		t.Errorf("Ожидалась пропущенная строка 4, получено %v", skipped)
	}
}

func TestLoadMissingFile(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add("Existing", "Artist", 3)

	err := catalog.Load(filepath.Join(t.TempDir(), "nonexistent.csv"))
	if err == nil {
		t.Fatal("Ожидалась ошибка при загрузке несуществующего файла")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Ожидалась ошибка ErrNotFound, получено: %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Ошибка должна оборачивать os.ErrNotExist: %v", err)
	}
	if catalog.Len() != 1 {
		t.Errorf("Каталог не должен меняться при ошибке, получено %d треков", catalog.Len())
	}
}

func TestLoadReplacesContent(t *testing.T) {
	catalog := loadCatalog(t, sampleCSV)
	catalog.IncrementPlayCount("01")

	if err := catalog.Load(writeCatalog(t, "name,artist,rating\nOnly,One,1\n")); err != nil {
		t.Fatalf("Ошибка загрузки каталога: %v", err)
	}

	if catalog.Len() != 1 {
		t.Fatalf("Ожидался 1 трек после перезагрузки, получено %d", catalog.Len())
	}
	if catalog.PlayCount("01") != 0 {
		t.Errorf("Счетчик должен сброситься после перезагрузки, получено %d", catalog.PlayCount("01"))
	}
	if catalog.Has("02") {
		t.Error("Ключ 02 не должен существовать после перезагрузки")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	catalog := loadCatalog(t, "")
	if catalog.Len() != 0 {
		t.Errorf("Ожидался пустой каталог, получено %d треков", catalog.Len())
	}
}

func TestSentinels(t *testing.T) {
	catalog := loadCatalog(t, sampleCSV)

	if name, ok := catalog.Name("99"); ok || name != "" {
		t.Errorf("Name для отсутствующего ключа должен вернуть отсутствие, получено %q, %v", name, ok)
	}
	if artist, ok := catalog.Artist("99"); ok || artist != "" {
		t.Errorf("Artist для отсутствующего ключа должен вернуть отсутствие, получено %q, %v", artist, ok)
	}
	if got := catalog.Rating("99"); got != -1 {
		t.Errorf("Rating для отсутствующего ключа должен вернуть -1, получено %d", got)
	}
	if got := catalog.PlayCount("99"); got != -1 {
		t.Errorf("PlayCount для отсутствующего ключа должен вернуть -1, получено %d", got)
	}
	if got := catalog.PlayCount("01"); got != 0 {
		t.Errorf("PlayCount существующего трека должен быть 0, получено %d", got)
	}
	// "1" - не то же самое, что "01"
	if catalog.Has("1") {
		t.Error("Ключ без ведущего нуля не должен находиться")
	}
}

func TestMutatorsIgnoreMissingKey(t *testing.T) {
	catalog := loadCatalog(t, sampleCSV)
	before := catalog.Rows()

	catalog.SetRating("99", 3)
	catalog.IncrementPlayCount("99")

	if after := catalog.Rows(); !slices.Equal(before, after) {
		t.Errorf("Каталог не должен меняться: было %v, стало %v", before, after)
	}
}

func TestSetRatingAndPlayCount(t *testing.T) {
	catalog := loadCatalog(t, sampleCSV)

	catalog.SetRating("01", 2)
	if got := catalog.Rating("01"); got != 2 {
		t.Errorf("Ожидался рейтинг 2, получено %d", got)
	}
	catalog.SetRating("01", 42)
	if got := catalog.Rating("01"); got != 5 {
		t.Errorf("Ожидался рейтинг 5, получено %d", got)
	}

	catalog.IncrementPlayCount("01")
	catalog.IncrementPlayCount("01")
	if got := catalog.PlayCount("01"); got != 2 {
		t.Errorf("Ожидалось 2 прослушивания, получено %d", got)
	}
	if got := catalog.PlayCount("02"); got != 0 {
		t.Errorf("Счетчик другого трека не должен меняться, получено %d", got)
	}
}

func TestListAll(t *testing.T) {
	catalog := loadCatalog(t, sampleCSV)

	var lines []string
	for row := range catalog.ListAll() {
		lines = append(lines, row.String())
	}

	if len(lines) != 5 {
		t.Fatalf("Ожидалось 5 строк, получено %d", len(lines))
	}
	if lines[0] != "01\tSmells Like Teen Spirit\tNirvana\t⭐⭐⭐⭐⭐\t0" {
		t.Errorf("Неверная строка 01: %q", lines[0])
	}
	if lines[1] != "02\tUptown Funk\tBruno Mars\t⭐⭐⭐⭐\t0" {
		t.Errorf("Неверная строка 02: %q", lines[1])
	}
	if lines[3] != "04\tEpilogue\tYOASOBI\t\t0" {
		t.Errorf("Неверная строка 04: %q", lines[3])
	}
}

func TestListAllStopsEarly(t *testing.T) {
	catalog := loadCatalog(t, sampleCSV)

	count := 0
	for range catalog.ListAll() {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("Ожидалось 2 итерации, получено %d", count)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	content := `name,artist,rating
Smells Like Teen Spirit,Nirvana,5
Uptown Funk,Bruno Mars,4
"Hello, Goodbye",The Beatles,0
"Say ""Hi""",Someone,2
`
	path := writeCatalog(t, content)
	catalog := NewCatalog()
	if err := catalog.Load(path); err != nil {
		t.Fatalf("Ошибка загрузки каталога: %v", err)
	}

	if err := catalog.Save(path); err != nil {
		t.Fatalf("Ошибка сохранения каталога: %v", err)
	}

	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Ошибка чтения сохраненного каталога: %v", err)
	}
	if string(saved) != content {
		t.Errorf("Сохраненный каталог отличается:\n%s\nожидалось:\n%s", saved, content)
	}
}

func TestSaveWritesClampedRatings(t *testing.T) {
	catalog := loadCatalog(t, sampleCSV)

	var buf bytes.Buffer
	if err := catalog.Encode(&buf); err != nil {
		t.Fatalf("Ошибка кодирования каталога: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "name,artist,rating" {
		t.Errorf("Неверный заголовок: %q", lines[0])
	}
	if lines[1] != "Smells Like Teen Spirit,Nirvana,5" {
		t.Errorf("Неверная первая строка: %q", lines[1])
	}
	if lines[4] != "Epilogue,YOASOBI,0" {
		t.Errorf("Неверная четвертая строка: %q", lines[4])
	}
}

func TestAddAndUpdate(t *testing.T) {
	catalog := loadCatalog(t, sampleCSV)

	key := catalog.Add("New Song", "New Artist", 8)
	if key != "06" {
		t.Errorf("Ожидался ключ 06, получено %s", key)
	}
	if got := catalog.Rating(key); got != 5 {
		t.Errorf("Ожидался рейтинг 5, получено %d", got)
	}

	catalog.IncrementPlayCount(key)
	if !catalog.Update(key, "Renamed", "Other", 1) {
		t.Fatal("Update должен найти трек")
	}
	track, _ := catalog.Get(key)
	if track.Name != "Renamed" || track.Artist != "Other" || track.Rating() != 1 {
		t.Errorf("Неверные поля после обновления: %+v", track)
	}
	if track.PlayCount() != 1 {
		t.Errorf("Update не должен сбрасывать счетчик, получено %d", track.PlayCount())
	}

	if catalog.Update("99", "x", "y", 1) {
		t.Error("Update для отсутствующего ключа должен вернуть false")
	}
}

func TestZeroValueCatalogAdd(t *testing.T) {
	var catalog Catalog
	if key := catalog.Add("Song", "Artist", 3); key != "01" {
		t.Errorf("Ожидался ключ 01, получено %s", key)
	}
	if !catalog.Has("01") {
		t.Error("Трек должен находиться по ключу 01")
	}
}

func TestDeleteRederivesKeys(t *testing.T) {
	catalog := loadCatalog(t, sampleCSV)
	catalog.IncrementPlayCount("05")

	renames := catalog.Delete("02", "04", "99")

	if catalog.Len() != 3 {
		t.Fatalf("Ожидалось 3 трека, получено %d", catalog.Len())
	}
	expectedKeys := []string{"01", "02", "03"}
	if keys := catalog.Keys(); !slices.Equal(keys, expectedKeys) {
		t.Errorf("Ожидались ключи %v, получено %v", expectedKeys, keys)
	}
	if name, _ := catalog.Name("02"); name != "Bad Guy" {
		t.Errorf("Под ключом 02 ожидался Bad Guy, получено %q", name)
	}
	if got := catalog.PlayCount("03"); got != 1 {
		t.Errorf("Счетчик должен переехать вместе с треком, получено %d", got)
	}

	expectedRenames := map[string]string{"03": "02", "05": "03"}
	if len(renames) != len(expectedRenames) {
		t.Fatalf("Ожидались переименования %v, получено %v", expectedRenames, renames)
	}
	for oldKey, newKey := range expectedRenames {
		if renames[oldKey] != newKey {
			t.Errorf("Ожидалось переименование %s -> %s, получено %s", oldKey, newKey, renames[oldKey])
		}
	}
}

func TestFindDuplicate(t *testing.T) {
	catalog := loadCatalog(t, sampleCSV)

	key, ok := catalog.FindDuplicate("bad guy", "BILLIE EILISH")
	if !ok || key != "03" {
		t.Errorf("Ожидался дубликат 03, получено %q, %v", key, ok)
	}
	if _, ok := catalog.FindDuplicate("Bad Guy", "Someone Else"); ok {
		t.Error("Трек другого исполнителя не является дубликатом")
	}
}

func TestKeyFormat(t *testing.T) {
	tests := []struct {
		position int
		expected string
	}{
		{1, "01"},
		{9, "09"},
		{10, "10"},
		{100, "100"},
	}

	for _, test := range tests {
		if got := FormatKey(test.position); got != test.expected {
			t.Errorf("FormatKey(%d) = %s; expected %s", test.position, got, test.expected)
		}
		if got := KeyPosition(test.expected); got != test.position {
			t.Errorf("KeyPosition(%s) = %d; expected %d", test.expected, got, test.position)
		}
	}
	if got := KeyPosition("abc"); got != -1 {
		t.Errorf("KeyPosition(abc) = %d; expected -1", got)
	}
}
