package library

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// ErrNotFound возвращается, когда файл каталога отсутствует
var ErrNotFound = errors.New("файл каталога не найден")

// Row представляет строку списка треков для отображения и поиска
type Row struct {
	Key       string
	Name      string
	Artist    string
	Rating    int
	PlayCount int
}

// Stars возвращает рейтинг в виде звезд
func (r Row) Stars() string {
	return strings.Repeat("⭐", r.Rating)
}

// String форматирует строку как "ключ\tназвание\tисполнитель\tзвезды\tпрослушивания"
func (r Row) String() string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%d", r.Key, r.Name, r.Artist, r.Stars(), r.PlayCount)
}

// Catalog хранит треки под позиционными ключами "01", "02", ...
//
// Ключ - это позиция трека, а не его идентичность: после загрузки или удаления
// ключи пересчитываются заново. Catalog не синхронизирован.
type Catalog struct {
	tracks  []*Track
	index   map[string]int
	skipped []int
}

// NewCatalog создает пустой каталог
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// FormatKey возвращает ключ для позиции (начиная с 1)
func FormatKey(position int) string {
	return fmt.Sprintf("%02d", position)
}

// Len возвращает количество треков
func (c *Catalog) Len() int {
	return len(c.tracks)
}

// Has сообщает, есть ли трек с таким ключом
func (c *Catalog) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Keys возвращает ключи в порядке следования
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.tracks))
	for i := range c.tracks {
		keys[i] = FormatKey(i + 1)
	}
	return keys
}

// Skipped возвращает номера строк файла, пропущенных при последней загрузке
func (c *Catalog) Skipped() []int {
	return c.skipped
}

func (c *Catalog) lookup(key string) (*Track, bool) {
	i, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.tracks[i], true
}

// Get возвращает копию трека по ключу
func (c *Catalog) Get(key string) (Track, bool) {
	t, ok := c.lookup(key)
	if !ok {
		return Track{}, false
	}
	return *t, true
}

// Name возвращает название трека; false, если трека нет
func (c *Catalog) Name(key string) (string, bool) {
	t, ok := c.lookup(key)
	if !ok {
		return "", false
	}
	return t.Name, true
}

// Artist возвращает исполнителя трека; false, если трека нет
func (c *Catalog) Artist(key string) (string, bool) {
	t, ok := c.lookup(key)
	if !ok {
		return "", false
	}
	return t.Artist, true
}

// Rating возвращает рейтинг трека или -1, если трека нет
func (c *Catalog) Rating(key string) int {
	t, ok := c.lookup(key)
	if !ok {
		return -1
	}
	return t.Rating()
}

// PlayCount возвращает количество прослушиваний или -1, если трека нет
func (c *Catalog) PlayCount(key string) int {
	t, ok := c.lookup(key)
	if !ok {
		return -1
	}
	return t.PlayCount()
}

// SetRating меняет рейтинг; отсутствующий ключ молча игнорируется
func (c *Catalog) SetRating(key string, rating int) {
	if t, ok := c.lookup(key); ok {
		t.SetRating(rating)
	}
}

// IncrementPlayCount увеличивает счетчик прослушиваний; отсутствующий ключ молча игнорируется
func (c *Catalog) IncrementPlayCount(key string) {
	if t, ok := c.lookup(key); ok {
		t.IncrementPlayCount()
	}
}

// Add добавляет трек в конец каталога и возвращает его ключ
func (c *Catalog) Add(name, artist string, rating int) string {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	c.tracks = append(c.tracks, NewTrack(name, artist, rating))
	key := FormatKey(len(c.tracks))
	c.index[key] = len(c.tracks) - 1
	return key
}

// Update меняет поля существующего трека, сохраняя счетчик прослушиваний
func (c *Catalog) Update(key, name, artist string, rating int) bool {
	t, ok := c.lookup(key)
	if !ok {
		return false
	}
	t.Name = name
	t.Artist = artist
	t.SetRating(rating)
	return true
}

// Delete удаляет треки и пересчитывает ключи оставшихся.
// Возвращает карту переименований "старый ключ -> новый ключ" для треков, чей ключ изменился.
func (c *Catalog) Delete(keys ...string) map[string]string {
	drop := make(map[int]bool, len(keys))
	for _, key := range keys {
		if i, ok := c.index[key]; ok {
			drop[i] = true
		}
	}

	renames := make(map[string]string)
	if len(drop) == 0 {
		return renames
	}

	kept := make([]*Track, 0, len(c.tracks)-len(drop))
	for i, t := range c.tracks {
		if drop[i] {
			continue
		}
		kept = append(kept, t)
		if oldKey, newKey := FormatKey(i+1), FormatKey(len(kept)); oldKey != newKey {
			renames[oldKey] = newKey
		}
	}

	c.replace(kept)
	return renames
}

// FindDuplicate ищет трек с тем же названием и исполнителем без учета регистра
func (c *Catalog) FindDuplicate(name, artist string) (string, bool) {
	for i, t := range c.tracks {
		if strings.EqualFold(t.Name, name) && strings.EqualFold(t.Artist, artist) {
			return FormatKey(i + 1), true
		}
	}
	return "", false
}

// ListAll лениво перечисляет строки каталога в порядке ключей
func (c *Catalog) ListAll() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for i, t := range c.tracks {
			if !yield(makeRow(FormatKey(i+1), t)) {
				return
			}
		}
	}
}

// Rows возвращает все строки каталога
func (c *Catalog) Rows() []Row {
	rows := make([]Row, 0, len(c.tracks))
	for row := range c.ListAll() {
		rows = append(rows, row)
	}
	return rows
}

// replace заменяет содержимое каталога целиком и пересобирает индекс ключей
func (c *Catalog) replace(tracks []*Track) {
	c.tracks = tracks
	c.index = make(map[string]int, len(tracks))
	for i := range tracks {
		c.index[FormatKey(i+1)] = i
	}
}

func makeRow(key string, t *Track) Row {
	return Row{
		Key:       key,
		Name:      t.Name,
		Artist:    t.Artist,
		Rating:    t.Rating(),
		PlayCount: t.PlayCount(),
	}
}

// KeyPosition возвращает числовую позицию ключа, -1 для некорректного ключа
func KeyPosition(key string) int {
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 {
		return -1
	}
	return n
}

// Row возвращает строку каталога по ключу
func (c *Catalog) Row(key string) (Row, bool) {
	t, ok := c.lookup(key)
	if !ok {
		return Row{}, false
	}
	return makeRow(key, t), true
}
