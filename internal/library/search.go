package library

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"
)

// Field определяет поле, по которому выполняется поиск
type Field int

const (
	// FieldName - поиск по названию трека
	FieldName Field = iota
	// FieldArtist - поиск по исполнителю
	FieldArtist
)

// String возвращает имя поля
func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldArtist:
		return "artist"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// ParseField разбирает имя поля поиска
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return FieldName, nil
	case "artist":
		return FieldArtist, nil
	default:
		return FieldName, fmt.Errorf("неизвестное поле поиска: %q", s)
	}
}

// Search фильтрует список треков по подстроке без учета регистра.
// Пустой запрос возвращает все треки; относительный порядок сохраняется.
func (c *Catalog) Search(term string, field Field) iter.Seq[Row] {
	return Filter(c.ListAll(), term, field)
}

// Filter отбирает строки, у которых выбранное поле содержит term
func Filter(rows iter.Seq[Row], term string, field Field) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for row := range rows {
			value := row.Name
			if field == FieldArtist {
				value = row.Artist
			}
			if _, ok := MatchFold(value, term); !ok {
				continue
			}
			if !yield(row) {
				return
			}
		}
	}
}

// MatchFold ищет term в target без учета регистра (простая свертка Unicode, как strings.EqualFold)
// и возвращает номера совпавших рун target. Пустой term совпадает с любой строкой.
func MatchFold(target, term string) ([]int, bool) {
	if term == "" {
		return nil, true
	}
	runes := []rune(target)
	width := utf8.RuneCountInString(term)
	for start := 0; start+width <= len(runes); start++ {
		if !strings.EqualFold(string(runes[start:start+width]), term) {
			continue
		}
		matched := make([]int, width)
		for i := range matched {
			matched[i] = start + i
		}
		return matched, true
	}
	return nil, false
}
