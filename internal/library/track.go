// Package library содержит модель каталога треков и его CSV-хранилище
package library

import (
	"errors"
	"strconv"
	"strings"
)

// Границы допустимого рейтинга
const (
	MinRating = 0
	MaxRating = 5
)

// Track представляет одну запись каталога
type Track struct {
	Name      string
	Artist    string
	rating    int
	playCount int
}

// NewTrack создает трек с проверенным рейтингом и нулевым счетчиком прослушиваний
func NewTrack(name, artist string, rating int) *Track {
	t := &Track{Name: name, Artist: artist}
	t.SetRating(rating)
	return t
}

// Rating возвращает рейтинг трека
func (t *Track) Rating() int {
	return t.rating
}

// SetRating устанавливает рейтинг, приводя его к диапазону [0, 5]
func (t *Track) SetRating(value int) {
	t.rating = ClampRating(value)
}

// SetRatingText устанавливает рейтинг из строки; нечисловое значение дает 0
func (t *Track) SetRatingText(value string) {
	t.rating = ParseRating(value)
}

// PlayCount возвращает количество прослушиваний
func (t *Track) PlayCount() int {
	return t.playCount
}

// IncrementPlayCount увеличивает счетчик прослушиваний на единицу
func (t *Track) IncrementPlayCount() {
	t.playCount++
}

// ClampRating приводит значение к ближайшей границе допустимого диапазона
func ClampRating(value int) int {
	switch {
	case value < MinRating:
		return MinRating
	case value > MaxRating:
		return MaxRating
	default:
		return value
	}
}

// ParseRating разбирает рейтинг из текста. Нечисловой ввод превращается в 0,
// числа вне диапазона (включая переполнение int) прижимаются к границе.
func ParseRating(value string) int {
	value = strings.TrimSpace(value)
	n, err := strconv.Atoi(value)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			// Atoi возвращает насыщенное значение с верным знаком
			return ClampRating(n)
		}
		return MinRating
	}
	return ClampRating(n)
}
