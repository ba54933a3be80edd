package library

import "testing"

func TestClampRating(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{-100, 0},
		{-1, 0},
		{0, 0},
		{3, 3},
		{5, 5},
		{6, 5},
		{1000, 5},
	}

	for _, test := range tests {
		result := ClampRating(test.input)
		if result != test.expected {
			t.Errorf("ClampRating(%d) = %d; expected %d", test.input, result, test.expected)
		}
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"4", 4},
		{" 2 ", 2},
		{"6", 5},
		{"-3", 0},
		{"", 0},
		{"five", 0},
		{"3.5", 0},
		{"99999999999999999999999", 5},
		{"-99999999999999999999999", 0},
	}

	for _, test := range tests {
		result := ParseRating(test.input)
		if result != test.expected {
			t.Errorf("ParseRating(%q) = %d; expected %d", test.input, result, test.expected)
		}
	}
}

func TestNewTrack(t *testing.T) {
	track := NewTrack("Song A", "Artist X", 9)

	if track.Name != "Song A" || track.Artist != "Artist X" {
		t.Errorf("Неверные поля трека: %+v", track)
	}
	if track.Rating() != 5 {
		t.Errorf("Ожидался рейтинг 5, получено %d", track.Rating())
	}
	if track.PlayCount() != 0 {
		t.Errorf("Ожидался счетчик 0, получено %d", track.PlayCount())
	}
}

func TestTrackSetRating(t *testing.T) {
	track := NewTrack("Song", "Artist", 3)

	track.SetRating(-7)
	if track.Rating() != 0 {
		t.Errorf("Ожидался рейтинг 0, получено %d", track.Rating())
	}

	track.SetRating(4)
	track.SetRating(4)
	if track.Rating() != 4 {
		t.Errorf("Ожидался рейтинг 4, получено %d", track.Rating())
	}

	track.SetRatingText("not a number")
	if track.Rating() != 0 {
		t.Errorf("Ожидался рейтинг 0 для нечислового ввода, получено %d", track.Rating())
	}
}

func TestIncrementPlayCount(t *testing.T) {
	track := NewTrack("Song", "Artist", 0)

	const n = 17
	for i := 0; i < n; i++ {
		before := track.PlayCount()
		track.IncrementPlayCount()
		if track.PlayCount() != before+1 {
			t.Fatalf("Счетчик должен расти на 1: было %d, стало %d", before, track.PlayCount())
		}
	}

	if track.PlayCount() != n {
		t.Errorf("Ожидалось %d прослушиваний, получено %d", n, track.PlayCount())
	}
}
