package library

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
)

// Header - заголовок файла каталога
var Header = []string{"name", "artist", "rating"}

// Load заменяет содержимое каталога данными из CSV-файла.
// Отсутствующий файл возвращает ошибку ErrNotFound, содержимое каталога при этом не меняется.
func (c *Catalog) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
		}
		return fmt.Errorf("ошибка открытия каталога: %w", err)
	}
	defer file.Close()

	return c.Decode(file)
}

// Decode читает каталог: строка заголовка, затем по строке "название,исполнитель,рейтинг"
// на трек. Строки с другим числом полей пропускаются, загрузка продолжается.
func (c *Catalog) Decode(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		tracks  []*Track
		skipped []int
		header  = true
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			if !header {
				skipped = append(skipped, parseErr.StartLine)
			}
			header = false
			continue
		}
		if err != nil {
			return fmt.Errorf("ошибка чтения каталога: %w", err)
		}

		if header {
			header = false
			continue
		}
		if len(record) != len(Header) {
			line, _ := reader.FieldPos(0)
			skipped = append(skipped, line)
			continue
		}

		t := &Track{Name: record[0], Artist: record[1]}
		t.SetRatingText(record[2])
		tracks = append(tracks, t)
	}

	c.replace(tracks)
	c.skipped = skipped
	return nil
}

// Save перезаписывает файл каталога: заголовок и по строке на трек в порядке ключей
func (c *Catalog) Save(path string) error {
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("ошибка записи каталога: %w", err)
	}
	return nil
}

// Encode записывает каталог в CSV
func (c *Catalog) Encode(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("ошибка записи заголовка: %w", err)
	}
	for _, t := range c.tracks {
		if err := writer.Write([]string{t.Name, t.Artist, strconv.Itoa(t.Rating())}); err != nil {
			return fmt.Errorf("ошибка записи трека: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
