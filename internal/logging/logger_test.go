package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug", Format: "json", Output: &buf})

	logger.Debug().Str("key", "01").Msg("трек обновлен")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Ожидалась JSON-запись, получено %q: %v", buf.String(), err)
	}
	if entry["level"] != "debug" {
		t.Errorf("Ожидался уровень debug, получено %v", entry["level"])
	}
	if entry["key"] != "01" {
		t.Errorf("Ожидалось поле key=01, получено %v", entry["key"])
	}
	if entry["message"] != "трек обновлен" {
		t.Errorf("Неверное сообщение: %v", entry["message"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "json", Output: &buf})

	logger.Info().Msg("не должно попасть в вывод")
	if buf.Len() != 0 {
		t.Errorf("Сообщение info не должно выводиться при уровне warn: %q", buf.String())
	}

	logger.Warn().Msg("предупреждение")
	if !strings.Contains(buf.String(), "предупреждение") {
		t.Errorf("Ожидалось предупреждение в выводе: %q", buf.String())
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "loud", Format: "json", Output: &buf})

	logger.Debug().Msg("debug")
	logger.Info().Msg("info")

	if strings.Contains(buf.String(), `"debug"`) {
		t.Errorf("При неизвестном уровне debug должен отфильтровываться: %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"info"`) {
		t.Errorf("Ожидалось сообщение info: %q", buf.String())
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "text", Output: &buf})

	logger.Info().Msg("каталог загружен")

	if !strings.Contains(buf.String(), "каталог загружен") {
		t.Errorf("Ожидалось сообщение в текстовом выводе: %q", buf.String())
	}
	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("Текстовый формат не должен быть JSON: %q", buf.String())
	}
}

func TestSetGlobal(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() { log.Logger = previous })

	var buf bytes.Buffer
	SetGlobal(New(Config{Level: "warn", Format: "json", Output: &buf}))

	log.Warn().Str("key", "01").Msg("трек пропущен")
	log.Info().Msg("не должно попасть в вывод")

	if !strings.Contains(buf.String(), "трек пропущен") || !strings.Contains(buf.String(), `"key":"01"`) {
		t.Errorf("Глобальный логгер должен писать в заданный вывод: %q", buf.String())
	}
	if strings.Contains(buf.String(), "не должно попасть") {
		t.Errorf("Глобальный логгер должен учитывать уровень: %q", buf.String())
	}
}
