package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/hazadus/go-jukebox/internal/backup"
	"github.com/hazadus/go-jukebox/internal/config"
	"github.com/hazadus/go-jukebox/internal/library"
	"github.com/hazadus/go-jukebox/internal/logging"
	"github.com/hazadus/go-jukebox/internal/track"
)

// Application связывает конфигурацию, логгер и каталог для всех команд
type Application struct {
	Config  *config.Config
	Library *track.Manager
	Logger  zerolog.Logger

	// libraryErr - ошибка загрузки каталога; часть команд может работать без него
	libraryErr error
	prompter   Prompter
	// backupStorage заменяет S3, если задан
	backupStorage backup.Storage
}

// setup загружает конфигурацию, настраивает логгер и читает каталог
func (app *Application) setup(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.SetGlobal(logger)

	app.Config = cfg
	app.Logger = logger
	app.prompter = newTerminalPrompter()
	app.Library = track.NewManager(track.Options{
		LibraryFile: cfg.LibraryFile,
		PlaylistDir: cfg.PlaylistDir,
		ImagesDir:   cfg.ImagesDir,
		Logger:      logger,
	})
	app.loadLibrary()

	return nil
}

// loadLibrary читает каталог. Ошибка запоминается и сообщается только командам,
// которым нужен существующий каталог.
func (app *Application) loadLibrary() {
	app.libraryErr = app.Library.Load()
	if app.libraryErr != nil {
		app.Logger.Debug().Err(app.libraryErr).Msg("каталог не загружен")
	}
}

// requireLibrary возвращает ошибку, если каталог не удалось загрузить
func (app *Application) requireLibrary() error {
	if app.libraryErr != nil {
		return fmt.Errorf("каталог недоступен: %w", app.libraryErr)
	}
	return nil
}

// allowMissingLibrary разрешает работу с пустым каталогом, если файла еще нет.
// Каталог будет создан при первом сохранении.
func (app *Application) allowMissingLibrary() error {
	if app.libraryErr == nil {
		return nil
	}
	if errors.Is(app.libraryErr, library.ErrNotFound) {
		fmt.Printf("📂 Каталог %s не найден, будет создан новый\n", app.Config.LibraryFile)
		app.libraryErr = nil
		return nil
	}
	return app.requireLibrary()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &Application{}
	rootCmd := app.createRootCommand(ctx)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		stop()
		os.Exit(1)
	}
}
