// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-jukebox/internal/track"
	"github.com/hazadus/go-jukebox/internal/tui/app"
)

// App представляет основное TUI приложение
type App struct {
	manager *track.Manager
	options app.Options
}

// NewApp создает новый экземпляр TUI приложения.
// musicDir - директория или базовый URL с аудиофайлами треков.
func NewApp(manager *track.Manager, musicDir, defaultPlaylist string) *App {
	return &App{
		manager: manager,
		options: app.Options{
			MusicDir:        musicDir,
			DefaultPlaylist: defaultPlaylist,
		},
	}
}

// Model создает главную модель Bubble Tea
func (tuiApp *App) Model() *app.MainModel {
	return app.NewMainModel(tuiApp.manager, tuiApp.options)
}

// Run запускает TUI приложение
func (tuiApp *App) Run() error {
	model := tuiApp.Model()

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()

	// Закрываем плеер после завершения программы
	model.Close()

	return err
}
