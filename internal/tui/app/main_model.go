// Package app содержит основную логику TUI приложения
package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-jukebox/internal/player"
	"github.com/hazadus/go-jukebox/internal/track"
	"github.com/hazadus/go-jukebox/internal/tui/editor"
	tuiPlayer "github.com/hazadus/go-jukebox/internal/tui/player"
	tuiPlaylist "github.com/hazadus/go-jukebox/internal/tui/playlist"
	"github.com/hazadus/go-jukebox/internal/tui/tracklist"
)

// ScreenType определяет тип текущего экрана
type ScreenType int

// Константы для типов экранов
const (
	// TracklistScreen - экран списка треков
	TracklistScreen ScreenType = iota
	// PlayerScreen - экран трека и воспроизведения
	PlayerScreen
	// EditorScreen - экран добавления и редактирования
	EditorScreen
	// PlaylistScreen - экран плейлиста
	PlaylistScreen
)

// Options настройки главной модели
type Options struct {
	MusicDir        string
	DefaultPlaylist string
}

// MainModel представляет главную модель TUI
type MainModel struct {
	manager        *track.Manager
	options        Options
	currentScreen  ScreenType
	tracklistModel *tracklist.Model
	playerModel    *tuiPlayer.Model
	editorModel    *editor.Model
	playlistModel  *tuiPlaylist.Model
	globalPlayer   *player.Player // Глобальный плеер для переиспользования
	lastSize       tea.WindowSizeMsg
}

// NewMainModel создает новую главную модель
func NewMainModel(manager *track.Manager, options Options) *MainModel {
	return &MainModel{
		manager:        manager,
		options:        options,
		currentScreen:  TracklistScreen,
		tracklistModel: tracklist.NewModel(manager, options.DefaultPlaylist),
		globalPlayer:   player.NewPlayer(),
	}
}

// Init инициализирует модель
func (m *MainModel) Init() tea.Cmd {
	return m.tracklistModel.Init()
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.globalPlayer.Stop()
			return m, tea.Quit
		}

	case tracklist.TrackSelectedMsg:
		playerModel, err := tuiPlayer.NewModel(m.manager, m.globalPlayer, m.options.MusicDir, msg.Key)
		if err != nil {
			m.tracklistModel.SetStatus(err.Error())
			return m, nil
		}
		m.currentScreen = PlayerScreen
		m.playerModel = playerModel
		return m, tea.Batch(m.playerModel.Init(), m.resize())

	case tracklist.TrackEditMsg:
		editorModel, err := editor.NewEditModel(m.manager, msg.Key)
		if err != nil {
			m.tracklistModel.SetStatus(err.Error())
			return m, nil
		}
		m.currentScreen = EditorScreen
		m.editorModel = editorModel
		return m, tea.Batch(m.editorModel.Init(), m.resize())

	case tracklist.TrackAddMsg:
		m.currentScreen = EditorScreen
		m.editorModel = editor.NewAddModel(m.manager)
		return m, tea.Batch(m.editorModel.Init(), m.resize())

	case tracklist.PlaylistOpenMsg:
		playlistModel, err := tuiPlaylist.NewModel(m.manager, msg.Name)
		if err != nil {
			m.tracklistModel.SetStatus(err.Error())
			return m, nil
		}
		m.currentScreen = PlaylistScreen
		m.playlistModel = playlistModel
		return m, tea.Batch(m.playlistModel.Init(), m.resize())

	case tuiPlayer.GoBackMsg:
		m.playerModel = nil
		return m.backToTracklist("")

	case editor.GoBackMsg:
		m.editorModel = nil
		return m.backToTracklist(msg.Status)

	case tuiPlaylist.GoBackMsg:
		m.playlistModel = nil
		return m.backToTracklist("")

	case tea.WindowSizeMsg:
		m.lastSize = msg
	}

	return m, m.updateCurrent(msg)
}

// backToTracklist возвращает к списку треков с обновленными данными
func (m *MainModel) backToTracklist(status string) (tea.Model, tea.Cmd) {
	m.currentScreen = TracklistScreen
	m.tracklistModel.RefreshData()
	m.tracklistModel.SetStatus(status)
	return m, nil
}

// resize передает новому экрану последний известный размер окна
func (m *MainModel) resize() tea.Cmd {
	if m.lastSize.Width == 0 {
		return nil
	}
	size := m.lastSize
	return func() tea.Msg { return size }
}

// updateCurrent передает сообщение активной модели
func (m *MainModel) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch m.currentScreen {
	case TracklistScreen:
		m.tracklistModel, cmd = m.tracklistModel.Update(msg)

	case PlayerScreen:
		if m.playerModel != nil {
			var updatedModel tea.Model
			updatedModel, cmd = m.playerModel.Update(msg)
			if playerModel, ok := updatedModel.(*tuiPlayer.Model); ok {
				m.playerModel = playerModel
			}
		}

	case EditorScreen:
		if m.editorModel != nil {
			m.editorModel, cmd = m.editorModel.Update(msg)
		}

	case PlaylistScreen:
		if m.playlistModel != nil {
			m.playlistModel, cmd = m.playlistModel.Update(msg)
		}
	}

	return cmd
}

// View отображает интерфейс
func (m *MainModel) View() string {
	switch m.currentScreen {
	case TracklistScreen:
		return m.tracklistModel.View()

	case PlayerScreen:
		if m.playerModel != nil {
			return m.playerModel.View()
		}
		return "Ошибка: модель плеера не инициализирована"

	case EditorScreen:
		if m.editorModel != nil {
			return m.editorModel.View()
		}
		return "Ошибка: модель редактора не инициализирована"

	case PlaylistScreen:
		if m.playlistModel != nil {
			return m.playlistModel.View()
		}
		return "Ошибка: модель плейлиста не инициализирована"

	default:
		return "Неизвестный экран"
	}
}

// Close закрывает ресурсы главной модели
func (m *MainModel) Close() {
	if m.globalPlayer != nil {
		_ = m.globalPlayer.Close()
	}
}
