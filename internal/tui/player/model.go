// Package player содержит модель экрана трека и воспроизведения для TUI
package player

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-jukebox/internal/library"
	"github.com/hazadus/go-jukebox/internal/player"
	"github.com/hazadus/go-jukebox/internal/streaming"
	"github.com/hazadus/go-jukebox/internal/track"
	"github.com/hazadus/go-jukebox/internal/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0000ff")).
			MarginBottom(1)

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1).
			MarginBottom(1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)
)

// GoBackMsg отправляется для возврата к списку треков
type GoBackMsg struct{}

// ProgressMsg содержит обновления прогресса воспроизведения
type ProgressMsg struct {
	Status player.Status
}

// PlaybackStartedMsg отправляется после запуска воспроизведения
type PlaybackStartedMsg struct {
	Source string
}

// PlaybackFinishedMsg отправляется при завершении воспроизведения
type PlaybackFinishedMsg struct{}

// PlaybackErrorMsg отправляется при ошибке воспроизведения
type PlaybackErrorMsg struct {
	Error error
}

// Model представляет модель экрана трека: подробности и воспроизведение
type Model struct {
	manager     *track.Manager
	player      *player.Player
	musicDir    string
	details     track.Details
	source      string
	progressBar progress.Model
	status      player.Status
	isPlaying   bool
	error       error
	width       int
	height      int
}

// NewModel создает модель экрана для трека с ключом key
func NewModel(manager *track.Manager, p *player.Player, musicDir, key string) (*Model, error) {
	details, err := manager.Details(key)
	if err != nil {
		return nil, err
	}

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	return &Model{
		manager:     manager,
		player:      p,
		musicDir:    musicDir,
		details:     details,
		progressBar: prog,
		status:      player.Status{Volume: p.Volume()},
	}, nil
}

// Init засчитывает прослушивание и запускает воспроизведение
func (m *Model) Init() tea.Cmd {
	return m.startPlayback()
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = min(60, msg.Width-10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			m.player.Stop()
			return m, func() tea.Msg {
				return GoBackMsg{}
			}

		case " ":
			if m.error == nil {
				m.player.Pause()
				m.isPlaying = !m.isPlaying
			}
			return m, nil

		case "r":
			m.player.Stop()
			m.error = nil
			m.status = player.Status{}
			return m, m.startPlayback()

		case "up", "down":
			step := 0.5
			if msg.String() == "down" {
				step = -step
			}
			m.status.Volume = m.player.AdjustVolume(step)
			return m, nil

		case "+", "=", "-":
			delta := 1
			if msg.String() == "-" {
				delta = -1
			}
			rating := library.ClampRating(m.details.Rating + delta)
			if err := m.manager.SetRating(m.details.Key, rating); err != nil {
				m.error = err
				return m, nil
			}
			m.refreshDetails()
			return m, nil
		}

	case PlaybackStartedMsg:
		m.source = msg.Source
		m.isPlaying = true
		m.refreshDetails()
		return m, m.listenForProgress()

	case ProgressMsg:
		m.status = msg.Status
		m.isPlaying = msg.Status.IsPlaying

		var percent float64
		if msg.Status.Total > 0 {
			percent = float64(msg.Status.Current) / float64(msg.Status.Total)
		}

		return m, tea.Batch(
			m.progressBar.SetPercent(percent),
			m.listenForProgress(),
		)

	case PlaybackFinishedMsg:
		m.isPlaying = false
		return m, func() tea.Msg {
			return GoBackMsg{}
		}

	case PlaybackErrorMsg:
		m.error = msg.Error
		m.isPlaying = false
		m.refreshDetails()
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progressBar.Update(msg)
		m.progressBar = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m *Model) refreshDetails() {
	if details, err := m.manager.Details(m.details.Key); err == nil {
		m.details = details
	}
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("🎵 Трек %s", m.details.Key)))
	b.WriteString("\n\n")
	b.WriteString(trackInfoStyle.Render(m.trackInfo()))
	b.WriteString("\n\n")

	if m.error != nil {
		b.WriteString(errorStyle.Render("❌ " + m.error.Error()))
		b.WriteString("\n\n")
		b.WriteString(controlsStyle.Render("r: повторить • +/-: рейтинг • q/esc: назад к списку"))
		return b.String()
	}

	statusIcon := "⏸️"
	if m.isPlaying {
		statusIcon = "▶️"
	}
	b.WriteString(statusStyle.Render(fmt.Sprintf("%s %s", statusIcon, m.formatStatus())))
	b.WriteString("\n\n")

	b.WriteString(m.progressBar.View())
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf(
		"%s / %s",
		utils.FormatDuration(m.status.Current),
		utils.FormatDuration(m.status.Total),
	))
	b.WriteString(fmt.Sprintf("  🔊 %+.1f", m.status.Volume))
	b.WriteString("\n\n")

	b.WriteString(controlsStyle.Render(
		"Пробел: пауза/воспроизведение • r: сначала • ↑/↓: громкость • +/-: рейтинг • q/esc: назад к списку",
	))
	return b.String()
}

func (m *Model) trackInfo() string {
	lines := []string{
		"🎤 " + m.details.Artist,
		"🎵 " + m.details.Name,
		fmt.Sprintf("⭐ %d  🔁 %d", m.details.Rating, m.details.PlayCount),
	}
	if m.details.HasArtwork() {
		lines = append(lines, "🖼️ "+m.details.ArtworkPath)
	}
	if len(m.details.Playlists) > 0 {
		lines = append(lines, "📃 "+strings.Join(m.details.Playlists, ", "))
	}
	return strings.Join(lines, "\n")
}

// formatStatus описывает состояние воспроизведения; для потока по сети
// учитывает зависания позиции
func (m *Model) formatStatus() string {
	if !m.isPlaying {
		return "Пауза"
	}
	if streaming.IsURL(m.source) {
		return streaming.GetStreamStatus(m.status.StuckCount)
	}
	return "Воспроизведение"
}

// startPlayback засчитывает прослушивание и запускает воспроизведение.
// Прослушивание засчитывается, даже если аудиофайла нет.
func (m *Model) startPlayback() tea.Cmd {
	key := m.details.Key
	artist, name := m.details.Artist, m.details.Name

	return func() tea.Msg {
		if err := m.manager.IncrementPlayCount(key); err != nil {
			return PlaybackErrorMsg{Error: err}
		}

		source, err := player.ResolveSource(m.musicDir, artist, name)
		if err != nil {
			return PlaybackErrorMsg{Error: err}
		}
		item := player.Item{Key: key, Name: name, Artist: artist, Source: source}
		if err := m.player.Play(item); err != nil {
			return PlaybackErrorMsg{Error: err}
		}
		return PlaybackStartedMsg{Source: source}
	}
}

// listenForProgress слушает обновления прогресса от плеера
func (m *Model) listenForProgress() tea.Cmd {
	return func() tea.Msg {
		select {
		case status, ok := <-m.player.Progress():
			if !ok {
				return PlaybackFinishedMsg{}
			}
			return ProgressMsg{Status: status}

		case <-m.player.Done():
			return PlaybackFinishedMsg{}
		}
	}
}
