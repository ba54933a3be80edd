// Package editor содержит модель экрана добавления и редактирования трека для TUI
package editor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-jukebox/internal/library"
	"github.com/hazadus/go-jukebox/internal/track"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(15)
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Margin(1, 0)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Margin(1, 0)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
)

// GoBackMsg отправляется при отмене или после сохранения
type GoBackMsg struct {
	// Status - сообщение для строки состояния списка треков
	Status string
}

// fieldType определяет тип поля для редактирования
type fieldType int

const (
	nameField fieldType = iota
	artistField
	ratingField
	numFields
)

// Model представляет модель экрана редактирования трека.
// Пустой key означает добавление нового трека.
type Model struct {
	manager    *track.Manager
	key        string
	inputs     []textinput.Model
	focusIndex int
	// confirmDuplicate выставляется после предупреждения о дубликате;
	// повторное сохранение добавляет трек принудительно
	confirmDuplicate bool
	saved            bool
	err              string
	success          string
}

// NewAddModel создает редактор для нового трека
func NewAddModel(manager *track.Manager) *Model {
	return newModel(manager, "", "", "", 0)
}

// NewEditModel создает редактор существующего трека
func NewEditModel(manager *track.Manager, key string) (*Model, error) {
	name, ok := manager.Name(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", track.ErrTrackNotFound, key)
	}
	artist, _ := manager.Artist(key)
	return newModel(manager, key, name, artist, manager.Rating(key)), nil
}

func newModel(manager *track.Manager, key, name, artist string, rating int) *Model {
	inputs := make([]textinput.Model, numFields)

	inputs[nameField] = textinput.New()
	inputs[nameField].Placeholder = "Введите название трека"
	inputs[nameField].SetValue(name)
	inputs[nameField].Focus()
	inputs[nameField].PromptStyle = focusedStyle
	inputs[nameField].TextStyle = focusedStyle

	inputs[artistField] = textinput.New()
	inputs[artistField].Placeholder = "Введите исполнителя"
	inputs[artistField].SetValue(artist)

	inputs[ratingField] = textinput.New()
	inputs[ratingField].Placeholder = "Рейтинг от 0 до 5"
	inputs[ratingField].CharLimit = 1
	inputs[ratingField].SetValue(strconv.Itoa(rating))

	return &Model{
		manager: manager,
		key:     key,
		inputs:  inputs,
	}
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, func() tea.Msg {
				return GoBackMsg{}
			}

		case "ctrl+s":
			return m, m.saveTrack()

		case "tab", "shift+tab", "enter", "up", "down":
			s := msg.String()

			// Enter на кнопке сохранения
			if s == "enter" && m.focusIndex == len(m.inputs) {
				return m, m.saveTrack()
			}

			if s == "up" || s == "shift+tab" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}

			if m.focusIndex > len(m.inputs) {
				m.focusIndex = 0
			} else if m.focusIndex < 0 {
				m.focusIndex = len(m.inputs)
			}

			return m, m.updateFocus()
		}

	case tea.WindowSizeMsg:
		for i := range m.inputs {
			m.inputs[i].Width = msg.Width - 20
		}
		return m, nil
	}

	// Любое редактирование снимает подтверждение дубликата
	if _, ok := msg.(tea.KeyMsg); ok {
		m.confirmDuplicate = false
	}

	if m.focusIndex < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) updateFocus() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		if i == m.focusIndex {
			cmds[i] = m.inputs[i].Focus()
			m.inputs[i].PromptStyle = focusedStyle
			m.inputs[i].TextStyle = focusedStyle
		} else {
			m.inputs[i].Blur()
			m.inputs[i].PromptStyle = blurredStyle
			m.inputs[i].TextStyle = blurredStyle
		}
	}
	return tea.Batch(cmds...)
}

// saveTrack проверяет поля и сохраняет трек. При успехе возвращает команду
// возврата к списку после небольшой задержки.
func (m *Model) saveTrack() tea.Cmd {
	if m.saved {
		return nil
	}

	name := strings.TrimSpace(m.inputs[nameField].Value())
	artist := strings.TrimSpace(m.inputs[artistField].Value())

	rating, err := strconv.Atoi(strings.TrimSpace(m.inputs[ratingField].Value()))
	if err != nil || rating != library.ClampRating(rating) {
		m.setError("Рейтинг должен быть числом от 0 до 5")
		return nil
	}

	var status string
	if m.key == "" {
		key, err := m.manager.AddTrack(name, artist, rating, m.confirmDuplicate)
		switch {
		case errors.Is(err, track.ErrDuplicateTrack):
			m.confirmDuplicate = true
			m.setError(fmt.Sprintf("Трек уже есть в каталоге под ключом %s. Ctrl+S еще раз, чтобы добавить копию", key))
			return nil
		case err != nil:
			m.setError(fmt.Sprintf("Ошибка добавления трека: %v", err))
			return nil
		}
		status = fmt.Sprintf("Трек добавлен под ключом %s", key)
	} else {
		if err := m.manager.UpdateTrack(m.key, name, artist, rating); err != nil {
			m.setError(fmt.Sprintf("Ошибка обновления трека: %v", err))
			return nil
		}
		status = fmt.Sprintf("Трек %s сохранен", m.key)
	}

	m.saved = true
	m.err = ""
	m.success = status

	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return GoBackMsg{Status: status}
	})
}

func (m *Model) setError(text string) {
	m.err = text
	m.success = ""
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder

	title := "Новый трек"
	if m.key != "" {
		title = fmt.Sprintf("Редактирование трека %s", m.key)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	labels := []string{"Название:", "Исполнитель:", "Рейтинг:"}
	for i, input := range m.inputs {
		b.WriteString(labelStyle.Render(labels[i]))
		b.WriteString(" ")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	saveButton := "[ Сохранить ]"
	if m.focusIndex == len(m.inputs) {
		saveButton = focusedStyle.Render(saveButton)
	} else {
		saveButton = blurredStyle.Render(saveButton)
	}
	b.WriteString(saveButton)
	b.WriteString("\n\n")

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}
	if m.success != "" {
		b.WriteString(successStyle.Render(m.success))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("Tab/Enter: следующее поле • Shift+Tab: предыдущее поле"))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("Ctrl+S: сохранить • Esc: отмена"))

	return b.String()
}
