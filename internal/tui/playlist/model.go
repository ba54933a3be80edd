// Package playlist содержит модель экрана плейлиста для TUI
package playlist

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-jukebox/internal/track"
	"github.com/hazadus/go-jukebox/internal/utils"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	excludedStyle     = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("240"))
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	statusStyle       = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("214"))
)

// GoBackMsg отправляется для возврата к списку треков
type GoBackMsg struct{}

// entryItem реализует интерфейс list.Item для элемента плейлиста
type entryItem struct {
	row track.PlaylistRow
}

func (i entryItem) FilterValue() string { return i.row.Name }

type entryDelegate struct{}

func (d entryDelegate) Height() int                             { return 1 }
func (d entryDelegate) Spacing() int                            { return 0 }
func (d entryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d entryDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(entryItem)
	if !ok {
		return
	}

	mark := "[ ]"
	if i.row.Included {
		mark = "[x]"
	}
	str := fmt.Sprintf("%s %-4s %-40s %-25s %d",
		mark,
		i.row.Key,
		utils.TruncateString(i.row.Name, 40),
		utils.TruncateString(i.row.Artist, 25),
		i.row.PlayCount)

	switch {
	case index == m.Index():
		str = selectedItemStyle.Render("> " + str)
	case !i.row.Included:
		str = excludedStyle.Render(str)
	default:
		str = itemStyle.Render(str)
	}
	fmt.Fprint(w, str)
}

// Model представляет модель экрана плейлиста
type Model struct {
	list    list.Model
	manager *track.Manager
	name    string
	status  string
}

// NewModel создает модель экрана для плейлиста name.
// Несуществующий плейлист показывается пустым и создается при первом добавлении.
func NewModel(manager *track.Manager, name string) (*Model, error) {
	l := list.New(nil, entryDelegate{}, 0, 0)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle

	m := &Model{list: l, manager: manager, name: name}
	if err := m.reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Name возвращает имя открытого плейлиста
func (m *Model) Name() string {
	return m.name
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) reload() error {
	rows, err := m.manager.OpenPlaylist(m.name)
	if err != nil {
		return err
	}

	items := make([]list.Item, len(rows))
	for i, row := range rows {
		items[i] = entryItem{row: row}
	}
	index := m.list.Index()
	m.list.SetItems(items)
	if n := len(items); index >= n && n > 0 {
		index = n - 1
	}
	m.list.Select(index)
	m.list.Title = fmt.Sprintf("Плейлист %s (%d)", m.name, len(rows))
	return nil
}

func (m *Model) selectedKey() (string, bool) {
	item, ok := m.list.SelectedItem().(entryItem)
	if !ok {
		return "", false
	}
	return item.row.Key, true
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, func() tea.Msg { return GoBackMsg{} }

		case " ":
			if key, ok := m.selectedKey(); ok {
				included, err := m.manager.TogglePlaylistEntry(m.name, key)
				if err != nil {
					m.status = fmt.Sprintf("Ошибка: %v", err)
				} else if included {
					m.status = fmt.Sprintf("Трек %s включен", key)
				} else {
					m.status = fmt.Sprintf("Трек %s выключен", key)
				}
				m.refresh()
			}
			return m, nil

		case "x":
			if key, ok := m.selectedKey(); ok {
				if err := m.manager.RemoveFromPlaylist(m.name, key); err != nil {
					m.status = fmt.Sprintf("Ошибка: %v", err)
				} else {
					m.status = fmt.Sprintf("Трек %s удален из плейлиста", key)
				}
				m.refresh()
			}
			return m, nil

		case "p":
			played, err := m.manager.PlayPlaylist(m.name)
			if err != nil {
				m.status = fmt.Sprintf("Ошибка: %v", err)
			} else {
				m.status = fmt.Sprintf("Воспроизведено треков: %d", len(played))
			}
			m.refresh()
			return m, nil

		case "r":
			// Перечитываем каталог и плейлист с диска
			if err := m.manager.Load(); err != nil {
				m.status = fmt.Sprintf("Ошибка загрузки каталога: %v", err)
				return m, nil
			}
			m.status = "Данные перечитаны"
			m.refresh()
			return m, nil

		case "tab":
			m.nextPlaylist()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) refresh() {
	if err := m.reload(); err != nil {
		m.status = fmt.Sprintf("Ошибка чтения плейлиста: %v", err)
	}
}

// nextPlaylist переключается на следующий по алфавиту плейлист
func (m *Model) nextPlaylist() {
	names, err := m.manager.Playlists()
	if err != nil {
		m.status = fmt.Sprintf("Ошибка: %v", err)
		return
	}
	if len(names) == 0 {
		return
	}

	next := names[0]
	if i := slices.Index(names, m.name); i >= 0 {
		next = names[(i+1)%len(names)]
	}
	m.name = next
	m.status = ""
	m.list.Select(0)
	m.refresh()
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.list.View())
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(
		"Пробел: вкл/выкл • x: убрать • p: воспроизвести • r: перечитать • Tab: следующий плейлист • q/esc: назад"))
	return b.String()
}
