// Package tracklist содержит модель экрана списка треков для TUI
package tracklist

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-jukebox/internal/library"
	"github.com/hazadus/go-jukebox/internal/playlist"
	"github.com/hazadus/go-jukebox/internal/track"
	"github.com/hazadus/go-jukebox/internal/utils"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	statusStyle       = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("214"))
	quitTextStyle     = lipgloss.NewStyle().Margin(1, 0, 2, 4)
)

// TrackSelectedMsg отправляется при выборе трека для просмотра и воспроизведения
type TrackSelectedMsg struct {
	Key string
}

// TrackEditMsg отправляется при выборе трека для редактирования
type TrackEditMsg struct {
	Key string
}

// TrackAddMsg отправляется для добавления нового трека
type TrackAddMsg struct{}

// PlaylistOpenMsg отправляется для перехода к плейлисту
type PlaylistOpenMsg struct {
	Name string
}

// trackItem реализует интерфейс list.Item для строки каталога
type trackItem struct {
	row   library.Row
	field library.Field
}

// FilterValue возвращает поле, по которому идет поиск
func (i trackItem) FilterValue() string {
	if i.field == library.FieldArtist {
		return i.row.Artist
	}
	return i.row.Name
}

// trackItemDelegate реализует отображение элементов списка
type trackItemDelegate struct{}

func (d trackItemDelegate) Height() int                             { return 1 }
func (d trackItemDelegate) Spacing() int                            { return 0 }
func (d trackItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d trackItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(trackItem)
	if !ok {
		return
	}

	// Ключ | Название | Исполнитель | Рейтинг | Прослушивания
	str := fmt.Sprintf("%-4s %-40s %-25s %-5s %d",
		i.row.Key,
		utils.TruncateString(i.row.Name, 40),
		utils.TruncateString(i.row.Artist, 25),
		strings.Repeat("*", i.row.Rating),
		i.row.PlayCount)

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// substringFilter ищет подстроку без учета регистра, сохраняя исходный порядок
func substringFilter(term string, targets []string) []list.Rank {
	var ranks []list.Rank
	for i, target := range targets {
		if matched, ok := library.MatchFold(target, term); ok {
			ranks = append(ranks, list.Rank{Index: i, MatchedIndexes: matched})
		}
	}
	return ranks
}

// Model представляет модель экрана списка треков
type Model struct {
	list            list.Model
	manager         *track.Manager
	field           library.Field
	defaultPlaylist string
	pendingDelete   string
	status          string
	quitting        bool
}

// NewModel создает новую модель списка треков
func NewModel(manager *track.Manager, defaultPlaylist string) *Model {
	l := list.New(nil, trackItemDelegate{}, 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowTitle(true)
	l.SetFilteringEnabled(true)
	l.Filter = substringFilter
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	m := &Model{
		list:            l,
		manager:         manager,
		field:           library.FieldName,
		defaultPlaylist: defaultPlaylist,
	}
	m.RefreshData()
	return m
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// RefreshData перечитывает строки каталога без пересоздания списка
func (m *Model) RefreshData() {
	rows := m.manager.LoadAll()

	items := make([]list.Item, len(rows))
	for i, row := range rows {
		items[i] = trackItem{row: row, field: m.field}
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Треки (поиск по полю: %s)", m.field)
}

// SetStatus показывает сообщение в строке состояния
func (m *Model) SetStatus(status string) {
	m.status = status
}

func (m *Model) selectedKey() (string, bool) {
	item, ok := m.list.SelectedItem().(trackItem)
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
		m.list.SetHeight(msg.Height - 4) // Оставляем место для справки и строки состояния
		return m, nil

	case tea.KeyMsg:
		// Во время ввода фильтра клавиши принадлежат списку
		if m.list.FilterState() == list.Filtering {
			break
		}

		key := msg.String()
		if key != "d" {
			m.pendingDelete = ""
		}

		switch key {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "tab":
			if m.field == library.FieldName {
				m.field = library.FieldArtist
			} else {
				m.field = library.FieldName
			}
			m.list.ResetFilter()
			m.RefreshData()
			return m, nil

		case "enter":
			if key, ok := m.selectedKey(); ok {
				return m, func() tea.Msg { return TrackSelectedMsg{Key: key} }
			}

		case "e":
			if key, ok := m.selectedKey(); ok {
				return m, func() tea.Msg { return TrackEditMsg{Key: key} }
			}

		case "a":
			return m, func() tea.Msg { return TrackAddMsg{} }

		case "l":
			name := m.defaultPlaylist
			return m, func() tea.Msg { return PlaylistOpenMsg{Name: name} }

		case "+", "=", "-":
			if key, ok := m.selectedKey(); ok {
				delta := 1
				if msg.String() == "-" {
					delta = -1
				}
				m.changeRating(key, delta)
			}
			return m, nil

		case "i":
			if key, ok := m.selectedKey(); ok {
				m.addToPlaylist(key)
			}
			return m, nil

		case "d":
			if key, ok := m.selectedKey(); ok {
				m.deleteTrack(key)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) changeRating(key string, delta int) {
	rating := library.ClampRating(m.manager.Rating(key) + delta)
	if err := m.manager.SetRating(key, rating); err != nil {
		m.status = fmt.Sprintf("Ошибка изменения рейтинга: %v", err)
		return
	}
	m.status = fmt.Sprintf("Рейтинг трека %s: %d", key, rating)
	m.refreshKeepingSelection()
}

func (m *Model) addToPlaylist(key string) {
	_, err := m.manager.AddToPlaylist(m.defaultPlaylist, key)
	switch {
	case errors.Is(err, playlist.ErrDuplicate):
		m.status = fmt.Sprintf("Трек %s уже есть в плейлисте %s", key, m.defaultPlaylist)
	case err != nil:
		m.status = fmt.Sprintf("Ошибка добавления в плейлист: %v", err)
	default:
		m.status = fmt.Sprintf("Трек %s добавлен в плейлист %s", key, m.defaultPlaylist)
	}
}

// deleteTrack удаляет трек со второго нажатия
func (m *Model) deleteTrack(key string) {
	if m.pendingDelete != key {
		m.pendingDelete = key
		m.status = fmt.Sprintf("Нажмите d еще раз, чтобы удалить трек %s", key)
		return
	}

	m.pendingDelete = ""
	if _, err := m.manager.DeleteTracks(key); err != nil {
		m.status = fmt.Sprintf("Ошибка удаления: %v", err)
	} else {
		m.status = fmt.Sprintf("Трек %s удален", key)
	}
	m.refreshKeepingSelection()
}

func (m *Model) refreshKeepingSelection() {
	index := m.list.Index()
	m.RefreshData()
	if n := len(m.list.Items()); index >= n && n > 0 {
		index = n - 1
	}
	m.list.Select(index)
}

// View отображает модель
func (m *Model) View() string {
	if m.quitting {
		return quitTextStyle.Render("До свидания!")
	}

	view := m.list.View()
	if m.status != "" {
		view += "\n" + statusStyle.Render(m.status)
	}
	extraHelp := helpStyle.Render(
		"Enter: подробнее • e: редактировать • a: добавить • d: удалить • +/-: рейтинг\n" +
			"i: в плейлист • l: плейлист • Tab: поле поиска • q: выход")
	return view + "\n" + extraHelp
}
