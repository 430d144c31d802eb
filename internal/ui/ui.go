package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/crate/internal/genres"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/search"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	GenreSelectView ViewState = iota
	SearchingView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	orchestrator *search.Orchestrator
	cache        *genres.Cache
	minFollowers int
	limit        int
	width        int
	height       int
	genreList    list.Model
	selected     map[string]bool
	resultList   list.Model
	result       *models.SearchResult
	err          error
	help         help.Model
	keys         keyMap
}

type genresFetchedMsg struct {
	labels []string
	err    error
}

type searchCompleteMsg struct {
	result *models.SearchResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies. The
// follower floor and result limit come from the command line flags.
func NewModel(ctx context.Context, orchestrator *search.Orchestrator, cache *genres.Cache, minFollowers, limit int) *Model {
	return &Model{
		ctx:          ctx,
		view:         GenreSelectView,
		orchestrator: orchestrator,
		cache:        cache,
		minFollowers: minFollowers,
		limit:        limit,
		selected:     map[string]bool{},
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Result returns the completed search result, or nil when the user quit early.
func (m *Model) Result() *models.SearchResult {
	return m.result
}

// Err returns the terminal error, if any.
func (m *Model) Err() error {
	return m.err
}

// Init initializes the TUI by fetching the available genres.
func (m *Model) Init() tea.Cmd {
	return m.fetchGenres()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.genreList.Width() == 0 {
			m.genreList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.resultList.Width() == 0 {
			m.resultList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case GenreSelectView:
			return m.handleGenreSelectKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case genresFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.labels))
		for i, label := range msg.labels {
			items[i] = genreItem{label: label}
		}
		delegate := list.NewDefaultDelegate()
		delegate.ShowDescription = false
		m.genreList = list.New(items, delegate, 0, 0)
		m.genreList.Title = "Select Genres"
		m.genreList.SetSize(m.width-4, m.height-8)
		return m, nil

	case searchCompleteMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = GenreSelectView
			return m, nil
		}
		m.result = msg.result
		items := make([]list.Item, len(msg.result.Playlists))
		for i, pl := range msg.result.Playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.resultList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.resultList.Title = fmt.Sprintf("Found %d Playlists", msg.result.TotalFound)
		m.resultList.SetSize(m.width-4, m.height-8)
		m.view = ResultView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != GenreSelectView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case GenreSelectView:
		return m.renderGenreSelect()
	case SearchingView:
		return m.renderSearching()
	case ResultView:
		return m.renderResults()
	default:
		return ""
	}
}

func (m *Model) handleGenreSelectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		return m.toggleSelected()
	case "enter":
		if m.selectedGenres() == nil {
			return m, nil
		}
		if len(m.selectedGenres()) > models.MaxGenres {
			m.err = fmt.Errorf("select at most %d genres", models.MaxGenres)
			return m, nil
		}
		m.err = nil
		m.view = SearchingView
		return m, m.runSearch()
	}

	var cmd tea.Cmd
	m.genreList, cmd = m.genreList.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "enter":
		return m, tea.Quit
	case "esc":
		m.view = GenreSelectView
		m.result = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) toggleSelected() (tea.Model, tea.Cmd) {
	item := m.genreList.SelectedItem()
	gi, ok := item.(genreItem)
	if !ok {
		return m, nil
	}

	gi.selected = !gi.selected
	m.selected[gi.label] = gi.selected
	cmd := m.genreList.SetItem(m.genreList.Index(), gi)
	return m, cmd
}

func (m *Model) selectedGenres() []string {
	var labels []string
	for _, item := range m.genreList.Items() {
		if gi, ok := item.(genreItem); ok && m.selected[gi.label] {
			labels = append(labels, gi.label)
		}
	}
	return labels
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case GenreSelectView:
		m.genreList, cmd = m.genreList.Update(msg)
	case ResultView:
		m.resultList, cmd = m.resultList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchGenres() tea.Cmd {
	return func() tea.Msg {
		labels, err := m.cache.Available(m.ctx)
		return genresFetchedMsg{labels: labels, err: err}
	}
}

func (m *Model) runSearch() tea.Cmd {
	criteria := models.NewSearchCriteria(m.selectedGenres(), m.minFollowers, m.limit)

	return func() tea.Msg {
		result, err := m.orchestrator.Search(m.ctx, criteria)
		return searchCompleteMsg{result: result, err: err}
	}
}

func (m *Model) renderGenreSelect() string {
	helpKeys := []key.Binding{m.keys.toggle, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	header := ""
	if count := len(m.selectedGenres()); count > 0 {
		header = styles.ok.Render(fmt.Sprintf("%d selected", count)) + "\n"
	}
	if m.err != nil {
		header = styles.warn.Render(m.err.Error()) + "\n"
	}

	return fmt.Sprintf("%s%s\n\n%s", header, m.genreList.View(), helpView)
}

func (m *Model) renderSearching() string {
	title := styles.title.Render("Searching Playlists")
	return fmt.Sprintf("%s\n\nSearching %d genres...", title, len(m.selectedGenres()))
}

func (m *Model) renderResults() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.resultList.View(), helpView)
}
