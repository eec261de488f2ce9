package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/shutter/internal/gallery"
	"github.com/mmcdole/shutter/internal/service"
	"github.com/mmcdole/shutter/internal/tui/components"
	"github.com/mmcdole/shutter/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateSearching
	StateHelp
)

// Vertical layout: single footer line
const ChromeHeight = 1

// thumbnailQueue is the part of the thumbnail downloader the view needs
type thumbnailQueue interface {
	QueueThumbnail(target int, url string)
	ClearPending()
}

// Model is the main Bubble Tea model for the application
type Model struct {
	State ApplicationState
	Ready bool

	ctx context.Context

	// Services
	GallerySvc *gallery.Service
	PollingSvc *service.PollingService
	BrowseSvc  *service.BrowseService
	Thumbs     thumbnailQueue

	// UI Components
	Grid        *components.PhotoGrid
	SearchInput components.InputModal
	Spinner     spinner.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	Query       string
	StatusMsg   string
	StatusIsErr bool
	Loading     bool
	PollingOn   bool
}

// NewModel creates a new application model. grid must be the grid whose
// SetThumbnail receives the downloader's results.
func NewModel(
	ctx context.Context,
	gallerySvc *gallery.Service,
	pollingSvc *service.PollingService,
	browseSvc *service.BrowseService,
	thumbs thumbnailQueue,
	grid *components.PhotoGrid,
) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	grid.SetFocused(true)

	return Model{
		State:       StateBrowsing,
		ctx:         ctx,
		GallerySvc:  gallerySvc,
		PollingSvc:  pollingSvc,
		BrowseSvc:   browseSvc,
		Thumbs:      thumbs,
		Grid:        grid,
		SearchInput: components.NewInputModal(),
		Spinner:     sp,
		Query:       gallerySvc.StoredQuery(),
		Loading:     true,
		PollingOn:   pollingSvc.Enabled(),
	}
}

// Init loads the list for the stored query
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		WaitPhotosCmd(m.GallerySvc.Refresh(m.ctx)),
		m.Spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.Grid.SetSize(msg.Width, msg.Height-ChromeHeight)
		m.syncThumbnails()
		return m, nil

	case postedMsg:
		msg.fn()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case PhotosLoadedMsg:
		m.Loading = false
		m.Query = msg.Query
		if m.Thumbs != nil {
			m.Thumbs.ClearPending()
		}
		m.Grid.SetItems(msg.Items)
		m.Grid.SetBreadcrumb(m.breadcrumb())
		m.syncThumbnails()
		return m, nil

	case PollingToggledMsg:
		m.PollingOn = msg.Enabled
		state := "off"
		if msg.Enabled {
			state = "on"
		}
		m.StatusMsg = "Polling " + state
		m.StatusIsErr = false
		return m, ClearStatusCmd(3 * time.Second)

	case PageOpenedMsg:
		m.StatusMsg = "Opened: " + msg.Item.DisplayTitle()
		m.StatusIsErr = false
		return m, ClearStatusCmd(3 * time.Second)

	case ErrMsg:
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		m.Loading = false
		return m, ClearStatusCmd(5 * time.Second)

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.State == StateSearching {
		var cmd tea.Cmd
		var submitted bool
		m.SearchInput, cmd, submitted = m.SearchInput.Update(msg)
		if submitted {
			m.SearchInput.Hide()
			m.State = StateBrowsing
			return m, m.search(m.SearchInput.Value())
		}
		if !m.SearchInput.IsVisible() {
			m.State = StateBrowsing
		}
		return m, cmd
	}

	if m.State == StateHelp {
		m.State = StateBrowsing
		return m, nil
	}

	// Typing into the local filter takes every key
	if m.Grid.IsFilterTyping() {
		cmd := m.Grid.Update(msg)
		m.syncThumbnails()
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Search):
		m.State = StateSearching
		return m, m.SearchInput.Show("Search photos", m.Query)

	case key.Matches(msg, Keys.ClearQuery):
		m.Loading = true
		m.Query = ""
		return m, WaitPhotosCmd(m.GallerySvc.Clear(m.ctx))

	case key.Matches(msg, Keys.Refresh):
		m.Loading = true
		return m, WaitPhotosCmd(m.GallerySvc.Refresh(m.ctx))

	case key.Matches(msg, Keys.Filter):
		cmd := m.Grid.ToggleFilter()
		m.syncThumbnails()
		return m, cmd

	case key.Matches(msg, Keys.TogglePolling):
		return m, TogglePollingCmd(m.PollingSvc)

	case key.Matches(msg, Keys.Open):
		if item, ok := m.Grid.SelectedItem(); ok {
			return m, OpenPageCmd(m.BrowseSvc, item)
		}
		return m, nil
	}

	cmd := m.Grid.Update(msg)
	m.syncThumbnails()
	return m, cmd
}

// search submits a remote query; the previous fetch is canceled by the service
func (m *Model) search(query string) tea.Cmd {
	m.Loading = true
	m.Query = strings.TrimSpace(query)
	return WaitPhotosCmd(m.GallerySvc.Search(m.ctx, query))
}

// syncThumbnails requests images for rows that now show a different photo
func (m *Model) syncThumbnails() {
	if m.Thumbs == nil {
		return
	}
	for _, slot := range m.Grid.Reassign() {
		m.Thumbs.QueueThumbnail(slot.Index, slot.Item.URL)
	}
}

func (m Model) breadcrumb() string {
	if m.Query == "" {
		return "Interesting"
	}
	return "Search: " + m.Query
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	body := m.Grid.View()
	if m.State == StateSearching {
		body = lipgloss.Place(m.Width, m.Height-ChromeHeight,
			lipgloss.Center, lipgloss.Center, m.SearchInput.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

func (m Model) renderFooter() string {
	var left string
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.SuccessStyle.Render(m.StatusMsg)
	case m.Loading:
		left = m.Spinner.View() + styles.DimStyle.Render(" Loading photos...")
	default:
		left = styles.DimStyle.Render(fmt.Sprintf("%d photos", len(m.Grid.Items())))
	}

	polling := styles.DimStyle.Render("polling off")
	if m.PollingOn {
		polling = styles.AccentStyle.Render("polling on")
	}
	right := polling + styles.DimStyle.Render("  ? help")

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, binding := range Keys.HelpBindings() {
		h := binding.Help()
		b.WriteString(styles.HelpKeyStyle.Render(fmt.Sprintf("%-6s", h.Key)))
		b.WriteString(" ")
		b.WriteString(styles.HelpDescStyle.Render(h.Desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("press any key to return"))
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, b.String())
}
