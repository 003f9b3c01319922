// Package tui is the reference host for the feed engine: a terminal
// dashboard that renders the visible feed slice, drives the pull
// gesture from mouse drags, and acts as the navigation host for
// dispatched content clicks.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/impactlink/pulse/internal/anim"
	"github.com/impactlink/pulse/internal/dispatch"
	"github.com/impactlink/pulse/internal/feed"
	"github.com/impactlink/pulse/internal/gesture"
	"github.com/impactlink/pulse/internal/orchestrator"
	"github.com/impactlink/pulse/internal/sampler"
	"github.com/impactlink/pulse/pkg/models"
)

type View int

const (
	ViewFeed View = iota
	ViewDetail
	ViewScreen
	ViewHelp
)

type Model struct {
	orch   *orchestrator.Orchestrator
	gest   *gesture.Controller
	view   View
	list   list.Model
	search textinput.Model

	width     int
	height    int
	err       error
	statusMsg string
	searching bool

	detail string
	action *models.NavigationAction

	// counters animate interest counts up from zero when a card first
	// appears; cleared on refresh so the new snapshot animates too.
	counters map[string]*anim.Counter
}

type refreshDoneMsg struct {
	refreshed bool
	err       error
}

type pageLoadedMsg struct {
	err error
}

type tickMsg time.Time

type statusMsg string

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	pullStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	screenTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86")).
				MarginBottom(1)

	liveBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("160")).
			Padding(0, 1)

	pinnedBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("231")).
				Background(lipgloss.Color("26")).
				Padding(0, 1)

	urgentBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("231")).
				Background(lipgloss.Color("202")).
				Padding(0, 1)

	ownBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("28")).
			Padding(0, 1)
)

func New(orch *orchestrator.Orchestrator, gest *gesture.Controller) Model {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Pulse - Community Feed"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle

	search := textinput.New()
	search.Placeholder = "Search stories, projects, opportunities..."
	search.CharLimit = 80

	return Model{
		orch:     orch,
		gest:     gest,
		view:     ViewFeed,
		list:     l,
		search:   search,
		counters: make(map[string]*anim.Counter),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refreshCmd(),
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-5)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case refreshDoneMsg:
		m.err = msg.err
		if msg.err == nil && msg.refreshed {
			m.statusMsg = "Feed refreshed!"
			m.counters = make(map[string]*anim.Counter)
		}
		m.reloadCards()
		return m, nil

	case pageLoadedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, feed.ErrNoMorePages) {
				m.statusMsg = "No more stories"
			} else {
				m.err = msg.err
			}
		}
		m.reloadCards()
		return m, nil

	case tickMsg:
		// Sampler bumps and expiring flags only show if cards rebuild.
		m.reloadCards()
		return m, tickCmd()

	case statusMsg:
		m.statusMsg = string(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}
	switch m.view {
	case ViewFeed:
		return m.handleFeedKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewScreen:
		return m.handleScreenKeys(msg)
	case ViewHelp:
		return m.handleHelpKeys(msg)
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.orch.SetQuery("")
		m.reloadCards()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	// Live filtering, keystroke by keystroke.
	m.orch.SetQuery(m.search.Value())
	m.reloadCards()
	return m, cmd
}

func (m Model) handleFeedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.orch.Close()
		return m, tea.Quit

	case "enter":
		if card, ok := m.list.SelectedItem().(feedCard); ok {
			action := dispatch.Resolve(card.item, m.orch.Session().CurrentUserID())
			m.action = &action
			m.view = ViewScreen
			return m, nil
		}

	case "v":
		if card, ok := m.list.SelectedItem().(feedCard); ok {
			m.detail = renderDetail(card)
			m.view = ViewDetail
			return m, nil
		}

	case "l", " ":
		if card, ok := m.list.SelectedItem().(feedCard); ok {
			liked, likes := m.orch.Store().ToggleLike(card.item.ID, card.item.BaseLikes)
			if liked {
				m.statusMsg = fmt.Sprintf("Liked (%d)", likes)
			} else {
				m.statusMsg = "Like removed"
			}
			m.reloadCards()
			return m, nil
		}

	case "c":
		if card, ok := m.list.SelectedItem().(feedCard); ok {
			count := m.orch.Store().RecordComment(card.item.ID, card.comments+1)
			m.statusMsg = fmt.Sprintf("Comment added (%d)", count)
			m.reloadCards()
			return m, nil
		}

	case "m":
		before := m.orch.DisplayedCount()
		after := m.orch.LoadMore()
		m.reloadCards()
		if after == before {
			// Local set exhausted; follow the cursor for more.
			return m, m.loadPageCmd()
		}
		return m, nil

	case "r":
		return m, tea.Batch(
			m.refreshCmd(),
			func() tea.Msg { return statusMsg("Refreshing feed...") },
		)

	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case "?":
		m.view = ViewHelp
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.orch.Close()
		return m, tea.Quit
	case "esc", "backspace":
		m.view = ViewFeed
		return m, nil
	case "?":
		m.view = ViewHelp
		return m, nil
	}
	return m, nil
}

func (m Model) handleScreenKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.orch.Close()
		return m, tea.Quit
	case "esc", "backspace", "enter":
		m.action = nil
		m.view = ViewFeed
		return m, nil
	}
	return m, nil
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "?", "q":
		m.view = ViewFeed
		return m, nil
	}
	return m, nil
}

// handleMouse feeds drag events into the gesture controller. The list
// only pulls when scrolled to its top, matching the touch behavior.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.view != ViewFeed {
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.gest.DragStart(m.scrollOffset(), float64(msg.Y))
		}
	case tea.MouseActionMotion:
		if _, consumed := m.gest.DragMove(float64(msg.Y)); consumed {
			// The gesture owns the viewport; don't let the list scroll.
			return m, nil
		}
	case tea.MouseActionRelease:
		if m.gest.Phase() == gesture.PhasePulling {
			if m.gest.Armed() {
				return m, tea.Batch(
					m.releaseCmd(),
					func() tea.Msg { return statusMsg("Refreshing feed...") },
				)
			}
			return m, m.releaseCmd()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// scrollOffset approximates the viewport origin: zero when the first
// filtered item is selected on the first page.
func (m Model) scrollOffset() float64 {
	if m.list.Paginator.Page == 0 && m.list.Index() == 0 {
		return 0
	}
	return 1
}

func (m Model) View() string {
	switch m.view {
	case ViewFeed:
		return m.renderFeed()
	case ViewDetail:
		return m.renderDetailView()
	case ViewScreen:
		return m.renderScreen()
	case ViewHelp:
		return m.renderHelp()
	}
	return ""
}

func (m Model) renderFeed() string {
	var s strings.Builder

	switch {
	case m.orch.Refreshing() || m.gest.Phase() == gesture.PhaseRefreshing:
		s.WriteString(pullStyle.Render("⟳ Refreshing..."))
		s.WriteString("\n")
	case m.gest.Armed():
		s.WriteString(pullStyle.Render("↑ Release to refresh"))
		s.WriteString("\n")
	case m.gest.Phase() == gesture.PhasePulling && m.gest.Distance() > 0:
		s.WriteString(pullStyle.Render("↓ Pull to refresh"))
		s.WriteString("\n")
	}

	if m.searching || m.search.Value() != "" {
		s.WriteString(m.search.View())
		s.WriteString("\n")
	}

	s.WriteString(m.list.View())
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Refresh failed: %v — press r to retry", m.err)))
	} else if m.statusMsg != "" {
		s.WriteString(statusStyle.Render(m.statusMsg))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("enter: open • v: read • l: like • c: comment • m: more • r: refresh • /: search • ?: help • q: quit"))

	return s.String()
}

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(m.detail)
	s.WriteString("\n\n")

	if m.statusMsg != "" {
		s.WriteString(statusStyle.Render(m.statusMsg))
		s.WriteString("\n")
	}

	s.WriteString(helpStyle.Render("esc: back • ?: help • q: quit"))

	return s.String()
}

// renderScreen is the navigation host's "transition": the resolved
// target is shown instead of handed to an application router.
func (m Model) renderScreen() string {
	if m.action == nil {
		return ""
	}

	var s strings.Builder
	s.WriteString(screenTitleStyle.Render(fmt.Sprintf("→ %s", m.action.Screen)))
	s.WriteString("\n")

	if len(m.action.Params) > 0 {
		keys := make([]string, 0, len(m.action.Params))
		for k := range m.action.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			s.WriteString(fmt.Sprintf("  %s: %v\n", k, m.action.Params[k]))
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to feed • q: quit"))
	return s.String()
}

func (m Model) renderHelp() string {
	help := `
Pulse - Keyboard Shortcuts

Feed:
  ↑/↓, j/k     Navigate stories
  enter        Open story (resolves its screen)
  v            Read full story
  l, space     Like / unlike
  c            Add a comment
  m            Show more stories
  r            Refresh feed
  /            Search (esc clears)
  q, ctrl+c    Quit

Mouse:
  drag down    Pull to refresh (from the top of the feed)

General:
  ?            Show/hide this help
`
	return help + "\n" + helpStyle.Render("Press ? or esc to close help")
}

// reloadCards rebuilds the list from the orchestrator's visible slice.
func (m *Model) reloadCards() {
	store := m.orch.Store()
	viewerID := m.orch.Session().CurrentUserID()
	now := time.Now()

	visible := m.orch.VisiblePage()
	items := make([]list.Item, len(visible))
	for i, item := range visible {
		card := newFeedCard(item, store, viewerID, now)
		if card.interest > 0 {
			counter, ok := m.counters[item.ID]
			if !ok {
				counter = anim.NewCounter(card.interest, anim.DefaultCountDuration, anim.EaseOutQuart)
				m.counters[item.ID] = counter
			}
			if !counter.Done() {
				card.interest = counter.Value()
			}
		}
		items[i] = card
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Pulse - Community Feed (%d of %d)", m.orch.DisplayedCount(), m.orch.TotalFiltered())
}

func (m Model) refreshCmd() tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		err := orch.Refresh(context.Background())
		return refreshDoneMsg{refreshed: err == nil, err: err}
	}
}

// releaseCmd finishes a drag through the gesture controller, which runs
// the bound refresh when the threshold was exceeded.
func (m Model) releaseCmd() tea.Cmd {
	gest := m.gest
	return func() tea.Msg {
		refreshed, err := gest.Release(context.Background())
		return refreshDoneMsg{refreshed: refreshed, err: err}
	}
}

func (m Model) loadPageCmd() tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		err := orch.LoadPage(context.Background())
		if err != nil {
			return pageLoadedMsg{err: err}
		}
		orch.LoadMore()
		return pageLoadedMsg{}
	}
}

func tickCmd() tea.Cmd {
	// Fast enough for the counter animation to read as a count-up.
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// renderDetail formats a story for the reading view.
func renderDetail(card feedCard) string {
	var md strings.Builder
	md.WriteString(fmt.Sprintf("# %s\n\n", card.item.Title))
	md.WriteString(fmt.Sprintf("*%s • %s • %s*\n\n", card.item.AuthorName, card.item.Category, card.item.TimestampDisplay))
	md.WriteString(card.item.Description)
	md.WriteString(fmt.Sprintf("\n\n---\n\n%d likes • %d comments", card.likes, card.comments))
	if card.interest > 0 {
		md.WriteString(fmt.Sprintf(" • %d interested (%s)", card.interest, sampler.HeatOf(card.interest)))
	}
	md.WriteString("\n")

	rendered, err := glamour.Render(md.String(), "dark")
	if err != nil {
		return md.String()
	}
	return rendered
}
