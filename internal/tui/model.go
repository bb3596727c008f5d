package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"balance_chart/internal/app/port"
	"balance_chart/internal/app/service"
	"balance_chart/internal/domain/entity"
)

// Controller splits a fetch into Begin and Run so the model can issue tickets from Update,
// in selection order, and run the outbound call as a tea.Cmd.
type Controller interface {
	port.BalanceController
	Begin(sel entity.Selection) service.Ticket
	Run(ctx context.Context, t service.Ticket) error
}

type focusArea int

const (
	focusNetwork focusArea = iota
	focusAddress
)

// FetchDone is delivered when a fetch started by the model has returned.
type FetchDone struct {
	Selection entity.Selection
	Err       error
}

// Model is the terminal balance chart widget.
type Model struct {
	ctx        context.Context
	controller Controller

	networks   []string
	networkIdx int
	address    string

	input   textinput.Model
	spinner spinner.Model
	focus   focusArea
	cursor  int
	status  string

	width  int
	height int
	quit   bool
}

// NewModel creates the widget showing initial. Fetches run under ctx.
func NewModel(ctx context.Context, controller Controller, networks []string, initial entity.Selection) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	in := textinput.New()
	in.Placeholder = "0x..."
	in.Prompt = "Address: "
	in.CharLimit = 128
	in.Width = 48
	in.SetValue(initial.Address)

	idx := 0
	for i, n := range networks {
		if n == initial.Network {
			idx = i
			break
		}
	}

	return Model{
		ctx:        ctx,
		controller: controller,
		networks:   networks,
		networkIdx: idx,
		address:    initial.Address,
		input:      in,
		spinner:    sp,
		width:      80,
		height:     24,
	}
}

// Selection returns the selection currently shown.
func (m Model) Selection() entity.Selection {
	return entity.Selection{Network: m.networks[m.networkIdx], Address: m.address}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.fetch(m.Selection()),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		next, cmd := m.handleKeyMsg(msg)
		if next.quit {
			return next, tea.Quit
		}
		return next, cmd

	case tea.WindowSizeMsg:
		m = m.handleWindowSizeMsg(msg)

	case FetchDone:
		m = m.handleFetchDone(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quit = true
		return m, nil
	case "tab", "shift+tab":
		return m.toggleFocus()
	case "up":
		m = m.moveCursor(-1)
		return m, nil
	case "down":
		m = m.moveCursor(1)
		return m, nil
	}

	if m.focus == focusAddress {
		return m.handleAddressKey(msg)
	}

	switch msg.String() {
	case "q", "esc":
		m.quit = true
		return m, nil
	case "left", "h", "[":
		return m.selectNetwork(m.networkIdx - 1)
	case "right", "l", "]":
		return m.selectNetwork(m.networkIdx + 1)
	case "k":
		m = m.moveCursor(-1)
	case "j":
		m = m.moveCursor(1)
	}
	return m, nil
}

func (m Model) handleAddressKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if m.input.Value() == m.address {
			return m, nil
		}
		m.address = m.input.Value()
		return m.changed()
	case tea.KeyEsc:
		m.input.SetValue(m.address)
		return m.toggleFocus()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) toggleFocus() (Model, tea.Cmd) {
	if m.focus == focusNetwork {
		m.focus = focusAddress
		return m, m.input.Focus()
	}
	m.focus = focusNetwork
	m.input.Blur()
	return m, nil
}

func (m Model) selectNetwork(idx int) (Model, tea.Cmd) {
	n := len(m.networks)
	m.networkIdx = ((idx % n) + n) % n
	return m.changed()
}

// changed starts the fetch for the new selection. The previous one keeps running but can no longer commit.
func (m Model) changed() (Model, tea.Cmd) {
	m.cursor = 0
	m.status = ""
	return m, m.fetch(m.Selection())
}

func (m Model) fetch(sel entity.Selection) tea.Cmd {
	ticket := m.controller.Begin(sel)
	ctx := m.ctx
	controller := m.controller
	return func() tea.Msg {
		return FetchDone{Selection: sel, Err: controller.Run(ctx, ticket)}
	}
}

func (m Model) handleFetchDone(msg FetchDone) Model {
	switch {
	case msg.Err == nil, errors.Is(msg.Err, service.ErrStaleFetch):
	case msg.Selection == m.Selection():
		m.status = "Last fetch failed: " + msg.Err.Error()
	}
	if segments := len(m.currentView().Segments); m.cursor >= segments {
		m.cursor = max(segments-1, 0)
	}
	return m
}

func (m Model) moveCursor(delta int) Model {
	segments := len(m.currentView().Segments)
	if segments == 0 {
		m.cursor = 0
		return m
	}
	m.cursor = min(max(m.cursor+delta, 0), segments-1)
	return m
}

func (m Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	return m
}

func (m Model) currentView() entity.View {
	return m.controller.View(m.Selection())
}
