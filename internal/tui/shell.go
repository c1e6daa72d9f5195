// Package tui is the terminal dashboard: a sidebar shell that shows one
// panel at a time.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/jask/legalhub/internal/clients"
	"github.com/jask/legalhub/internal/registry"
)

const brand = "Legal AI Hub"

// panel is one view of the shell. Mount and Unmount bracket the time it is
// on screen.
type panel interface {
	Mount(ctx context.Context) tea.Cmd
	Unmount()
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
	Resize(width, height int)
	Capturing() bool
	Help() []key.Binding
}

// Options configures a Shell.
type Options struct {
	Registry   clients.Registry
	Caller     registry.Caller
	Timeout    time.Duration
	StartView  View
	DateFormat string
	Location   *time.Location
	Logger     *zap.Logger
}

// Shell is the root tea.Model.
type Shell struct {
	ctx    context.Context
	caller registry.Caller
	logger *zap.Logger
	keys   shellKeys

	view    View
	mounted bool
	clients *clientsView
	static  map[View]*placeholderView

	width  int
	height int
}

// NewShell builds a shell whose panel lifetimes derive from ctx.
func NewShell(ctx context.Context, opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	state := clients.New(opts.Registry, opts.Caller, opts.Timeout, logger.Named("clients"))
	s := &Shell{
		ctx:     ctx,
		caller:  opts.Caller,
		logger:  logger,
		keys:    newShellKeys(),
		view:    opts.StartView,
		clients: newClientsView(state, opts.DateFormat, opts.Location),
		static:  map[View]*placeholderView{},
		width:   100,
		height:  30,
	}
	for _, v := range Views {
		if v != ViewClients {
			s.static[v] = newPlaceholderView(v)
		}
	}
	s.resize()
	return s
}

// Current returns the selected view.
func (s *Shell) Current() View { return s.view }

func (s *Shell) panelFor(v View) panel {
	switch v {
	case ViewClients:
		return s.clients
	case ViewDashboard, ViewContracts, ViewCases:
		return s.static[v]
	default:
		return s.static[ViewDashboard]
	}
}

func (s *Shell) Init() tea.Cmd {
	s.mounted = true
	return s.panelFor(s.view).Mount(s.ctx)
}

// SetView unmounts the current panel and mounts v.
func (s *Shell) SetView(v View) tea.Cmd {
	if s.mounted {
		if v == s.view {
			return nil
		}
		s.panelFor(s.view).Unmount()
	}
	s.logger.Debug("switch view", zap.String("from", s.view.ID()), zap.String("to", v.ID()))
	s.view = v
	s.mounted = true
	return s.panelFor(v).Mount(s.ctx)
}

func (s *Shell) step(delta int) tea.Cmd {
	n := len(Views)
	return s.SetView(Views[((int(s.view)+delta)%n+n)%n])
}

func (s *Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		s.resize()
		return s, nil
	case listDoneMsg, createDoneMsg:
		// results always go to the registry panel, which drops them if it
		// was unmounted meanwhile
		return s, s.clients.Update(msg)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return s, s.quit()
		}
		active := s.panelFor(s.view)
		if active.Capturing() {
			return s, active.Update(msg)
		}
		switch {
		case key.Matches(msg, s.keys.Quit):
			return s, s.quit()
		case key.Matches(msg, s.keys.Next):
			return s, s.step(1)
		case key.Matches(msg, s.keys.Prev):
			return s, s.step(-1)
		}
		for i, b := range s.keys.Jump {
			if key.Matches(msg, b) {
				return s, s.SetView(Views[i])
			}
		}
		return s, active.Update(msg)
	}
	return s, s.panelFor(s.view).Update(msg)
}

func (s *Shell) quit() tea.Cmd {
	if s.mounted {
		s.panelFor(s.view).Unmount()
		s.mounted = false
	}
	return tea.Quit
}

// layout returns the panel area and the sidebar for the current size.
func (s *Shell) layout() (width, height int, header, side, footer string) {
	total := max(s.width, 60)
	header = s.renderHeader(total)
	footer = s.renderFooter(total)
	bodyH := max(s.height, 12) - lipgloss.Height(header) - lipgloss.Height(footer)
	side = s.renderSidebar(bodyH)
	// content padding takes two columns and two rows
	width = total - lipgloss.Width(side) - 4
	height = bodyH - 2
	return width, height, header, side, footer
}

func (s *Shell) resize() {
	w, h, _, _, _ := s.layout()
	for _, v := range Views {
		s.panelFor(v).Resize(w, h)
	}
}

func (s *Shell) View() string {
	w, h, header, side, footer := s.layout()
	content := lipgloss.NewStyle().Padding(1, 1).Render(s.panelFor(s.view).View(w, h))
	body := lipgloss.JoinHorizontal(lipgloss.Top, side, content)
	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, footer))
}

func (s *Shell) renderHeader(width int) string {
	left := brandStyle.Render(brand)
	right := userStyle.Render("user " + s.caller.UserID)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	return headerBarStyle.Width(width).Render(" " + left + strings.Repeat(" ", max(gap, 1)) + right)
}

func (s *Shell) renderSidebar(height int) string {
	lines := make([]string, 0, len(Views))
	for i, v := range Views {
		label := string(rune('1'+i)) + " " + v.Title()
		if v == s.view {
			lines = append(lines, navActiveStyle.Render(label))
		} else {
			lines = append(lines, navInactiveStyle.Render(label))
		}
	}
	return sidebarStyle.Height(max(height-2, len(lines))).Render(strings.Join(lines, "\n"))
}

func (s *Shell) renderFooter(width int) string {
	bindings := s.panelFor(s.view).Help()
	if !s.panelFor(s.view).Capturing() {
		bindings = append(bindings, s.keys.Prev, s.keys.Next, s.keys.Quit)
	}
	line := renderHelp(bindings...)
	return ansi.Truncate(line, width, "")
}
