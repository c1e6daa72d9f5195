package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// placeholderView is a static panel for features that are not built yet.
type placeholderView struct {
	title string
	body  []string
}

func newPlaceholderView(v View) *placeholderView {
	switch v {
	case ViewDashboard:
		return &placeholderView{title: "Welcome to Legal AI Hub", body: []string{
			"Select a section from the sidebar to get started.",
			"Press 2 to manage clients.",
		}}
	case ViewContracts:
		return &placeholderView{title: "Contracts & Analysis", body: []string{"Contract analysis coming soon."}}
	case ViewCases:
		return &placeholderView{title: "Cases", body: []string{"Case management coming soon."}}
	case ViewClients:
		return &placeholderView{title: "Clients"}
	default:
		return &placeholderView{title: v.Title()}
	}
}

func (p *placeholderView) Mount(context.Context) tea.Cmd { return nil }
func (p *placeholderView) Unmount()                      {}
func (p *placeholderView) Resize(int, int)               {}
func (p *placeholderView) Capturing() bool               { return false }
func (p *placeholderView) Update(tea.Msg) tea.Cmd        { return nil }
func (p *placeholderView) Help() []key.Binding           { return nil }

func (p *placeholderView) View(width, height int) string {
	lines := []string{titleStyle.Render(p.title), ""}
	for _, b := range p.body {
		lines = append(lines, mutedStyle.Render(b))
	}
	return strings.Join(lines, "\n")
}
