package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type shellKeys struct {
	Quit key.Binding
	Next key.Binding
	Prev key.Binding
	Jump []key.Binding
}

func newShellKeys() shellKeys {
	k := shellKeys{
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Next: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next panel")),
		Prev: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev panel")),
	}
	for i := range Views {
		d := string(rune('1' + i))
		k.Jump = append(k.Jump, key.NewBinding(key.WithKeys(d), key.WithHelp(d, Views[i].ID())))
	}
	return k
}

type clientKeys struct {
	Add     key.Binding
	Refresh key.Binding
	Find    key.Binding
	Submit  key.Binding
	NextFld key.Binding
	PrevFld key.Binding
	Back    key.Binding
}

func newClientKeys() clientKeys {
	return clientKeys{
		Add:     key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add client")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Find:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		NextFld: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevFld: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

// renderHelp renders bindings as "key desc" pairs on one line.
func renderHelp(bindings ...key.Binding) string {
	space := helpDescStyle.Render(" ")
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" && h.Desc == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(h.Key)+space+helpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, helpDescStyle.Render("  "))
}
