package tui

import (
	"fmt"
	"strings"
)

// View is a selectable panel of the shell.
type View int

const (
	ViewDashboard View = iota
	ViewClients
	ViewContracts
	ViewCases
)

// Views lists every panel in sidebar order.
var Views = []View{ViewDashboard, ViewClients, ViewContracts, ViewCases}

// ID is the stable identifier used in configuration.
func (v View) ID() string {
	switch v {
	case ViewDashboard:
		return "dashboard"
	case ViewClients:
		return "clients"
	case ViewContracts:
		return "contracts"
	case ViewCases:
		return "cases"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// Title is the sidebar label.
func (v View) Title() string {
	switch v {
	case ViewDashboard:
		return "Home"
	case ViewClients:
		return "Clients"
	case ViewContracts:
		return "Contracts & Analysis"
	case ViewCases:
		return "Cases"
	default:
		return v.ID()
	}
}

// ParseView maps a configured identifier to a View.
func ParseView(id string) (View, error) {
	for _, v := range Views {
		if v.ID() == strings.ToLower(strings.TrimSpace(id)) {
			return v, nil
		}
	}
	return ViewClients, fmt.Errorf("unknown view %q", id)
}
