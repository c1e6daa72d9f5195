package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/jask/legalhub/internal/registry"
)

type fakeRegistry struct {
	records   []registry.ClientRecord
	listErr   error
	createErr error
	nextID    int

	listCalls   int
	createCalls int
}

func (f *fakeRegistry) List(ctx context.Context, caller registry.Caller) ([]registry.ClientRecord, error) {
	f.listCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]registry.ClientRecord(nil), f.records...), nil
}

func (f *fakeRegistry) Create(ctx context.Context, caller registry.Caller, d registry.Draft) (registry.ClientRecord, error) {
	f.createCalls++
	if err := ctx.Err(); err != nil {
		return registry.ClientRecord{}, err
	}
	if f.createErr != nil {
		return registry.ClientRecord{}, f.createErr
	}
	f.nextID++
	r := record(string(rune('a'+f.nextID)), d.FullName)
	r.Email, r.Phone = d.Email, d.Phone
	f.records = append(f.records, r)
	return r, nil
}

func record(id, name string) registry.ClientRecord {
	ts, _ := registry.ParseTimestamp("2024-01-01T00:00:00Z")
	return registry.ClientRecord{ID: registry.RecordID(id), FullName: name, Email: id + "@x.com", Phone: "555", CreatedAt: ts}
}

func newTestShell(api *fakeRegistry) *Shell {
	return NewShell(context.Background(), Options{
		Registry:   api,
		Caller:     registry.Caller{UserID: "lawyer-A-42"},
		Timeout:    time.Second,
		StartView:  ViewClients,
		DateFormat: "2006-01-02",
		Location:   time.UTC,
	})
}

// collect runs cmd and any batched commands, returning their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// drain feeds request results back into the model until none remain.
// Timer-driven messages (spinner, cursor blink) are dropped.
func drain(m tea.Model, cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case listDoneMsg, createDoneMsg:
			_, next := m.Update(msg)
			drain(m, next)
		}
	}
}

func press(m tea.Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := m.Update(msg)
		drain(m, cmd)
	}
}

func typeText(m tea.Model, text string) {
	for _, r := range text {
		press(m, string(r))
	}
}

func screen(s *Shell) string { return ansi.Strip(s.View()) }

func TestShellRendersListInServerOrder(t *testing.T) {
	api := &fakeRegistry{records: []registry.ClientRecord{record("c3", "Zed Zulu"), record("c1", "Amy Adams"), record("c2", "Bob Brown")}}
	s := newTestShell(api)
	drain(s, s.Init())

	out := screen(s)
	require.Contains(t, out, brand)
	require.Contains(t, out, "user lawyer-A-42")
	zed, amy, bob := strings.Index(out, "Zed Zulu"), strings.Index(out, "Amy Adams"), strings.Index(out, "Bob Brown")
	require.True(t, zed > 0 && zed < amy && amy < bob, out)
	require.Contains(t, out, "2024-01-01")
	require.Contains(t, out, "3 of 3 clients")
	require.Equal(t, 1, api.listCalls)
}

func TestEmptyListShowsPlaceholder(t *testing.T) {
	s := newTestShell(&fakeRegistry{})
	drain(s, s.Init())

	out := screen(s)
	require.Contains(t, out, "No clients yet")
	require.NotContains(t, out, "Added")
}

func TestRefreshRendersIdentically(t *testing.T) {
	api := &fakeRegistry{records: []registry.ClientRecord{record("c1", "Amy Adams"), record("c2", "Bob Brown")}}
	s := newTestShell(api)
	drain(s, s.Init())
	before := screen(s)

	press(s, "r")
	require.Equal(t, 2, api.listCalls)
	require.Equal(t, before, screen(s))
}

func TestAddClientFromForm(t *testing.T) {
	api := &fakeRegistry{records: []registry.ClientRecord{record("c1", "Amy Adams")}}
	s := newTestShell(api)
	drain(s, s.Init())

	press(s, "a")
	typeText(s, "Jane Doe")
	press(s, "tab")
	typeText(s, "jane@x.com")
	press(s, "tab")
	typeText(s, "555-0100")
	press(s, "enter")

	require.Equal(t, 1, api.createCalls)
	got := s.clients.state.Records()
	require.Len(t, got, 2)
	require.Equal(t, "Amy Adams", got[0].FullName)
	require.Equal(t, "Jane Doe", got[1].FullName)
	require.Equal(t, "jane@x.com", got[1].Email)
	require.Equal(t, registry.Draft{}, s.clients.state.Draft())
	for _, in := range s.clients.inputs {
		require.Empty(t, in.Value())
	}
	require.Contains(t, screen(s), "Jane Doe")
}

func TestCreateFailureShowsDetailAndKeepsDraft(t *testing.T) {
	api := &fakeRegistry{
		records:   []registry.ClientRecord{record("c1", "Amy Adams")},
		createErr: &registry.CreateFailure{StatusCode: 400, Detail: "email already exists"},
	}
	s := newTestShell(api)
	drain(s, s.Init())

	press(s, "a")
	typeText(s, "Jane Doe")
	press(s, "tab")
	typeText(s, "amy@x.com")
	press(s, "tab")
	typeText(s, "555")
	press(s, "enter")

	require.Equal(t, "email already exists", s.clients.state.Err())
	require.Contains(t, screen(s), "email already exists")
	require.Equal(t, registry.Draft{FullName: "Jane Doe", Email: "amy@x.com", Phone: "555"}, s.clients.state.Draft())
	require.Equal(t, 1, s.clients.state.Len())
}

func TestIncompleteFormIsNotSubmitted(t *testing.T) {
	api := &fakeRegistry{}
	s := newTestShell(api)
	drain(s, s.Init())

	press(s, "a")
	typeText(s, "Jane")
	press(s, "enter")

	require.Zero(t, api.createCalls)
	require.Contains(t, screen(s), "Fill in email, phone before saving.")
}

func TestFormCapturesNavigationKeys(t *testing.T) {
	s := newTestShell(&fakeRegistry{})
	drain(s, s.Init())

	press(s, "a")
	typeText(s, "q3")
	require.Equal(t, ViewClients, s.Current())
	require.Equal(t, "q3", s.clients.state.Draft().FullName)

	press(s, "esc", "3")
	require.Equal(t, ViewContracts, s.Current())
}

func TestSwitchingViewUnmountsClients(t *testing.T) {
	s := newTestShell(&fakeRegistry{records: []registry.ClientRecord{record("c1", "Amy Adams")}})
	drain(s, s.Init())
	require.True(t, s.clients.state.Mounted())

	press(s, "3")
	require.Equal(t, ViewContracts, s.Current())
	require.False(t, s.clients.state.Mounted())
	require.Contains(t, screen(s), "Contract analysis coming soon.")

	press(s, "]")
	require.Equal(t, ViewCases, s.Current())
	press(s, "]")
	require.Equal(t, ViewDashboard, s.Current())
	press(s, "[")
	require.Equal(t, ViewCases, s.Current())
}

func TestLateResultAfterNavigationIsDiscarded(t *testing.T) {
	api := &fakeRegistry{records: []registry.ClientRecord{record("c1", "Amy Adams")}}
	s := newTestShell(api)
	pending := s.Init()

	press(s, "1")
	require.Equal(t, ViewDashboard, s.Current())
	drain(s, pending)
	require.Zero(t, s.clients.state.Len())
	require.Empty(t, s.clients.state.Err())

	press(s, "2")
	require.Equal(t, 1, s.clients.state.Len())
	require.Equal(t, 2, api.listCalls)
}

func TestQuickFindFiltersRows(t *testing.T) {
	s := newTestShell(&fakeRegistry{records: []registry.ClientRecord{record("c1", "Jane Doe"), record("c2", "John Smith")}})
	drain(s, s.Init())

	press(s, "/")
	typeText(s, "jane")
	out := screen(s)
	require.Contains(t, out, "Jane Doe")
	require.NotContains(t, out, "John Smith")
	require.Contains(t, out, "1 of 2 clients")

	press(s, "esc")
	require.Contains(t, screen(s), "John Smith")
	require.Equal(t, 2, s.clients.state.Len())
}

func TestQuitUnmounts(t *testing.T) {
	s := newTestShell(&fakeRegistry{})
	drain(s, s.Init())

	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	require.True(t, ok)
	require.False(t, s.clients.state.Mounted())
}

func TestFailedListShowsBannerWithoutPlaceholder(t *testing.T) {
	s := newTestShell(&fakeRegistry{listErr: &registry.FetchFailure{StatusCode: 500}})
	drain(s, s.Init())

	out := screen(s)
	require.Contains(t, out, "failed to fetch client list")
	require.NotContains(t, out, "No clients yet")
}

func TestLongErrorIsWrappedNotClipped(t *testing.T) {
	detail := "email already exists for another client in this firm, please check the existing record before retrying the registration"
	api := &fakeRegistry{createErr: &registry.CreateFailure{StatusCode: 400, Detail: detail}}
	s := newTestShell(api)
	drain(s, s.Init())

	press(s, "a")
	typeText(s, "Jane")
	press(s, "tab")
	typeText(s, "j@x.com")
	press(s, "tab")
	typeText(s, "1")
	press(s, "enter")

	require.Equal(t, detail, s.clients.state.Err())
	out := screen(s)
	require.NotContains(t, out, "…")
	for _, word := range strings.Fields(detail) {
		require.Contains(t, out, word)
	}
}

func TestSubmitWhileListingIsRejected(t *testing.T) {
	api := &fakeRegistry{records: []registry.ClientRecord{record("c1", "Amy Adams")}}
	s := newTestShell(api)
	pending := s.Init()

	press(s, "a")
	typeText(s, "Jane Doe")
	press(s, "tab")
	typeText(s, "jane@x.com")
	press(s, "tab")
	typeText(s, "555")
	press(s, "enter")
	require.Zero(t, api.createCalls)
	require.Contains(t, screen(s), "Still working on the previous request.")

	drain(s, pending)
	press(s, "enter")
	require.Equal(t, 1, api.createCalls)
	got := s.clients.state.Records()
	require.Len(t, got, 2)
	require.Equal(t, "Jane Doe", got[1].FullName)
}

func TestViewIsStableAndResizeFollowsWindow(t *testing.T) {
	s := newTestShell(&fakeRegistry{records: []registry.ClientRecord{record("c1", "Amy Adams")}})
	drain(s, s.Init())

	first := s.View()
	require.Equal(t, first, s.View())

	before := s.clients.table.Width()
	s.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	require.Greater(t, s.clients.table.Width(), before)
	require.Contains(t, screen(s), "Amy Adams")
}
