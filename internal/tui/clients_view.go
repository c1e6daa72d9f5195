package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/legalhub/internal/clients"
	"github.com/jask/legalhub/internal/registry"
)

type listDoneMsg struct{ res clients.ListResult }

type createDoneMsg struct{ res clients.CreateResult }

type clientsMode int

const (
	modeBrowse clientsMode = iota
	modeForm
	modeFind
)

type formField struct {
	key         string
	label       string
	placeholder string
}

var formFields = []formField{
	{key: "full_name", label: "Full name", placeholder: "as on the engagement letter"},
	{key: "email", label: "Email", placeholder: "name@example.com"},
	{key: "phone", label: "Phone", placeholder: "+1 555 0100"},
}

const emptyListText = "No clients yet. Press 'a' to add one."

// clientsView renders the client registry panel and turns key presses into
// panel operations.
type clientsView struct {
	state *clients.Panel
	keys  clientKeys

	mode   clientsMode
	inputs []textinput.Model
	focus  int
	find   textinput.Model
	table  table.Model
	spin   spinner.Model

	hint       string
	dateFormat string
	loc        *time.Location

	width  int
	height int
}

func newClientsView(state *clients.Panel, dateFormat string, loc *time.Location) *clientsView {
	if dateFormat == "" {
		dateFormat = "2006-01-02"
	}
	if loc == nil {
		loc = time.Local
	}
	inputs := make([]textinput.Model, 0, len(formFields))
	for _, f := range formFields {
		in := textinput.New()
		in.Prompt = fmt.Sprintf("%-10s ", f.label+":")
		in.Placeholder = f.placeholder
		in.CharLimit = 200
		inputs = append(inputs, in)
	}
	find := textinput.New()
	find.Prompt = "/ "
	find.Placeholder = "name, email or phone"

	t := table.New(table.WithColumns(clientColumns(80)), table.WithFocused(true), table.WithHeight(10))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderForeground(colorBorder)
	styles.Selected = styles.Selected.Foreground(colorAccent).Bold(true)
	t.SetStyles(styles)

	spin := spinner.New(spinner.WithSpinner(spinner.Line), spinner.WithStyle(lipgloss.NewStyle().Foreground(colorAccent)))

	v := &clientsView{
		state:      state,
		keys:       newClientKeys(),
		inputs:     inputs,
		find:       find,
		table:      t,
		spin:       spin,
		dateFormat: dateFormat,
		loc:        loc,
	}
	v.Resize(80, 24)
	return v
}

// formLines is the height of everything above the table: title, banner,
// form, hint, find line and the row count below it.
const formLines = 16

// Resize fits the form and the table to the panel area.
func (v *clientsView) Resize(width, height int) {
	v.width = max(width, 40)
	v.height = height
	for i := range v.inputs {
		v.inputs[i].Width = min(v.width-14, 48)
	}
	v.table.SetColumns(clientColumns(v.width))
	v.table.SetWidth(v.width)
	v.fitTable()
}

func (v *clientsView) fitTable() {
	// the header row takes two lines
	rows := len(v.table.Rows())
	v.table.SetHeight(max(min(rows+2, v.height-formLines), 3))
}

func clientColumns(width int) []table.Column {
	dateW := 12
	phoneW := 16
	rest := width - dateW - phoneW - 8
	if rest < 20 {
		rest = 20
	}
	nameW := rest / 2
	return []table.Column{
		{Title: "Name", Width: nameW},
		{Title: "Email", Width: rest - nameW},
		{Title: "Phone", Width: phoneW},
		{Title: "Added", Width: dateW},
	}
}

func (v *clientsView) Mount(ctx context.Context) tea.Cmd {
	v.state.Mount(ctx)
	v.mode = modeBrowse
	v.hint = ""
	v.find.Reset()
	v.find.Blur()
	v.syncInputs()
	v.refreshRows()
	return v.list()
}

func (v *clientsView) Unmount() {
	v.state.Unmount()
	v.blurForm()
}

// Capturing reports whether typed keys belong to a text input.
func (v *clientsView) Capturing() bool { return v.mode != modeBrowse }

func (v *clientsView) list() tea.Cmd {
	t, err := v.state.BeginList()
	if err != nil {
		v.reject(err)
		return nil
	}
	state := v.state
	return tea.Batch(v.spin.Tick, func() tea.Msg {
		return listDoneMsg{res: state.RunList(t)}
	})
}

func (v *clientsView) submit() tea.Cmd {
	t, err := v.state.BeginCreate()
	if err != nil {
		v.reject(err)
		return nil
	}
	v.hint = ""
	state := v.state
	return tea.Batch(v.spin.Tick, func() tea.Msg {
		return createDoneMsg{res: state.RunCreate(t)}
	})
}

func (v *clientsView) reject(err error) {
	var incomplete *clients.IncompleteDraftError
	switch {
	case errors.As(err, &incomplete):
		v.hint = "Fill in " + strings.Join(fieldLabels(incomplete.Fields), ", ") + " before saving."
	case errors.Is(err, clients.ErrBusy):
		v.hint = "Still working on the previous request."
	default:
		v.hint = err.Error()
	}
}

func fieldLabels(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		for _, f := range formFields {
			if f.key == k {
				out = append(out, strings.ToLower(f.label))
			}
		}
	}
	return out
}

func (v *clientsView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case listDoneMsg:
		if v.state.ApplyList(msg.res) {
			v.refreshRows()
		}
		return nil
	case createDoneMsg:
		if v.state.ApplyCreate(msg.res) && msg.res.Err == nil {
			v.syncInputs()
			v.refreshRows()
		}
		return nil
	case spinner.TickMsg:
		if !v.state.Loading() {
			return nil
		}
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return cmd
	case tea.KeyMsg:
		switch v.mode {
		case modeForm:
			return v.updateForm(msg)
		case modeFind:
			return v.updateFind(msg)
		case modeBrowse:
			return v.updateBrowse(msg)
		}
	}
	return nil
}

func (v *clientsView) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Add):
		v.mode = modeForm
		v.focusField(v.focus)
		return textinput.Blink
	case key.Matches(msg, v.keys.Refresh):
		return v.list()
	case key.Matches(msg, v.keys.Find):
		v.mode = modeFind
		v.find.Focus()
		return textinput.Blink
	}
	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return cmd
}

func (v *clientsView) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.blurForm()
		v.mode = modeBrowse
		return nil
	case key.Matches(msg, v.keys.NextFld):
		v.focusField(v.focus + 1)
		return nil
	case key.Matches(msg, v.keys.PrevFld):
		v.focusField(v.focus - 1)
		return nil
	case key.Matches(msg, v.keys.Submit):
		return v.submit()
	}
	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	_ = v.state.SetField(formFields[v.focus].key, v.inputs[v.focus].Value())
	return cmd
}

func (v *clientsView) updateFind(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.find.Reset()
		v.find.Blur()
		v.mode = modeBrowse
		v.refreshRows()
		return nil
	case key.Matches(msg, v.keys.Submit):
		v.find.Blur()
		v.mode = modeBrowse
		return nil
	}
	var cmd tea.Cmd
	v.find, cmd = v.find.Update(msg)
	v.refreshRows()
	return cmd
}

func (v *clientsView) focusField(i int) {
	n := len(v.inputs)
	v.inputs[v.focus].Blur()
	v.focus = (i%n + n) % n
	v.inputs[v.focus].Focus()
}

func (v *clientsView) blurForm() {
	for i := range v.inputs {
		v.inputs[i].Blur()
	}
}

// syncInputs copies the panel draft into the form.
func (v *clientsView) syncInputs() {
	d := v.state.Draft()
	values := []string{d.FullName, d.Email, d.Phone}
	for i := range v.inputs {
		v.inputs[i].SetValue(values[i])
	}
}

func (v *clientsView) visible() []registry.ClientRecord {
	return clients.Filter(v.state.Records(), v.find.Value())
}

func (v *clientsView) refreshRows() {
	records := v.visible()
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{r.FullName, r.Email, r.Phone, v.formatDate(r.CreatedAt)})
	}
	v.table.SetRows(rows)
	if v.table.Cursor() >= len(rows) {
		v.table.SetCursor(max(len(rows)-1, 0))
	}
	v.fitTable()
}

func (v *clientsView) formatDate(ts registry.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(v.loc).Format(v.dateFormat)
}

func (v *clientsView) Help() []key.Binding {
	switch v.mode {
	case modeForm:
		return []key.Binding{v.keys.Submit, v.keys.NextFld, v.keys.PrevFld, v.keys.Back}
	case modeFind:
		return []key.Binding{v.keys.Submit, v.keys.Back}
	default:
		return []key.Binding{v.keys.Add, v.keys.Refresh, v.keys.Find}
	}
}

func (v *clientsView) View(width, height int) string {
	width = max(width, 40)
	lines := []string{titleStyle.Render("Clients"), ""}

	if msg := v.state.Err(); msg != "" {
		lines = append(lines, errorBannerStyle.Width(width-2).Render(msg), "")
	}

	lines = append(lines, v.renderForm()...)
	lines = append(lines, "")

	if v.mode == modeFind || v.find.Value() != "" {
		lines = append(lines, v.find.View())
	}

	empty := v.state.Len() == 0
	switch {
	case empty && v.state.Loading():
		lines = append(lines, v.spin.View()+" Loading clients…")
	case empty && v.state.Err() != "":
		// the banner says why there is nothing to show
	case empty:
		lines = append(lines, mutedStyle.Render(emptyListText))
	default:
		lines = append(lines, v.table.View())
		count := fmt.Sprintf("%d of %d clients", len(v.table.Rows()), v.state.Len())
		if v.state.InFlight(clients.OpList) {
			count += "  " + v.spin.View() + " refreshing"
		}
		lines = append(lines, mutedStyle.Render(count))
	}
	return strings.Join(lines, "\n")
}

func (v *clientsView) renderForm() []string {
	lines := []string{mutedStyle.Render("New client")}
	for _, in := range v.inputs {
		lines = append(lines, in.View())
	}
	label := "[ Add client ]"
	if v.state.InFlight(clients.OpCreate) {
		label = "[ " + v.spin.View() + " Saving… ]"
	}
	if v.mode == modeForm {
		lines = append(lines, successStyle.Render(label))
	} else {
		lines = append(lines, mutedStyle.Render(label))
	}
	if v.hint != "" {
		lines = append(lines, hintStyle.Render(v.hint))
	}
	return lines
}
