// Package application is the terminal front end of the nutrition admin.
// It drives the same core.Session as the web UI: table intents apply
// synchronously and gateway calls run as tea.Cmds.
package application

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/nutrition/internal/admin"
	"github.com/JonMunkholm/nutrition/internal/core"
	"github.com/JonMunkholm/nutrition/internal/schema"
	"github.com/JonMunkholm/nutrition/internal/table"
)

type mode int

const (
	modeTable mode = iota
	modeForm
	modeMenu
)

// Completion messages of the session commands.
type (
	loadedMsg  struct{ err error }
	savedMsg   struct{ err error }
	deletedMsg struct {
		result core.DeleteResult
		err    error
	}
)

// maxNotices bounds the notice history shown under the table.
const maxNotices = 3

// Model is the bubbletea model of the terminal UI.
type Model struct {
	ctx   context.Context
	sess  *core.Session
	store *admin.Store

	keys keyMap
	help help.Model
	mode mode

	cursor int // Row index on the current page

	inputs []textinput.Model
	focus  int

	root       *Menu
	menu       *Menu
	menuCursor int

	notices []core.Notice
	status  string
	pending int
	width   int
}

// New builds the model for sess. store may be nil, which disables the
// store admin menu.
func New(ctx context.Context, sess *core.Session, store *admin.Store) Model {
	m := Model{
		ctx:   ctx,
		sess:  sess,
		store: store,
		keys:  defaultKeyMap(),
		help:  help.New(),
	}
	m.inputs = newInputs()
	m.root = buildMenuTree(&m)
	m.menu = m.root
	return m
}

// formFields are the form inputs in display order.
var formFields = []struct {
	name  string
	label string
}{
	{"id", "ID"},
	{"name", "Name"},
	{"calories", "Calories"},
	{"fat", "Fat"},
	{"carbs", "Carbs"},
	{"protein", "Protein"},
}

func newInputs() []textinput.Model {
	inputs := make([]textinput.Model, len(formFields))
	for i, f := range formFields {
		in := textinput.New()
		in.Placeholder = f.label
		in.Prompt = ""
		in.CharLimit = 100
		inputs[i] = in
	}
	return inputs
}

// Init loads the table.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return nil

	case loadedMsg:
		m.finish()
		return nil

	case savedMsg:
		m.finish()
		if msg.err == nil && m.mode == modeForm {
			m.mode = modeTable
			m.blurInputs()
		}
		return nil

	case deletedMsg:
		m.finish()
		return nil

	case admin.InfoMsg:
		m.done()
		m.status = string(msg)
		return nil

	case admin.DoneMsg:
		m.done()
		m.status = string(msg)
		return m.load()

	case admin.ErrMsg:
		m.done()
		m.status = core.MapError(msg.Err).String()
		return nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeMenu:
			return m.updateMenu(msg)
		default:
			return m.updateTable(msg)
		}
	}
	return nil
}

// finish records a completed session command.
func (m *Model) finish() {
	m.done()
	m.collectNotices()
	m.clampCursor()
}

func (m *Model) updateTable(msg tea.KeyMsg) tea.Cmd {
	tbl := m.sess.Table()
	k := m.keys

	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit
	case key.Matches(msg, k.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, k.Down):
		if m.cursor < len(tbl.View().Rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, k.PrevPage):
		tbl.PrevPage()
		m.clampCursor()
	case key.Matches(msg, k.NextPage):
		tbl.NextPage()
		m.clampCursor()
	case key.Matches(msg, k.Toggle):
		m.toggleCursor()
	case key.Matches(msg, k.SelectAll):
		tbl.SelectAll(tbl.View().SelectAll != table.Checked)
	case key.Matches(msg, k.Sort):
		idx := int(msg.String()[0] - '1')
		if cols := schema.Columns(); idx >= 0 && idx < len(cols) {
			m.requestSort(cols[idx].Key)
		}
	case key.Matches(msg, k.PageSize):
		m.cyclePageSize()
	case key.Matches(msg, k.Form):
		return m.openForm()
	case key.Matches(msg, k.Delete):
		return m.deleteSelected()
	case key.Matches(msg, k.Refresh):
		return m.load()
	case key.Matches(msg, k.Menu):
		m.mode = modeMenu
		m.menu = m.root
		m.menuCursor = 0
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	k := m.keys

	switch {
	case key.Matches(msg, k.Back):
		m.sess.CancelForm()
		m.blurInputs()
		m.mode = modeTable
		return nil
	case key.Matches(msg, k.Submit):
		return m.save()
	case key.Matches(msg, k.NextField):
		m.focusInput((m.focus + 1) % len(m.inputs))
		return nil
	case key.Matches(msg, k.PrevField):
		m.focusInput((m.focus - 1 + len(m.inputs)) % len(m.inputs))
		return nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	items := m.menu.Items

	switch {
	case key.Matches(msg, k.Quit), key.Matches(msg, k.Menu):
		m.mode = modeTable
	case key.Matches(msg, k.Back):
		if m.menu.Parent == nil {
			m.mode = modeTable
			return nil
		}
		m.menu = m.menu.Parent
		m.menuCursor = 0
	case key.Matches(msg, k.Up):
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case key.Matches(msg, k.Down):
		if m.menuCursor < len(items)-1 {
			m.menuCursor++
		}
	case key.Matches(msg, k.Submit):
		item := items[m.menuCursor]
		if item.Submenu != nil {
			m.menu = item.Submenu
			m.menuCursor = 0
			return nil
		}
		if item.Action == nil {
			if item.Label == "Back" {
				m.mode = modeTable
			}
			return nil
		}
		m.mode = modeTable
		m.menu = m.root
		m.menuCursor = 0
		return item.Action(m)
	}
	return nil
}

/* ----------------------------------------
	ACTIONS
---------------------------------------- */

// done settles one pending command. Init runs on a copy of the model, so
// the first load may settle without having been counted.
func (m *Model) done() {
	if m.pending > 0 {
		m.pending--
	}
}

// run counts cmd as pending.
func (m *Model) run(cmd tea.Cmd) tea.Cmd {
	m.pending++
	return cmd
}

func (m *Model) load() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return m.run(func() tea.Msg {
		return loadedMsg{err: sess.Load(ctx)}
	})
}

func (m *Model) save() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	draft := m.draft()
	return m.run(func() tea.Msg {
		_, err := sess.Save(ctx, draft)
		return savedMsg{err: err}
	})
}

func (m *Model) deleteSelected() tea.Cmd {
	if len(m.sess.Table().SelectedIDs()) == 0 {
		m.status = "Nothing selected"
		return nil
	}
	sess, ctx := m.sess, m.ctx
	return m.run(func() tea.Msg {
		result, err := sess.DeleteSelected(ctx)
		return deletedMsg{result: result, err: err}
	})
}

func (m *Model) openForm() tea.Cmd {
	form := m.sess.OpenForm()
	values := draftValues(form.Draft)
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
	}
	m.mode = modeForm
	m.focusInput(0)
	return textinput.Blink
}

func (m *Model) requestSort(column schema.ColumnKey) {
	if err := m.sess.Table().RequestSort(column); err != nil {
		m.sess.NotifyError(err)
		m.collectNotices()
	}
}

func (m *Model) setPageSize(size int) {
	if err := m.sess.Table().SetPageSize(size); err != nil {
		m.sess.NotifyError(err)
		m.collectNotices()
	}
	m.clampCursor()
}

// cyclePageSize moves to the next allowed page size, wrapping around.
func (m *Model) cyclePageSize() {
	v := m.sess.Table().View()
	for i, size := range v.PageSizes {
		if size == v.PageSize {
			m.setPageSize(v.PageSizes[(i+1)%len(v.PageSizes)])
			return
		}
	}
}

func (m *Model) toggleCursor() {
	rows := m.sess.Table().View().Rows
	if m.cursor >= len(rows) {
		return
	}
	if err := m.sess.Table().Toggle(rows[m.cursor].Row.ID); err != nil {
		m.sess.NotifyError(err)
		m.collectNotices()
	}
}

/* ----------------------------------------
	HELPERS
---------------------------------------- */

// collectNotices moves session notices into the history. New notices
// replace the status line.
func (m *Model) collectNotices() {
	drained := m.sess.DrainNotices()
	if len(drained) == 0 {
		return
	}
	m.notices = append(m.notices, drained...)
	if extra := len(m.notices) - maxNotices; extra > 0 {
		m.notices = m.notices[extra:]
	}
	m.status = ""
}

func (m *Model) clampCursor() {
	n := len(m.sess.Table().View().Rows)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) focusInput(i int) {
	m.blurInputs()
	m.focus = i
	m.inputs[i].Focus()
}

func (m *Model) blurInputs() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *Model) draft() schema.Draft {
	return schema.Draft{
		ID:       m.inputs[0].Value(),
		Name:     m.inputs[1].Value(),
		Calories: m.inputs[2].Value(),
		Fat:      m.inputs[3].Value(),
		Carbs:    m.inputs[4].Value(),
		Protein:  m.inputs[5].Value(),
	}
}

func draftValues(d schema.Draft) []string {
	return []string{d.ID, d.Name, d.Calories, d.Fat, d.Carbs, d.Protein}
}
