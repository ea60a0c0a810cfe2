// Package tui draws the task board in the terminal and feeds mouse and
// keyboard input into it.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/nakachan-ing/jmt-cli/internal/board"
	"github.com/nakachan-ing/jmt-cli/internal/jira"
	"github.com/rs/zerolog"
)

const (
	// item columns: "⠿ [ ] text"
	handleCols = 2
	textCol    = 6

	lookupTimeout = 20 * time.Second
)

type focus int

const (
	focusInput focus = iota
	focusList
)

type Options struct {
	Log zerolog.Logger
	// OpenURL opens an issue page in the browser.
	OpenURL func(url string) error
	// CopyText puts text on the clipboard.
	CopyText func(text string) error
	// BrowseURL builds an issue URL when a task has none stored.
	BrowseURL func(key string) string
}

type addLookupMsg struct {
	req   *board.AddRequest
	issue *jira.Issue
	err   error
}

type editLookupMsg struct {
	req   *board.SaveRequest
	issue *jira.Issue
	err   error
}

type Model struct {
	board    *board.Board
	resolver board.IssueResolver
	opts     Options
	log      zerolog.Logger

	input    textarea.Model
	edit     textarea.Model
	addBusy  bool
	addErr   error
	focus    focus
	cursor   int
	status   string
	session  *board.DragSession
	resized  bool
	view     board.ListView
	rendered map[int64]string
	help     help.Model

	width   int
	height  int
	listTop int
}

func New(store board.Store, resolver board.IssueResolver, opts Options) *Model {
	m := &Model{
		resolver: resolver,
		opts:     opts,
		log:      opts.Log,
		input:    newTextarea("New task… (KEY-1 links an issue, @today sets a date)"),
		edit:     newTextarea(""),
		rendered: map[int64]string{},
		help:     help.New(),
		width:    80,
		height:   24,
	}
	if m.opts.OpenURL == nil {
		m.opts.OpenURL = func(string) error { return errors.New("no browser configured") }
	}
	if m.opts.CopyText == nil {
		m.opts.CopyText = func(string) error { return errors.New("no clipboard configured") }
	}
	m.board = board.New(store, board.RendererFunc(m.renderList), m.log)
	m.input.Focus()
	return m
}

func newTextarea(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(1)
	// newlines come from the edit key contract, not the default binding
	ta.KeyMap.InsertNewline.SetEnabled(false)
	return ta
}

// Board exposes the underlying board, mainly for tests.
func (m *Model) Board() *board.Board { return m.board }

// Run starts the full-screen program with mouse motion tracking.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	m.board.Mount()
	return textarea.Blink
}

// renderList is the board's renderer: it caches the view model and redraws
// every item block.
func (m *Model) renderList(view board.ListView) {
	m.view = view
	m.rendered = make(map[int64]string, len(view.Items))
	for _, item := range view.Items {
		m.rendered[item.ID] = m.renderItem(item, false)
	}
	if m.cursor >= len(view.Items) {
		m.cursor = len(view.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.layout()
}

func (m *Model) itemIndex(id int64) int {
	for i, item := range m.view.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// layout recomputes the geometry of the realized list. The drop zone spans
// the whole list area below the input.
func (m *Model) layout() {
	m.listTop = lipgloss.Height(m.renderTop())
	s := m.board.Surface
	s.Layout(board.Point{X: 0, Y: m.listTop}, m.width, func(n *board.Node) int {
		if n.IsIndicator() {
			return 1
		}
		return lipgloss.Height(m.itemBlock(n))
	})
	if h := m.height - m.listTop - 1; s.Bounds.H < h {
		s.Bounds.H = h
	}
}

func (m *Model) itemBlock(n *board.Node) string {
	i := m.itemIndex(n.ID)
	if i < 0 {
		return ""
	}
	if m.view.Items[i].Editing {
		return m.renderItem(m.view.Items[i], i == m.cursor)
	}
	return m.rendered[n.ID]
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.SetWidth(max(10, m.width-2))
		m.edit.SetWidth(max(10, m.width-textCol))
		m.help.Width = m.width
		if m.session != nil {
			m.resized = true
			return m, nil
		}
		m.board.Reload()
		return m, nil

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case addLookupMsg:
		m.addBusy = false
		if _, err := m.board.FinishAdd(msg.req, msg.issue, msg.err); err != nil {
			m.addErr = err
			m.status = "issue lookup failed: " + msg.req.IssueKey
			return m, nil
		}
		m.input.Reset()
		m.addErr = nil
		m.status = ""
		m.layout()
		return m, nil

	case editLookupMsg:
		if _, err := m.board.Editor.FinishSave(msg.req, msg.issue, msg.err); err != nil {
			m.status = err.Error()
			m.layout()
			return m, nil
		}
		m.edit.Blur()
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.session != nil {
			if msg.String() == "esc" {
				m.endDrag(m.board.Drag.Abort)
			}
			return m, nil
		}
		if _, editing := m.board.Editor.Current(); editing {
			return m, m.handleEditKey(msg)
		}
		if m.focus == focusInput {
			return m, m.handleInputKey(msg)
		}
		return m, m.handleListKey(msg)
	}
	return m, nil
}

func editKey(msg tea.KeyMsg) board.Key {
	switch msg.String() {
	case "enter":
		return board.KeyEnter
	case "shift+enter", "alt+enter", "ctrl+j":
		return board.KeyShiftEnter
	case "esc":
		return board.KeyEscape
	}
	return board.KeyOther
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch board.ActionFor(editKey(msg)) {
	case board.ActionSave:
		return m.submitAdd()
	case board.ActionNewline:
		if !m.addBusy {
			m.input.InsertRune('\n')
			m.autosize(&m.input, m.width-2)
		}
		return nil
	case board.ActionCancel:
		m.input.Blur()
		m.focus = focusList
		return nil
	}
	if msg.String() == "tab" {
		m.input.Blur()
		m.focus = focusList
		return nil
	}
	if m.addBusy {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.addErr = nil
	m.autosize(&m.input, m.width-2)
	return cmd
}

func (m *Model) autosize(ta *textarea.Model, width int) {
	h := board.EditHeight(ta.Value(), max(1, width))
	if ta.Height() != h {
		ta.SetHeight(h)
		m.layout()
	}
}

func (m *Model) submitAdd() tea.Cmd {
	if m.addBusy {
		return nil
	}
	req, err := m.board.ParseAdd(m.input.Value())
	if err != nil {
		return nil
	}
	m.addBusy = true
	if req.IssueKey == "" {
		return func() tea.Msg { return addLookupMsg{req: req} }
	}
	m.status = "looking up " + req.IssueKey + "…"
	return m.lookup(req.IssueKey, func(issue *jira.Issue, err error) tea.Msg {
		return addLookupMsg{req: req, issue: issue, err: err}
	})
}

func (m *Model) lookup(key string, done func(*jira.Issue, error) tea.Msg) tea.Cmd {
	resolver := m.resolver
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()
		issue, err := board.Lookup(ctx, resolver, key)
		return done(issue, err)
	}
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	id, _ := m.board.Editor.Current()
	if m.board.Editor.State(id) == board.Saving {
		return nil
	}
	switch board.ActionFor(editKey(msg)) {
	case board.ActionSave:
		m.board.Editor.SetDraft(m.edit.Value())
		req, err := m.board.Editor.BeginSave()
		if err != nil {
			m.status = err.Error()
			return nil
		}
		m.layout()
		if req.IssueKey == "" {
			return func() tea.Msg { return editLookupMsg{req: req} }
		}
		m.status = "looking up " + req.IssueKey + "…"
		return m.lookup(req.IssueKey, func(issue *jira.Issue, err error) tea.Msg {
			return editLookupMsg{req: req, issue: issue, err: err}
		})
	case board.ActionNewline:
		m.edit.InsertRune('\n')
	case board.ActionCancel:
		m.edit.Blur()
		m.board.Editor.Cancel()
		m.status = ""
		return nil
	default:
		var cmd tea.Cmd
		m.edit, cmd = m.edit.Update(msg)
		m.board.Editor.SetDraft(m.edit.Value())
		m.autosize(&m.edit, m.width-textCol)
		m.layout()
		return cmd
	}
	m.board.Editor.SetDraft(m.edit.Value())
	m.autosize(&m.edit, m.width-textCol)
	m.layout()
	return nil
}

func (m *Model) selected() (board.ItemView, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Items) {
		return board.ItemView{}, false
	}
	return m.view.Items[m.cursor], true
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, listKeys.Quit):
		return tea.Quit
	case key.Matches(msg, listKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, listKeys.Down):
		if m.cursor < len(m.view.Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, listKeys.Add):
		m.focus = focusInput
		return m.input.Focus()
	case key.Matches(msg, listKeys.Sort):
		m.board.SortByDate()
		m.status = "sorted by due date"
	}

	item, ok := m.selected()
	if !ok {
		return nil
	}
	var err error
	switch {
	case key.Matches(msg, listKeys.Toggle):
		err = m.board.Toggle(item.ID)
	case key.Matches(msg, listKeys.Edit):
		return m.beginEdit(item.ID)
	case key.Matches(msg, listKeys.Delete):
		err = m.board.Delete(item.ID)
	case key.Matches(msg, listKeys.Undate):
		err = m.board.ClearDueDate(item.ID)
	case key.Matches(msg, listKeys.Unlink):
		err = m.board.Unlink(item.ID)
	case key.Matches(msg, listKeys.Open):
		if url := m.issueURL(item); url != "" {
			err = m.opts.OpenURL(url)
		}
	case key.Matches(msg, listKeys.Copy):
		if url := m.issueURL(item); url != "" {
			if err = m.opts.CopyText(url); err == nil {
				m.status = "copied " + url
			}
		}
	}
	if err != nil {
		m.log.Warn().Err(err).Int64("id", item.ID).Msg("board action failed")
		m.status = err.Error()
	}
	return nil
}

func (m *Model) issueURL(item board.ItemView) string {
	for _, b := range item.Badges {
		if b.Kind != board.BadgeJira {
			continue
		}
		if b.URL != "" {
			return b.URL
		}
		key, _, _ := strings.Cut(b.Text, " | ")
		if m.opts.BrowseURL != nil {
			return m.opts.BrowseURL(key)
		}
	}
	return ""
}

func (m *Model) beginEdit(id int64) tea.Cmd {
	if _, err := m.board.BeginEdit(id); err != nil {
		m.status = err.Error()
		return nil
	}
	if i := m.itemIndex(id); i >= 0 {
		m.cursor = i
	}
	m.edit.SetValue(m.board.Editor.Draft())
	m.autosize(&m.edit, m.width-textCol)
	m.layout()
	m.input.Blur()
	m.focus = focusList
	return m.edit.Focus()
}

func (m *Model) nodeAt(p board.Point) *board.Node {
	for _, n := range m.board.Surface.Items() {
		if n.Rect.Contains(p) {
			return n
		}
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	p := board.Point{X: msg.X, Y: msg.Y}

	if m.session != nil && m.session.Ended() {
		m.endDrag(func() {})
	}
	if m.session != nil {
		switch msg.Action {
		case tea.MouseActionMotion:
			m.session.Move(p)
			m.layout()
		case tea.MouseActionRelease:
			m.session.Move(p)
			m.endDrag(func() { m.session.End() })
		}
		return nil
	}

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	n := m.nodeAt(p)
	if n == nil {
		if p.Y < m.listTop {
			m.focus = focusInput
			return m.input.Focus()
		}
		return nil
	}
	i := m.itemIndex(n.ID)
	if i < 0 {
		return nil
	}
	m.cursor = i
	item := m.view.Items[i]

	switch {
	case p.X < handleCols:
		session, err := m.board.Drag.Start(n.ID, p)
		if err != nil {
			m.log.Debug().Err(err).Int64("id", n.ID).Msg("drag not started")
			return nil
		}
		m.session = session
		m.layout()
	case item.Editing:
	case p.X < textCol:
		if err := m.board.Toggle(n.ID); err != nil {
			m.status = err.Error()
		}
	case p.Y == n.Rect.Y+n.Rect.H-1 && len(item.Badges) > 0 && n.Rect.H > 1:
		if url := m.issueURL(item); url != "" {
			if err := m.opts.OpenURL(url); err != nil {
				m.status = err.Error()
			}
		}
	default:
		return m.beginEdit(n.ID)
	}
	return nil
}

// endDrag finishes the live session with end and catches up on a resize
// that arrived mid-gesture.
func (m *Model) endDrag(end func()) {
	end()
	m.session = nil
	if m.resized {
		m.resized = false
		m.board.Reload()
		return
	}
	m.layout()
}

func (m *Model) renderTop() string {
	var b strings.Builder
	header := headerStyle.Render(m.view.Header)
	if m.view.Sorted {
		header += " " + sortedStyle.Render("(sorted by date)")
	}
	b.WriteString(header + "\n")

	style := inputStyle
	switch {
	case m.addErr != nil:
		style = inputErrorStyle
	case m.addBusy:
		style = inputBusyStyle
	}
	b.WriteString(style.Render(m.input.View()) + "\n")
	if m.focus == focusList {
		b.WriteString(m.help.View(listKeys))
	} else {
		b.WriteString(hintStyle.Render("Enter add · Alt+Enter newline · Tab list · Ctrl+C quit"))
	}
	return b.String()
}

func (m *Model) renderItem(item board.ItemView, selected bool) string {
	handle := handleStyle.Render("⠿ ")
	if selected && m.focus == focusList {
		handle = selectedStyle.Render("▌ ")
	}
	check := "[ ] "
	if item.Done {
		check = "[x] "
	}

	var body string
	width := max(1, m.width-textCol)
	switch {
	case item.Editing:
		style := editStyle
		if m.board.Editor.Err() != nil {
			style = editErrorStyle
		}
		body = style.Render(m.edit.View())
	case item.Done:
		body = doneTextStyle.Width(width).Render(item.Text)
	default:
		body = lipgloss.NewStyle().Width(width).Render(item.Text)
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, handle, check, "  ", body)
	if len(item.Badges) == 0 {
		return row
	}
	badges := make([]string, 0, len(item.Badges))
	for _, b := range item.Badges {
		badges = append(badges, renderBadge(b))
	}
	return row + "\n" + strings.Repeat(" ", textCol) + strings.Join(badges, " ")
}

func renderBadge(b board.Badge) string {
	switch b.Kind {
	case board.BadgeDue:
		text := "📅 " + b.Text
		if b.Title != "" && b.Title != b.Text {
			text += " · " + b.Title
		}
		if b.Overdue {
			return overdueBadgeStyle.Render(text)
		}
		return dueBadgeStyle.Render(text)
	case board.BadgeJira:
		return jiraBadgeStyle.Render(b.Text)
	default:
		return doneBadgeStyle.Render(b.Text)
	}
}

func (m *Model) View() string {
	lines := strings.Split(m.renderTop(), "\n")

	for _, n := range m.board.Surface.Children() {
		if n.IsIndicator() {
			lines = append(lines, dropLineStyle.Render(strings.Repeat("━", max(1, m.width))))
			continue
		}
		block := m.itemBlock(n)
		if i := m.itemIndex(n.ID); i == m.cursor && !m.view.Items[i].Editing {
			block = m.renderItem(m.view.Items[i], true)
		}
		if n.Lifted {
			block = liftedStyle.Render(ansi.Strip(block))
		}
		lines = append(lines, strings.Split(block, "\n")...)
	}
	if len(m.view.Items) == 0 {
		lines = append(lines, hintStyle.Render("No tasks yet."))
	}

	if m.session != nil {
		lines = m.overlayGhost(lines)
	}
	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	if m.height > 0 && len(lines) > m.height {
		lines = lines[:m.height]
	}
	return strings.Join(lines, "\n")
}

// overlayGhost draws the dragged item's first line where the pointer holds it.
func (m *Model) overlayGhost(lines []string) []string {
	g := m.session.Ghost()
	i := m.itemIndex(g.ID)
	if i < 0 || g.Rect.Y < 0 {
		return lines
	}
	first, _, _ := strings.Cut(ansi.Strip(m.rendered[g.ID]), "\n")
	ghost := ghostStyle.Render(ansi.Truncate(first, max(1, m.width-max(0, g.Rect.X)), "…"))
	pad := strings.Repeat(" ", max(0, g.Rect.X))

	for len(lines) <= g.Rect.Y {
		lines = append(lines, "")
	}
	lines[g.Rect.Y] = pad + ghost
	return lines
}
