package viewer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stocklens/pkg/database"
	"stocklens/services/chart"
)

// Screen layout. The plot starts on plotTop, right of the y axis labels; the
// news panel starts one column right of the plot.
const (
	plotTop      = 2
	yLabelW      = 10
	footerH      = 5
	panelLinkRow = 2
	panelHeadH   = 3
	minPlotW     = 10
	minPlotH     = 4
	loadTimeout  = 30 * time.Second
)

const linkText = "Read full article"

type focus int

const (
	focusChart focus = iota
	focusStart
	focusEnd
	focusNews
	focusCount
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarn
	statusError
)

// Options tunes the viewer
type Options struct {
	DefaultDays int
	Now         func() time.Time
}

type symbolsMsg struct {
	symbols []string
	err     error
}

type loadedMsg struct {
	seq    int
	result *Result
	err    error
}

// Model is the Bubble Tea model for the chart viewer
type Model struct {
	ctrl *Controller

	symbols   []string
	symbolIdx int

	startInput textinput.Model
	endInput   textinput.Model
	article    viewport.Model
	newsTable  table.Model
	focus      focus

	width  int
	height int
	ready  bool

	seq       int
	crosshair int
	frame     *chart.Frame

	status     string
	statusKind statusKind
}

// New creates the viewer model. Dates default to the last DefaultDays days.
func New(ctrl *Controller, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = 7
	}
	now := opts.Now()

	start := textinput.New()
	start.Prompt = ""
	start.CharLimit = len(database.DateLayout)
	start.Width = len(database.DateLayout)
	start.Placeholder = database.DateLayout
	start.SetValue(database.NewDate(now.AddDate(0, 0, -opts.DefaultDays)).String())

	end := textinput.New()
	end.Prompt = ""
	end.CharLimit = len(database.DateLayout)
	end.Width = len(database.DateLayout)
	end.Placeholder = database.DateLayout
	end.SetValue(database.NewDate(now).String())

	newsTable := table.New(
		table.WithColumns(newsColumns(40)),
		table.WithFocused(false),
		table.WithHeight(5),
	)
	newsTable.SetStyles(tableStyles())

	return Model{
		ctrl:       ctrl,
		startInput: start,
		endInput:   end,
		article:    viewport.New(40, 5),
		newsTable:  newsTable,
		crosshair:  chart.NoCrosshair,
		status:     "Loading symbols...",
	}
}

func newsColumns(width int) []table.Column {
	headline := max(10, width-10-8-4)
	return []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Polarity", Width: 8},
		{Title: "Headline", Width: headline},
	}
}

func (m Model) Init() tea.Cmd {
	return loadSymbols(m.ctrl)
}

func loadSymbols(ctrl *Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		symbols, err := ctrl.Symbols(ctx)
		return symbolsMsg{symbols: symbols, err: err}
	}
}

func loadSeries(ctrl *Controller, seq int, q Query) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		r, err := ctrl.Fetch(ctx, q)
		return loadedMsg{seq: seq, result: r, err: err}
	}
}

// load starts a reload for the current symbol and dates
func (m Model) load() (Model, tea.Cmd) {
	if len(m.symbols) == 0 {
		m.setStatus(statusWarn, "No symbols to load")
		return m, nil
	}

	start, err := database.ParseDate(strings.TrimSpace(m.startInput.Value()))
	if err != nil {
		m.setStatus(statusError, fmt.Sprintf("Invalid start date %q, want %s", m.startInput.Value(), database.DateLayout))
		return m, nil
	}
	end, err := database.ParseDate(strings.TrimSpace(m.endInput.Value()))
	if err != nil {
		m.setStatus(statusError, fmt.Sprintf("Invalid end date %q, want %s", m.endInput.Value(), database.DateLayout))
		return m, nil
	}

	q := Query{Symbol: m.symbols[m.symbolIdx], Start: start, End: end}
	m.seq++
	m.ctrl.Begin(q)
	m.setStatus(statusInfo, fmt.Sprintf("Loading %s...", q.Symbol))
	return m, loadSeries(m.ctrl, m.seq, q)
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		m.redraw()
		return m, nil

	case symbolsMsg:
		if msg.err != nil {
			m.setStatus(statusError, fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}
		m.symbols = msg.symbols
		m.symbolIdx = 0
		if len(m.symbols) == 0 {
			m.setStatus(statusWarn, "No price data yet. Run 'ingest run' first.")
			return m, nil
		}
		return m.load()

	case loadedMsg:
		if msg.seq != m.seq {
			// superseded by a newer load
			return m, nil
		}
		if msg.err != nil {
			m.ctrl.Fail(msg.err)
			m.setStatus(statusError, fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}
		m.ctrl.Apply(msg.result)
		m.crosshair = chart.NoCrosshair
		m.refreshNews()
		m.refreshArticle()
		m.redraw()
		if m.ctrl.State() == StateEmpty {
			m.setStatus(statusWarn, "No price data available for the selected date range and symbol.")
		} else {
			m.setStatus(statusInfo, fmt.Sprintf("%d prices, %d news", len(m.ctrl.Prices()), m.ctrl.Markers().Len()))
		}
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	switch m.focus {
	case focusStart:
		m.startInput, cmd = m.startInput.Update(msg)
	case focusEnd:
		m.endInput, cmd = m.endInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		cmd = m.setFocus((m.focus + 1) % focusCount)
		return m, cmd
	case "shift+tab":
		cmd = m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, cmd
	case "pgup", "pgdown":
		m.article, cmd = m.article.Update(msg)
		return m, cmd
	}

	switch m.focus {
	case focusChart:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "up", "k":
			return m.moveSymbol(-1)
		case "down", "j":
			return m.moveSymbol(1)
		case "left", "h":
			m.moveCrosshair(-1)
		case "right":
			m.moveCrosshair(1)
		case "enter":
			m.pickAtCrosshair()
		case "l":
			return m.load()
		case "o":
			m.openLink()
		case "esc":
			m.crosshair = chart.NoCrosshair
			m.ctrl.HoverOutside()
			m.redraw()
		}
		return m, nil

	case focusStart, focusEnd:
		if msg.String() == "enter" {
			return m.load()
		}
		if m.focus == focusStart {
			m.startInput, cmd = m.startInput.Update(msg)
		} else {
			m.endInput, cmd = m.endInput.Update(msg)
		}
		return m, cmd

	case focusNews:
		if msg.String() == "enter" {
			m.pick(chart.MarkerID(m.newsTable.Cursor() + 1))
			return m, nil
		}
		m.newsTable, cmd = m.newsTable.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.startInput.Blur()
	m.endInput.Blur()
	m.newsTable.Blur()

	switch f {
	case focusStart:
		return m.startInput.Focus()
	case focusEnd:
		return m.endInput.Focus()
	case focusNews:
		m.newsTable.Focus()
	}
	return nil
}

func (m Model) moveSymbol(delta int) (Model, tea.Cmd) {
	if len(m.symbols) == 0 {
		return m, nil
	}
	m.symbolIdx = (m.symbolIdx + delta + len(m.symbols)) % len(m.symbols)
	return m.load()
}

func (m *Model) moveCrosshair(delta int) {
	if m.frame == nil {
		return
	}
	if m.crosshair == chart.NoCrosshair {
		m.crosshair = m.frame.Plot.Width - 1
		if delta > 0 {
			m.crosshair = 0
		}
	} else {
		m.crosshair = clampInt(m.crosshair+delta, 0, m.frame.Plot.Width-1)
	}
	m.ctrl.Hover(m.frame.Plot.TimeAt(m.crosshair))
	m.redraw()
}

func (m *Model) pickAtCrosshair() {
	if m.frame == nil || m.crosshair == chart.NoCrosshair {
		return
	}
	ann := m.ctrl.Annotation()
	if !ann.Visible {
		m.pick(0)
		return
	}
	id, _ := m.frame.HitMarker(m.crosshair, m.frame.Plot.Row(ann.Close))
	m.pick(id)
}

func (m *Model) pick(id chart.MarkerID) {
	m.ctrl.Pick(id)
	m.refreshArticle()
}

func (m *Model) openLink() {
	if err := m.ctrl.OpenLink(); err != nil {
		m.setStatus(statusError, fmt.Sprintf("Error: %v", err))
		return
	}
	m.setStatus(statusInfo, "Opened article in browser")
}

// handleMouse maps pointer motion to hover and left clicks to picks
func (m *Model) handleMouse(msg tea.MouseMsg) {
	col, row, inPlot := m.plotCell(msg.X, msg.Y)

	switch {
	case msg.Action == tea.MouseActionMotion:
		if inPlot {
			m.ctrl.Hover(m.frame.Plot.TimeAt(col))
		} else {
			m.ctrl.HoverOutside()
		}
		m.redraw()

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if inPlot {
			id, _ := m.frame.HitMarker(col, row)
			m.pick(id)
			m.redraw()
			return
		}
		if msg.X >= m.panelX() && msg.Y == panelLinkRow {
			if _, _, ok := m.ctrl.Selection(); ok {
				m.openLink()
			}
		}

	case msg.Action == tea.MouseActionPress && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
		if msg.X >= m.panelX() {
			m.article, _ = m.article.Update(msg)
		}
	}
}

// plotCell converts screen coordinates to a plot cell
func (m *Model) plotCell(x, y int) (col, row int, ok bool) {
	if m.frame == nil {
		return 0, 0, false
	}
	col, row = x-yLabelW, y-plotTop
	if col < 0 || col >= m.frame.Plot.Width || row < 0 || row >= m.frame.Plot.Height {
		return col, row, false
	}
	return col, row, true
}

func (m *Model) plotSize() (int, int) {
	w := max(minPlotW, m.width-m.panelWidth()-1-yLabelW)
	h := max(minPlotH, m.height-plotTop-footerH)
	return w, h
}

func (m *Model) panelWidth() int {
	if m.width >= 120 {
		return 48
	}
	return max(30, m.width/3)
}

func (m *Model) panelX() int {
	w, _ := m.plotSize()
	return yLabelW + w + 1
}

func (m *Model) resize() {
	pw := m.panelWidth()
	_, ph := m.plotSize()
	available := max(4, m.height-panelHeadH)
	articleH := available / 2
	tableH := max(3, available-articleH-1)

	m.article.Width = pw
	m.article.Height = articleH
	m.newsTable.SetColumns(newsColumns(pw))
	m.newsTable.SetWidth(pw)
	m.newsTable.SetHeight(min(tableH, ph+footerH))
	m.refreshArticle()
}

// redraw renders the current series into a frame used by View and hit tests
func (m *Model) redraw() {
	if len(m.ctrl.Prices()) == 0 {
		m.frame = nil
		return
	}
	w, h := m.plotSize()
	m.frame = chart.Render(m.ctrl.Prices(), m.ctrl.Markers(), m.ctrl.Annotation(), w, h, m.crosshair)
}

func (m *Model) refreshNews() {
	items := m.ctrl.News()
	rows := make([]table.Row, len(items))
	for i, n := range items {
		rows[i] = table.Row{
			database.NewDate(n.Date).String(),
			n.Polarity,
			strings.ReplaceAll(n.Content, "\n", " "),
		}
	}
	m.newsTable.SetRows(rows)
	m.newsTable.SetCursor(0)
}

func (m *Model) refreshArticle() {
	_, p, ok := m.ctrl.Selection()
	if !ok {
		m.article.SetContent("")
		return
	}
	m.article.SetContent(lipgloss.NewStyle().Width(m.article.Width).Render(p.Content))
	m.article.GotoTop()
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Loading viewer..."
	}

	left := lipgloss.JoinVertical(lipgloss.Left, m.leftLines()...)
	right := lipgloss.JoinVertical(lipgloss.Left, m.panelLines()...)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (m Model) leftLines() []string {
	w, h := m.plotSize()
	full := yLabelW + w

	symbol := "-"
	if len(m.symbols) > 0 {
		symbol = m.symbols[m.symbolIdx]
	}

	lines := []string{
		headerStyle.Render(truncate(fmt.Sprintf("stocklens • %s", symbol), full-2)),
		titleStyle.Render(truncate(m.ctrl.Title(), full)),
	}
	lines = append(lines, m.plotLines(w, h)...)
	lines = append(lines,
		m.xAxisLine(w),
		m.legendLine(),
		m.fieldsLine(symbol),
		m.statusLine(full),
		helpStyle.Render(truncate("Tab: focus • ↑/↓: symbol • ←/→: crosshair • Enter: pick • l: load • o: open link • q: quit", full)),
	)
	return lines
}

func (m Model) plotLines(w, h int) []string {
	lines := make([]string, h)
	if m.frame == nil {
		blank := strings.Repeat(" ", yLabelW+w)
		for i := range lines {
			lines[i] = blank
		}
		return lines
	}

	for r, row := range m.frame.Cells {
		label := strings.Repeat(" ", yLabelW-1) + "│"
		if r == 0 || r == h-1 || r == h/2 {
			label = fmt.Sprintf("%*s┤", yLabelW-1, priceLabel(m.frame.Plot.ValueAt(r), yLabelW-2))
		}

		var b strings.Builder
		b.WriteString(axisStyle.Render(label))
		for start := 0; start < len(row); {
			end := start
			var run strings.Builder
			for end < len(row) && row[end].Kind == row[start].Kind {
				run.WriteRune(row[end].Rune)
				end++
			}
			if style, ok := cellStyle(row[start].Kind); ok {
				b.WriteString(style.Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			start = end
		}
		lines[r] = b.String()
	}
	return lines
}

func priceLabel(v float64, width int) string {
	s := fmt.Sprintf("%.2f", v)
	if len(s) > width {
		s = fmt.Sprintf("%.0f", v)
	}
	return truncate(s, width)
}

func (m Model) xAxisLine(w int) string {
	pad := strings.Repeat(" ", yLabelW)
	if m.frame == nil {
		return pad
	}
	first := database.NewDate(m.frame.Plot.Start()).String()
	last := database.NewDate(m.frame.Plot.End()).String()
	gap := max(1, w-len(first)-len(last))
	return axisStyle.Render(pad + first + strings.Repeat(" ", gap) + last)
}

func (m Model) legendLine() string {
	return strings.Repeat(" ", yLabelW) +
		lineStyle.Render("•") + " Close Price   " +
		positiveStyle.Render("●") + " Positive   " +
		negativeStyle.Render("●") + " Negative"
}

func (m Model) fieldsLine(symbol string) string {
	label := func(f focus, text string) string {
		if m.focus == f {
			return focusedLabelStyle.Render(text)
		}
		return labelStyle.Render(text)
	}

	return label(focusChart, "Symbol ") + "◀ " + symbol + " ▶   " +
		label(focusStart, "Start ") + m.startInput.View() + "   " +
		label(focusEnd, "End ") + m.endInput.View() + "   " +
		label(focusNews, "News")
}

func (m Model) statusLine(width int) string {
	text := truncate(m.status, width)
	switch m.statusKind {
	case statusWarn:
		return statusWarnStyle.Render(text)
	case statusError:
		return statusErrorStyle.Render(text)
	default:
		return statusOkStyle.Render(text)
	}
}

func (m Model) panelLines() []string {
	pw := m.panelWidth()

	heading := labelStyle.Render(truncate("Click a marker to read the article", pw))
	link := ""
	if id, _, ok := m.ctrl.Selection(); ok {
		if item, ok := m.ctrl.Article(id); ok {
			style := negativeStyle
			if item.Polarity == chart.PositivePolarity {
				style = positiveStyle
			}
			text := fmt.Sprintf("%s • %s", item.Polarity, database.NewDate(item.Date))
			heading = style.Render(truncate(text, pw))
		}
		link = linkStyle.Render(linkText)
	}

	// rows 0..2 are fixed so the link stays on panelLinkRow
	return []string{
		panelTitleStyle.Render("News"),
		heading,
		link,
		m.article.View(),
		m.newsTable.View(),
	}
}

func truncate(s string, maxLen int) string {
	if maxLen <= 3 || len([]rune(s)) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
