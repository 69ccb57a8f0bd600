package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lockmy/pkg/philo"
)

// Model is the live dashboard for a dining-philosophers run: one row per
// diner, updated from the simulation's event feed while the run proceeds in
// the background.
type Model struct {
	cfg    philo.Config
	tbl    *philo.Table
	events chan philo.Event

	diners  []dinerRow
	view    table.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	results  []philo.Result
	runErr   error
	running  bool
	showHelp bool
	width    int
}

type dinerRow struct {
	state philo.State
	tries int
}

type eventMsg philo.Event

type runDoneMsg struct {
	results []philo.Result
	err     error
}

// NewModel seats a table for cfg and prepares the dashboard. The run starts
// when the program calls Init.
func NewModel(cfg philo.Config) (Model, error) {
	events := make(chan philo.Event, 256)
	cfg.Events = events

	tbl, err := philo.NewTable(cfg)
	if err != nil {
		return Model{}, err
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentViolet)

	columns := []table.Column{
		{Title: "Diner", Width: 6},
		{Title: "State", Width: 10},
		{Title: "Tries", Width: 6},
	}
	view := table.New(
		table.WithColumns(columns),
		table.WithHeight(cfg.Diners),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(textPrimary)
	styles.Selected = lipgloss.NewStyle()
	view.SetStyles(styles)

	return Model{
		cfg:     cfg,
		tbl:     tbl,
		events:  events,
		diners:  make([]dinerRow, cfg.Diners),
		view:    view,
		spinner: sp,
		help:    help.New(),
		keys:    keys,
		running: true,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun(), m.nextEvent())
}

func (m Model) startRun() tea.Cmd {
	return func() tea.Msg {
		results, err := m.tbl.Run(context.Background())
		return runDoneMsg{results: results, err: err}
	}
}

func (m Model) nextEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-m.events)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case eventMsg:
		if msg.Diner >= 0 && msg.Diner < len(m.diners) {
			m.diners[msg.Diner] = dinerRow{state: msg.State, tries: msg.Tries}
		}
		m.syncRows()
		if m.running {
			return m, m.nextEvent()
		}
		return m, nil

	case runDoneMsg:
		m.running = false
		m.results = msg.results
		m.runErr = msg.err
		for i := range m.diners {
			if msg.err == nil {
				m.diners[i].state = philo.StateDone
			}
		}
		m.syncRows()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) syncRows() {
	rows := make([]table.Row, len(m.diners))
	for i, d := range m.diners {
		label := d.state.String()
		rows[i] = table.Row{
			strconv.Itoa(i),
			stateStyle(label).Render(label),
			strconv.Itoa(d.tries),
		}
	}
	m.view.SetRows(rows)
}

func (m Model) View() string {
	title := titleStyle.Render(fmt.Sprintf("lockmy · dining philosophers · %s/%s",
		m.cfg.Method, m.cfg.Strategy))

	var status string
	switch {
	case m.running:
		status = statusBarStyle.Render(m.spinner.View() + " diners eating...")
	case m.runErr != nil:
		status = statusBarStyle.Render(errorStyle.Render("run failed: " + m.runErr.Error()))
	default:
		status = statusBarStyle.Render(doneStyle.Render(m.resultSummary()) +
			mutedStyle.Render("  press q to quit"))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, title, m.view.View(), status)
	if m.showHelp {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.help.View(m.keys))
	}
	return appStyle.Render(body)
}

func (m Model) resultSummary() string {
	tries := 0
	for _, r := range m.results {
		tries += r.Tries
	}
	return fmt.Sprintf("all %d diners finished, %d backoffs total", len(m.results), tries)
}
