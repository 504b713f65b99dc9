package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EmpoweredVote/election-results/internal/results"
	"github.com/EmpoweredVote/election-results/internal/results/provider"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	tuiServer   string
	tuiInterval time.Duration
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Watch a running server's dashboard in the terminal",
	Long: `Polls GET /results on a running server and renders the standings and
featured constituencies. Type to filter constituencies; ctrl+r requests a
manual refresh; esc or ctrl+c quits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := tuiServer
		if server == "" {
			server = "http://localhost:" + cfg.Server.Port
		}
		m := newModel(newAPIClient(server, timeout), tuiInterval)
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiServer, "server", "", "Server base URL (default: http://localhost:<server.port>)")
	tuiCmd.Flags().DurationVar(&tuiInterval, "interval", 15*time.Second, "Poll interval")
}

// stateSource is the part of apiClient the model needs.
type stateSource interface {
	State(ctx context.Context) (results.StateResponse, error)
	Refresh(ctx context.Context) (results.StateResponse, error)
}

type (
	stateMsg struct {
		state results.StateResponse
		err   error
		at    time.Time
		poll  bool // from the poll loop rather than ctrl+r
	}
	tickMsg time.Time
)

type styles struct {
	header   lipgloss.Style
	muted    lipgloss.Style
	errorMsg lipgloss.Style
	notice   lipgloss.Style
	panel    lipgloss.Style
	title    lipgloss.Style
	leader   lipgloss.Style
}

func newStyles() styles {
	return styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f8fafc")).Background(lipgloss.Color("#006a4e")).Padding(0, 1),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8")),
		errorMsg: lipgloss.NewStyle().Foreground(lipgloss.Color("#f42a41")).Bold(true),
		notice:   lipgloss.NewStyle().Foreground(lipgloss.Color("#eab308")),
		panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#334155")).Padding(0, 1),
		title:    lipgloss.NewStyle().Bold(true),
		leader:   lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")),
	}
}

type model struct {
	src      stateSource
	interval time.Duration

	input   textinput.Model
	spinner spinner.Model
	styles  styles

	state   results.StateResponse
	err     error
	fetched time.Time
	busy    bool
	width   int
}

func newModel(src stateSource, interval time.Duration) model {
	ti := textinput.New()
	ti.Placeholder = "আসন খুঁজুন (যেমন ঢাকা-১০)"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if interval <= 0 {
		interval = 15 * time.Second
	}
	return model{
		src:      src,
		interval: interval,
		input:    ti,
		spinner:  sp,
		styles:   newStyles(),
		busy:     true,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.fetchCmd(false))
}

func (m model) fetchCmd(refresh bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var (
			st  results.StateResponse
			err error
		)
		if refresh {
			st, err = m.src.Refresh(ctx)
		} else {
			st, err = m.src.State(ctx)
		}
		return stateMsg{state: st, err: err, at: time.Now(), poll: !refresh}
	}
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlR:
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.fetchCmd(true)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case stateMsg:
		m.busy = false
		m.fetched = msg.at
		var rl *RateLimitedError
		switch {
		case errors.As(msg.err, &rl):
			// keep the last state; only report the refusal
			m.err = rl
		case msg.err != nil:
			m.err = msg.err
		default:
			m.err = nil
			m.state = msg.state
		}
		if msg.poll {
			return m, tickEvery(m.interval)
		}
		return m, nil

	case tickMsg:
		if m.busy {
			return m, tickEvery(m.interval)
		}
		m.busy = true
		return m, m.fetchCmd(false)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// visible is the featured list filtered by the search box.
func (m model) visible() []provider.ConstituencyResult {
	if m.state.Snapshot == nil {
		return nil
	}
	return results.FilterResults(m.state.Snapshot.FeaturedResults, m.input.Value())
}

func (m model) View() string {
	s := m.styles
	var b strings.Builder

	status := string(m.state.Phase)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	b.WriteString(s.header.Render("ত্রয়োদশ জাতীয় সংসদ নির্বাচন ২০২৬"))
	b.WriteString(" " + s.muted.Render(status))
	if m.state.LastUpdateText != "" {
		b.WriteString(s.muted.Render("  সর্বশেষ আপডেট " + m.state.LastUpdateText))
	}
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(s.errorMsg.Render(m.err.Error()) + "\n")
	}
	if m.state.Error != nil {
		b.WriteString(s.errorMsg.Render(*m.state.Error) + "\n")
	}
	if m.state.Notice != "" {
		b.WriteString(s.notice.Render(m.state.Notice) + "\n")
	}

	snap := m.state.Snapshot
	if snap == nil {
		b.WriteString(s.muted.Render("no data yet") + "\n")
		b.WriteString("\n" + m.input.View() + "\n")
		return b.String()
	}

	b.WriteString(s.title.Render(snap.NewsFlash) + "\n")
	b.WriteString(fmt.Sprintf("%s %d/%d\n\n",
		progressBar(m.state.Progress, 30), snap.Summary.ResultsPublished, snap.Summary.TotalSeats))

	b.WriteString(s.panel.Render(m.standingsView(snap.Summary)) + "\n")
	b.WriteString(m.input.View() + "\n")
	b.WriteString(s.panel.Render(m.resultsView(m.visible())) + "\n")

	if n := len(snap.GroundingSources); n > 0 {
		b.WriteString(s.muted.Render(fmt.Sprintf("%d source(s): %s", n, snap.GroundingSources[0].Title)) + "\n")
	}
	b.WriteString(s.muted.Render("ctrl+r refresh • esc quit"))
	return b.String()
}

func (m model) standingsView(sum provider.NationalSummary) string {
	if len(sum.PartyStandings) == 0 {
		return m.styles.muted.Render("no standings")
	}
	var lines []string
	for _, p := range sum.PartyStandings {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("■")
		lines = append(lines, fmt.Sprintf("%s %-24s won %3d  leading %3d  %s",
			swatch, p.Party, p.SeatsWon, p.SeatsLeading, progressBar(p.Share(sum.TotalSeats), 20)))
	}
	return strings.Join(lines, "\n")
}

func (m model) resultsView(rs []provider.ConstituencyResult) string {
	if len(rs) == 0 {
		return m.styles.muted.Render("no matching constituencies")
	}
	var lines []string
	for _, r := range rs {
		line := fmt.Sprintf("%-16s %-10s", r.ConstituencyNo, r.Status)
		if c, ok := r.Leader(); ok {
			line += m.styles.leader.Render(fmt.Sprintf(" %s (%s) %d", c.Name, c.Party, c.Votes))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func progressBar(frac float64, width int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
