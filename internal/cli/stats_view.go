package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle    = lipgloss.NewStyle().Width(12).Foreground(lipgloss.Color("245"))
	valueStyle    = lipgloss.NewStyle().Bold(true)
	redeemedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle     = lipgloss.NewStyle().Faint(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

type statsMsg struct {
	stats domain.CodeStats
	err   error
	at    time.Time
}

type tickMsg struct{}

type statsModel struct {
	fetch    statsFetcher
	interval time.Duration
	stats    domain.CodeStats
	err      error
	updated  time.Time
	loaded   bool
}

func newStatsModel(fetch statsFetcher, interval time.Duration) statsModel {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return statsModel{fetch: fetch, interval: interval}
}

func (m statsModel) Init() tea.Cmd {
	return m.fetchCmd()
}

func (m statsModel) fetchCmd() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		stats, err := fetch(ctx)
		return statsMsg{stats: stats, err: err, at: time.Now()}
	}
}

func (m statsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		}
	case statsMsg:
		m.err = msg.err
		if msg.err == nil {
			m.stats = msg.stats
			m.loaded = true
		}
		m.updated = msg.at
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} })
	case tickMsg:
		return m, m.fetchCmd()
	}
	return m, nil
}

func (m statsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Unlock codes"))
	b.WriteString("\n\n")
	if !m.loaded && m.err == nil {
		b.WriteString("loading...\n")
	} else {
		b.WriteString(labelStyle.Render("total") + valueStyle.Render(fmt.Sprintf("%d", m.stats.Total)) + "\n")
		b.WriteString(labelStyle.Render("redeemed") + redeemedStyle.Render(fmt.Sprintf("%d", m.stats.Redeemed)) + " " + hintStyle.Render(redeemedPercent(m.stats)) + "\n")
		b.WriteString(labelStyle.Render("unredeemed") + valueStyle.Render(fmt.Sprintf("%d", m.stats.Unredeemed)) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("error: "+m.err.Error()) + "\n")
	}
	if !m.updated.IsZero() {
		b.WriteString("\n" + hintStyle.Render("updated "+m.updated.Format("15:04:05")) + "\n")
	}
	b.WriteString(hintStyle.Render("r refresh, q quit"))
	return boxStyle.Render(b.String()) + "\n"
}

func redeemedPercent(s domain.CodeStats) string {
	if s.Total == 0 {
		return "(0.0%)"
	}
	return fmt.Sprintf("(%.1f%%)", float64(s.Redeemed)*100/float64(s.Total))
}
