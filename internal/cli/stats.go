package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
)

type statsOptions struct {
	watch    bool
	interval time.Duration
	json     bool
}

func newStatsCommand(opts *options) *cobra.Command {
	so := &statsOptions{}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show total, redeemed and unredeemed code counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := openStore(opts)
			if err != nil {
				return err
			}
			defer h.Close()

			if so.watch {
				model := newStatsModel(h.operator.Stats, so.interval)
				_, err := tea.NewProgram(model, tea.WithContext(cmd.Context()), tea.WithOutput(cmd.OutOrStdout())).Run()
				return err
			}
			stats, err := h.operator.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if so.json {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(stats)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), formatStats(stats))
			return err
		},
	}
	cmd.Flags().BoolVarP(&so.watch, "watch", "w", false, "refresh counts in an interactive view")
	cmd.Flags().DurationVar(&so.interval, "interval", 2*time.Second, "refresh interval for --watch")
	cmd.Flags().BoolVar(&so.json, "json", false, "print counts as JSON")
	return cmd
}

type statsFetcher func(ctx context.Context) (domain.CodeStats, error)
