package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
	"github.com/sandeepkv93/one-time-unlock-service/internal/export"
	"github.com/sandeepkv93/one-time-unlock-service/internal/service"
)

type generateOptions struct {
	count  int
	prefix string
	batch  string
	output string
	format string
}

func newGenerateCommand(opts *options) *cobra.Command {
	gen := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of unlock codes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if gen.format != "csv" && gen.format != "json" {
				return fmt.Errorf("unsupported format %q", gen.format)
			}
			h, err := openStore(opts)
			if err != nil {
				return err
			}
			defer h.Close()

			res, err := h.operator.GenerateBatch(cmd.Context(), service.GenerateRequest{
				Count:  gen.count,
				Prefix: gen.prefix,
				Batch:  gen.batch,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "batch %s: requested=%d inserted=%d skipped=%d\n", res.Batch, res.Requested, res.Inserted, res.Skipped)
			return writeOutput(cmd.OutOrStdout(), gen.output, func(w io.Writer) error {
				if gen.format == "json" {
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(res)
				}
				return export.WriteCodesCSV(w, res.Codes)
			})
		},
	}
	cmd.Flags().IntVarP(&gen.count, "count", "n", 100, "number of codes to generate (clamped to CODE_GENERATE_MAX)")
	cmd.Flags().StringVar(&gen.prefix, "prefix", "", "code prefix, defaults to CODE_PREFIX")
	cmd.Flags().StringVar(&gen.batch, "batch", "", "batch label, defaults to today's UTC date")
	cmd.Flags().StringVarP(&gen.output, "output", "o", "", "output file, defaults to stdout")
	cmd.Flags().StringVar(&gen.format, "format", "csv", "output format: csv or json")
	return cmd
}

func newExportCommand(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every code with its state as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := openStore(opts)
			if err != nil {
				return err
			}
			defer h.Close()

			codes, err := h.operator.Export(cmd.Context())
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return export.WriteCodesCSV(w, codes)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, defaults to stdout")
	return cmd
}

func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func formatStats(s domain.CodeStats) string {
	return fmt.Sprintf("total=%d redeemed=%d unredeemed=%d", s.Total, s.Redeemed, s.Unredeemed)
}
