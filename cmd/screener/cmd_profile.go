package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/five82/screener/internal/marketdata"
	"github.com/five82/screener/internal/screener"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile SYMBOL",
		Short: "Show the extended profile for a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCLIEnv(opts)
			if err != nil {
				return err
			}
			defer env.close()

			symbol := strings.ToUpper(strings.TrimSpace(args[0]))
			profile, err := env.client.FetchCompanyProfile(cmd.Context(), symbol)
			if err != nil {
				if marketdata.IsNotFound(err) {
					return fmt.Errorf("no profile for %s", symbol)
				}
				return fmt.Errorf("fetch profile: %w", err)
			}
			return printProfile(cmd.OutOrStdout(), symbol, profile)
		},
	}
}

func printProfile(w io.Writer, symbol string, p marketdata.Profile) error {
	if p.Symbol != "" {
		symbol = p.Symbol
	}
	rows := [][2]string{
		{"Symbol", symbol},
		{"CEO", p.CEO},
		{"Country", p.Country},
		{"Exchange", p.Exchange},
		{"Website", p.Website},
	}
	if p.Employees > 0 {
		rows = append(rows, [2]string{"Employees", humanize.Comma(int64(p.Employees))})
	}

	var b strings.Builder
	for _, r := range rows {
		if strings.TrimSpace(r[1]) == "" {
			continue
		}
		fmt.Fprintf(&b, "%-10s %s\n", r[0]+":", r[1])
	}
	desc := strings.TrimSpace(p.Description)
	if desc == "" {
		desc = screener.NoDescription
	}
	fmt.Fprintf(&b, "\n%s\n", desc)

	_, err := io.WriteString(w, b.String())
	return err
}
