package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newSectorsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sectors",
		Short: "List every sector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newCLIEnv(opts)
			if err != nil {
				return err
			}
			defer env.close()

			sectors, err := env.client.FetchSectors(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch sectors: %w", err)
			}
			return printNames(cmd.OutOrStdout(), sectors, "no sectors")
		},
	}
}

func newIndustriesCmd(opts *rootOptions) *cobra.Command {
	var sector string
	cmd := &cobra.Command{
		Use:   "industries",
		Short: "List industries, optionally within one sector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newCLIEnv(opts)
			if err != nil {
				return err
			}
			defer env.close()

			industries, err := env.client.FetchIndustries(cmd.Context(), sector)
			if err != nil {
				return fmt.Errorf("fetch industries: %w", err)
			}
			return printNames(cmd.OutOrStdout(), industries, "no industries")
		},
	}
	cmd.Flags().StringVar(&sector, "sector", "", "limit to one sector")
	return cmd
}

func printNames(w io.Writer, names []string, empty string) error {
	if len(names) == 0 {
		_, err := fmt.Fprintln(w, empty)
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}
