// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dacolabs/jsonschema-validate/internal/version"
)

func registerVersionCmd(parent *cobra.Command) {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Example: `  # Full build information
  validate version

  # Version number only
  validate version --short`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), version.Short())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	parent.AddCommand(cmd)
}
