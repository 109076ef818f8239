package main

import (
	"encoding/json"
	"fmt"

	"github.com/KOMKZ/go-yogan-intercept/application"
	"github.com/spf13/cobra"
)

func newHealthCmd(app *application.CLIApplication) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Run the component health checks and print the result as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := app.Health(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if !resp.IsHealthy() {
				return fmt.Errorf("status %s", resp.Status)
			}
			return nil
		},
	}
}
