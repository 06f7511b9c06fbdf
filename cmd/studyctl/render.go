package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newRenderCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render-check",
		Short: "Verify the rendering credentials and print remaining credits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadClients()
			if err != nil {
				return err
			}
			if !c.render.Configured() {
				return errors.New("D_ID_API_KEY is not set")
			}
			credits, err := c.render.Credits(cmd.Context())
			if err != nil {
				return fmt.Errorf("credentials check failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connection ok: %d of %d credits remaining\n", credits.Remaining, credits.Total)
			return nil
		},
	}
}
