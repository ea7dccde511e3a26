package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawchat/pawchat/internal/client"
)

// newHealthCmd pings the chat service's health endpoint.
func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the chat service is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := initConfig()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			c := client.New(cfg.ServerURL, 10*time.Second)
			if err := c.Health(ctx); err != nil {
				return fmt.Errorf("service at %s is not healthy: %w", cfg.ServerURL, err)
			}
			fmt.Printf("Service at %s is healthy.\n", cfg.ServerURL)
			return nil
		},
	}
}
