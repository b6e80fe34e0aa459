package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mailguard/internal/config"
	"mailguard/pkg/domainsource"
	"mailguard/pkg/logger"
)

// checkCommand constructs the 'check' subcommand that checks emails against a
// freshly fetched domain list, bypassing the service.
func checkCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check EMAIL...",
		Short: "Checks emails against the configured disposable domain list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Refresh.StartupTimeout)
			defer cancel()

			src := newSource(cfg)
			rejected := 0
			for _, email := range args {
				ok, err := domainsource.Validate(ctx, src, email)
				if err != nil {
					logger.Error(ctx, "could not check email", zap.String("email", email), zap.Error(err))

					return err //nolint: wrapcheck
				}
				verdict := "ok"
				if !ok {
					verdict = "rejected"
					rejected++
				}
				fmt.Printf("%s\t%s\n", email, verdict) //nolint: forbidigo
			}
			if rejected > 0 {
				return fmt.Errorf("%d of %d emails rejected", rejected, len(args))
			}

			return nil
		},
	}

	return cmd
}
