package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mailguard/internal/config"
	"mailguard/pkg/logger"
	"mailguard/pkg/token"
)

// tokenCommand constructs the 'token' subcommand that signs an RS256 access
// token for a client, granting the configured admin role unless told otherwise.
// It is meant for local testing against a service using the matching public key.
func tokenCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generates an access token for given client",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			keyFile, _ := cmd.Flags().GetString("private-key-file")
			clientID, _ := cmd.Flags().GetString("client")
			subject, _ := cmd.Flags().GetString("subject")
			roles, _ := cmd.Flags().GetStringSlice("role")
			TTL, _ := cmd.Flags().GetDuration("ttl")

			keyPEM, err := os.ReadFile(keyFile)
			if err != nil {
				logger.Fatal(ctx, "could not read private key", zap.Error(err))
			}
			issuer, err := token.NewIssuer(string(keyPEM), cfg.Auth.Issuer)
			if err != nil {
				logger.Fatal(ctx, "could not create token issuer", zap.Error(err))
			}

			if subject == "" {
				subject = "service-account-" + clientID
			}
			if len(roles) == 0 {
				roles = []string{cfg.Auth.AdminRole}
			}
			signed, err := issuer.Sign(token.Grant{
				Subject:  subject,
				ClientID: clientID,
				Roles:    map[string][]string{cfg.Auth.AdminClient: roles},
				TTL:      TTL,
			})
			if err != nil {
				logger.Fatal(ctx, "could not sign token", zap.Error(err))
			}

			fmt.Println(signed) //nolint: forbidigo
		},
	}

	cmd.Flags().String("private-key-file", "", "PEM encoded RSA private key")
	cmd.Flags().String("client", "", "Client id written to azp")
	cmd.Flags().String("subject", "", "Token subject, defaults to service-account-<client>")
	cmd.Flags().StringSlice("role", nil, "Roles granted on the admin client, defaults to the admin role")
	cmd.Flags().Duration("ttl", time.Hour, "Token TTL (e.g., 30s, 15m, 1h)")
	_ = cmd.MarkFlagRequired("private-key-file")
	_ = cmd.MarkFlagRequired("client")

	return cmd
}
