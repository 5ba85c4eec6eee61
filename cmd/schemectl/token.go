package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/schemefinder/internal/auth"
	"github.com/kailas-cloud/schemefinder/internal/config"
)

func newTokenCmd() *cobra.Command {
	var (
		email string
		ttl   time.Duration
		env   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin bearer token signed with the configured secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if env == "" {
				env = config.GetEnv()
			}
			cfg, err := config.Load(env)
			if err != nil {
				return err
			}
			if cfg.Auth.TokenSecret == "" {
				return errors.New("auth.token_secret is not configured")
			}

			if !slices.ContainsFunc(cfg.Auth.AdminEmails, func(e string) bool {
				return strings.EqualFold(strings.TrimSpace(e), strings.TrimSpace(email))
			}) {
				return fmt.Errorf("%s is not listed in auth.admin_emails", email)
			}

			v := auth.NewVerifier(auth.Config{
				Secret:        cfg.Auth.TokenSecret,
				Issuer:        cfg.Auth.TokenIssuer,
				Audience:      cfg.Auth.TokenAudience,
				AllowedEmails: cfg.Auth.AdminEmails,
			})
			tok, err := v.Issue(email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "administrator email (must be in auth.admin_emails)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	cmd.Flags().StringVar(&env, "env", "", "config environment (default $ENV or local)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
