package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/groow/smoke/internal/config"
	"github.com/groow/smoke/internal/service/runs"
	"github.com/groow/smoke/pkg/clients/marketplace"
)

const tokenPreview = 12

func newLoginCmd(a *app) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check that a role's credentials produce a bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, _, result, err := a.session(cmd.Context(), role)
			if err != nil {
				return err
			}

			token := result.AccessToken
			if len(token) > tokenPreview {
				token = token[:tokenPreview] + "..."
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: authenticated (token %s, refresh token %t)\n", r, token, result.RefreshToken != "")
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(config.RoleAdmin), "account to log in as (admin, vendor, customer)")
	return cmd
}

// session logs in as role on a fresh client that keeps the bearer token for
// the calls that follow.
func (a *app) session(ctx context.Context, role string) (config.Role, *marketplace.Client, marketplace.LoginResult, error) {
	r := config.Role(strings.ToLower(role))
	account, ok := a.cfg.Credentials.Account(r)
	if !ok {
		return r, nil, marketplace.LoginResult{}, fmt.Errorf("%w: %q", runs.ErrNoCredentials, role)
	}

	client := a.newAPI(a.cfg.API.Retries)
	result, err := client.Login(ctx, account.Email, account.Password)
	if err != nil {
		return r, nil, result, fmt.Errorf("login as %s (HTTP %d): %w", r, result.StatusCode, err)
	}
	return r, client, result, nil
}
