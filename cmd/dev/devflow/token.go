package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"campusreserve/pkg/config"
	"campusreserve/pkg/token"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a session token signed with AUTH_JWT_SECRET",
		RunE:  runToken,
	}
	cmd.Flags().String("sub", "", "Subject (user id)")
	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().StringSlice("role", []string{"requester"}, "Role claim, repeatable (requester, manager)")
	cmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
	cmd.Flags().String("secret", "", "Signing secret (defaults to AUTH_JWT_SECRET)")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}

func runToken(cmd *cobra.Command, _ []string) error {
	sub, _ := cmd.Flags().GetString("sub")
	name, _ := cmd.Flags().GetString("name")
	roles, _ := cmd.Flags().GetStringSlice("role")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	secret, _ := cmd.Flags().GetString("secret")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if secret == "" {
		secret = cfg.Auth.JWTSecret
	}
	if secret == "" {
		return errors.New("missing --secret (or AUTH_JWT_SECRET in env/.env)")
	}

	tok, err := token.Issue(secret, cfg.Auth.Issuer, cfg.Auth.Audience, sub, name, roles, time.Now(), ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
	return err
}
