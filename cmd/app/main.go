// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/identity/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "identity",
		Usage:   "Multi-tenant identity service: token lifecycle and permission evaluation",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the event dispatcher and metrics server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServe(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "issue-token",
				Usage: "Authenticate a user and issue an access/refresh token pair",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "Username or email address",
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "User password",
					},
					&cli.StringFlag{
						Name:     "membership",
						Aliases:  []string{"m"},
						Required: true,
						Usage:    "Membership ID",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunIssueToken(
						ctx,
						cmd.String("user"),
						cmd.String("password"),
						cmd.String("membership"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "verify-token",
				Usage: "Verify a token and print its owner and remaining lifetime",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Raw signed token",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunVerifyToken(
						ctx,
						cmd.String("token"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "refresh-token",
				Usage: "Exchange a refresh token for a new token pair",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Raw signed refresh token",
					},
					&cli.BoolFlag{
						Name:    "revoke-before",
						Aliases: []string{"r"},
						Value:   false,
						Usage:   "Revoke the presented token as part of the exchange",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRefreshToken(
						ctx,
						cmd.String("token"),
						cmd.Bool("revoke-before"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "revoke-token",
				Usage: "Permanently invalidate a token and its sibling refresh token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Raw signed token",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRevokeToken(ctx, cmd.String("token"), commands.DefaultIO())
				},
			},
			{
				Name:  "check-permission",
				Usage: "Evaluate a subject.resource.action[.object] permission for a user",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "Username or email address",
					},
					&cli.StringFlag{
						Name:     "membership",
						Aliases:  []string{"m"},
						Required: true,
						Usage:    "Membership ID",
					},
					&cli.StringFlag{
						Name:     "permission",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Required permission (e.g. 'users.orders.read')",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCheckPermission(
						ctx,
						cmd.String("user"),
						cmd.String("membership"),
						cmd.String("permission"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "create-membership",
				Usage: "Create a new membership (tenant)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Membership name",
					},
					&cli.StringFlag{
						Name:     "slug",
						Aliases:  []string{"s"},
						Required: true,
						Usage:    "Membership slug (unique)",
					},
					&cli.StringFlag{
						Name:  "secret-key",
						Usage: "Token signing secret (generated when empty)",
					},
					&cli.StringFlag{
						Name:  "hash-algorithm",
						Value: "sha512",
						Usage: "Password hash algorithm: sha256, sha512, sha1, md5, bcrypt, argon2id",
					},
					&cli.StringFlag{
						Name:  "encoding",
						Value: "hex",
						Usage: "Digest encoding: 'hex' or 'base64'",
					},
					&cli.DurationFlag{
						Name:  "token-lifetime",
						Usage: "Access token lifetime (configured default when zero)",
					},
					&cli.DurationFlag{
						Name:  "refresh-token-lifetime",
						Usage: "Refresh token lifetime (configured default when zero)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateMembership(
						ctx,
						cmd.String("name"),
						cmd.String("slug"),
						cmd.String("secret-key"),
						cmd.String("hash-algorithm"),
						cmd.String("encoding"),
						cmd.Duration("token-lifetime"),
						cmd.Duration("refresh-token-lifetime"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "create-role",
				Usage: "Create a new role within a membership",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "membership",
						Aliases:  []string{"m"},
						Required: true,
						Usage:    "Membership ID",
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Role name",
					},
					&cli.StringFlag{
						Name:     "slug",
						Aliases:  []string{"s"},
						Required: true,
						Usage:    "Role slug (unique within the membership)",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Role description",
					},
					&cli.StringSliceFlag{
						Name:    "permission",
						Aliases: []string{"p"},
						Usage:   "Permit statement (repeatable, e.g. 'users.orders.read')",
					},
					&cli.StringSliceFlag{
						Name:  "forbidden",
						Usage: "Forbid statement (repeatable)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateRole(
						ctx,
						cmd.String("membership"),
						cmd.String("name"),
						cmd.String("slug"),
						cmd.String("description"),
						cmd.StringSlice("permission"),
						cmd.StringSlice("forbidden"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "create-user",
				Usage: "Create a new user within a membership",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "membership",
						Aliases:  []string{"m"},
						Required: true,
						Usage:    "Membership ID",
					},
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "Username (unique within the membership)",
					},
					&cli.StringFlag{
						Name:  "email",
						Usage: "Email address",
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "User password",
					},
					&cli.StringFlag{
						Name:  "role",
						Usage: "Role slug to assign",
					},
					&cli.StringFlag{
						Name:  "firstname",
						Usage: "First name",
					},
					&cli.StringFlag{
						Name:  "lastname",
						Usage: "Last name",
					},
					&cli.StringSliceFlag{
						Name:  "permission",
						Usage: "User-level permit statement (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "forbidden",
						Usage: "User-level forbid statement (repeatable)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateUser(
						ctx,
						cmd.String("membership"),
						cmd.String("username"),
						cmd.String("email"),
						cmd.String("password"),
						cmd.String("role"),
						cmd.String("firstname"),
						cmd.String("lastname"),
						cmd.StringSlice("permission"),
						cmd.StringSlice("forbidden"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "list-events",
				Usage: "List recent token lifecycle events for a membership",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "membership",
						Aliases:  []string{"m"},
						Required: true,
						Usage:    "Membership ID",
					},
					&cli.IntFlag{
						Name:  "offset",
						Value: 0,
						Usage: "Number of events to skip",
					},
					&cli.IntFlag{
						Name:  "limit",
						Value: 50,
						Usage: "Maximum number of events to return",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunListEvents(
						ctx,
						cmd.String("membership"),
						int(cmd.Int("offset")),
						int(cmd.Int("limit")),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "prune-revoked-tokens",
				Usage: "Delete revocation records older than the retention window",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:     "older-than",
						Required: true,
						Usage:    "Retention window (e.g. '720h')",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunPruneRevokedTokens(
						ctx,
						cmd.Duration("older-than"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "membership-usage",
				Usage: "Aggregate per-tenant resource counts",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "membership",
						Aliases:  []string{"m"},
						Required: true,
						Usage:    "Membership ID",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMembershipUsage(
						ctx,
						cmd.String("membership"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
