package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/authware/authority/cmd/app/commands"
	"github.com/authware/authority/internal/app"
	"github.com/authware/authority/internal/config"
)

func getIdentityCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-membership",
			Usage: "Provision a new tenant with its admin role",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable membership name",
				},
				&cli.StringFlag{
					Name:     "slug",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "URL-safe unique identifier (e.g., 'acme-corp')",
				},
				&cli.IntFlag{
					Name:    "expires-in",
					Value:   3600,
					Usage:   "Access token lifetime in seconds",
				},
				&cli.IntFlag{
					Name:    "refresh-expires-in",
					Value:   86400,
					Usage:   "Refresh token lifetime in seconds (0 disables refresh)",
				},
				&cli.StringFlag{
					Name:  "secret-key",
					Usage: "Token signing key (omit to generate a random one)",
				},
				&cli.StringFlag{
					Name:    "algorithm",
					Aliases: []string{"alg"},
					Value:   "HS256",
					Usage:   "Token signature algorithm (HS256, HS384 or HS512)",
				},
				&cli.StringFlag{
					Name:    "encoding",
					Aliases: []string{"enc"},
					Value:   "utf8",
					Usage:   "Secret key encoding (utf8 or base64)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				membershipUseCase, err := container.MembershipUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateMembership(
					ctx,
					membershipUseCase,
					container.Logger(),
					cmd.String("name"),
					cmd.String("slug"),
					int64(cmd.Int("expires-in")),
					int64(cmd.Int("refresh-expires-in")),
					cmd.String("secret-key"),
					cmd.String("algorithm"),
					cmd.String("encoding"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "create-user",
			Usage: "Provision a user inside a membership",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "membership-id",
					Aliases:  []string{"m"},
					Required: true,
					Usage:    "Membership ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Login username, unique within the membership",
				},
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "User email address",
				},
				&cli.StringFlag{
					Name:     "password",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Plain password (hashed before storage)",
				},
				&cli.StringFlag{
					Name:  "first-name",
					Usage: "User first name",
				},
				&cli.StringFlag{
					Name:  "last-name",
					Usage: "User last name",
				},
				&cli.StringFlag{
					Name:     "role",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Role name the user assumes (must exist in the membership)",
				},
				&cli.BoolFlag{
					Name:    "active",
					Aliases: []string{"a"},
					Value:   true,
					Usage:   "Whether the user can authenticate immediately",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				userUseCase, err := container.UserUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateUser(
					ctx,
					userUseCase,
					container.Logger(),
					cmd.String("membership-id"),
					cmd.String("username"),
					cmd.String("email"),
					cmd.String("password"),
					cmd.String("first-name"),
					cmd.String("last-name"),
					cmd.String("role"),
					cmd.Bool("active"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "create-application",
			Usage: "Register a machine principal inside a membership",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "membership-id",
					Aliases:  []string{"m"},
					Required: true,
					Usage:    "Membership ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable application name",
				},
				&cli.StringFlag{
					Name:     "role",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Role name the application assumes (must exist in the membership)",
				},
				&cli.BoolFlag{
					Name:    "active",
					Aliases: []string{"a"},
					Value:   true,
					Usage:   "Whether the application can authenticate immediately",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				applicationUseCase, err := container.ApplicationUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateApplication(
					ctx,
					applicationUseCase,
					container.Logger(),
					cmd.String("membership-id"),
					cmd.String("name"),
					cmd.String("role"),
					cmd.Bool("active"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "create-role",
			Usage: "Create a role with permission expressions",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "membership-id",
					Aliases:  []string{"m"},
					Required: true,
					Usage:    "Membership ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Role name, unique within the membership",
				},
				&cli.StringFlag{
					Name:    "description",
					Aliases: []string{"d"},
					Usage:   "Human-readable role description",
				},
				&cli.StringFlag{
					Name:    "permissions",
					Aliases: []string{"p"},
					Usage:   "Comma-separated permission expressions (omit for interactive mode)",
				},
				&cli.StringFlag{
					Name:  "forbidden",
					Usage: "Comma-separated deny expressions",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				roleUseCase, err := container.RoleUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateRole(
					ctx,
					roleUseCase,
					container.Logger(),
					cmd.String("membership-id"),
					cmd.String("name"),
					cmd.String("description"),
					cmd.String("permissions"),
					cmd.String("forbidden"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
	}
}
