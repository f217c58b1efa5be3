package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/pao-metrics/internal/auth"
	"github.com/spec-kit/pao-metrics/internal/domain"
	"github.com/spec-kit/pao-metrics/internal/repository"
)

var errNoDatabase = errors.New("POSTGRES_DSN is missing or a placeholder")

// backend is what the admin commands operate on.
type backend struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	migrate  func(ctx context.Context) error
	close    func()
}

type opener func(ctx context.Context) (*backend, error)

func newRootCmd(open opener, bcryptCost int) *cobra.Command {
	root := &cobra.Command{
		Use:           "pao-admin",
		Short:         "Operator tasks for the PAO metrics service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newMigrateCmd(open), newAddUserCmd(open, bcryptCost), newSetRoleCmd(open))
	return root
}

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQL schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				if err := b.migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func newAddUserCmd(open opener, bcryptCost int) *cobra.Command {
	var email, password, role, team string
	cmd := &cobra.Command{
		Use:   "add-user",
		Short: "Create an account with a profile",
		Long: `Create an account and its profile.

The role defaults to staff. --team creates the team when it does not exist.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := parseRole(role)
			if err != nil {
				return err
			}
			if strings.TrimSpace(email) == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			if err := auth.CheckPasswordPolicy(password); err != nil {
				return err
			}
			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				hash, err := auth.HashPassword(password, bcryptCost)
				if err != nil {
					return err
				}
				teamID, err := ensureTeam(ctx, b, team)
				if err != nil {
					return err
				}
				user := &domain.User{Email: domain.NormalizeEmail(email), PasswordHash: hash}
				if err := b.users.CreateWithProfile(ctx, user, r, teamID); err != nil {
					if repository.IsUniqueViolation(err) {
						return fmt.Errorf("user %s already exists", user.Email)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) role=%s%s\n", user.Email, user.ID, r, teamSuffix(team))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleStaff), "chief or staff")
	cmd.Flags().StringVar(&team, "team", "", "team name")
	return cmd
}

func newSetRoleCmd(open opener) *cobra.Command {
	var email, role, team string
	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Change a user's role and optionally their team",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := parseRole(role)
			if err != nil {
				return err
			}
			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				user, err := b.users.GetByEmail(ctx, domain.NormalizeEmail(email))
				if err != nil {
					if repository.IsNoRows(err) {
						return fmt.Errorf("no user with email %s", email)
					}
					return err
				}

				var teamID *int64
				if cmd.Flags().Changed("team") {
					if teamID, err = ensureTeam(ctx, b, team); err != nil {
						return err
					}
				} else if row, err := b.profiles.GetProfile(ctx, user.ID); err == nil && row != nil {
					teamID = row.TeamID
				} else if err != nil && !repository.IsNoRows(err) {
					return err
				}

				if err := b.profiles.Assign(ctx, user.ID, string(r), teamID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s role=%s\n", user.Email, r)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&role, "role", "", "chief or staff")
	cmd.Flags().StringVar(&team, "team", "", "team name; empty removes the team")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func withBackend(cmd *cobra.Command, open opener, fn func(context.Context, *backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := open(ctx)
	if err != nil {
		return err
	}
	if b.close != nil {
		defer b.close()
	}
	return fn(ctx, b)
}

// parseRole is strict: unlike stored values, operator input must name a known role.
func parseRole(raw string) (domain.Role, error) {
	r := domain.Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q (want chief or staff)", raw)
	}
	return r, nil
}

func ensureTeam(ctx context.Context, b *backend, name string) (*int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	id, err := b.profiles.EnsureTeam(ctx, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func teamSuffix(team string) string {
	if strings.TrimSpace(team) == "" {
		return ""
	}
	return " team=" + strings.TrimSpace(team)
}
