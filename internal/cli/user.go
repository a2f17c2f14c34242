package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Ogyrecheg/yatube/internal/models"
	"github.com/Ogyrecheg/yatube/internal/repository"
	"github.com/Ogyrecheg/yatube/internal/security"
	"github.com/Ogyrecheg/yatube/internal/services"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// passwordEnv lets scripts pass the password without putting it on the command line.
const passwordEnv = "YATUBE_USER_PASSWORD"

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCmd(), newUserListCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var u models.User
	var password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}

			secCfg := security.DefaultSecurityConfig()
			v := security.NewValidationService(secCfg)
			if err := v.ValidateUsername(u.Username); err != nil {
				return err
			}
			if err := v.ValidateEmail(u.Email); err != nil {
				return err
			}
			if err := v.ValidatePassword(password); err != nil {
				return err
			}
			u.FirstName = v.SanitizeString(u.FirstName)
			u.LastName = v.SanitizeString(u.LastName)

			return withDB(cmd, func(ctx context.Context, e *env) error {
				auth := services.NewAuthService(secCfg.BcryptCost)
				err := auth.Register(ctx, &u, password)
				if errors.Is(err, repository.ErrUsernameTaken) {
					return fmt.Errorf("user %q already exists", u.Username)
				}
				if err != nil {
					return err
				}

				recordAudit(ctx, e, repository.ActionCreateUser, "user", u.ID)
				e.logger.SecurityEvent(security.EventUserCreate, nil, "cli", "", "",
					map[string]interface{}{"user_id": u.ID, "username": u.Username})
				okColor.Fprintf(cmd.OutOrStdout(), "✅ Created user %s (id %d)\n", u.Username, u.ID)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&u.Username, "username", "u", "", "username (required)")
	f.StringVar(&u.Email, "email", "", "email address")
	f.StringVar(&u.FirstName, "first-name", "", "first name")
	f.StringVar(&u.LastName, "last-name", "", "last name")
	f.StringVarP(&password, "password", "p", "", "password (or set "+passwordEnv+")")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, e *env) error {
				users, err := repository.NewUserRepository().List(ctx)
				if err != nil {
					return err
				}

				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.SetHeader([]string{"ID", "Username", "Name", "Email", "Joined"})
				table.SetAutoWrapText(false)
				for _, u := range users {
					table.Append([]string{
						strconv.Itoa(u.ID),
						u.Username,
						u.FullName(),
						u.Email,
						u.CreatedAt.Format("2006-01-02"),
					})
				}
				table.Render()
				return nil
			})
		},
	}
}

// recordAudit writes an audit row for a CLI action. CLI actions have no actor.
func recordAudit(ctx context.Context, e *env, action, objectType string, objectID int) {
	err := repository.NewAuditRepository().Log(ctx, &models.AuditLog{
		Action:     action,
		ObjectType: objectType,
		ObjectID:   &objectID,
		UserAgent:  "yatube-cli",
	})
	if err != nil {
		e.logger.Error("failed to write audit log", err)
	}
}
