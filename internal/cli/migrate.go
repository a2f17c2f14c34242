package cli

import (
	"fmt"
	"strconv"

	"github.com/Ogyrecheg/yatube/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, func(m *database.Migrator) error {
					v, err := m.Up()
					if err != nil {
						return err
					}
					okColor.Fprintf(cmd.OutOrStdout(), "✅ Database at version %d\n", v)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1 step)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n < 1 {
						return fmt.Errorf("steps must be a positive integer, got %q", args[0])
					}
					steps = n
				}
				return withMigrator(cmd, func(m *database.Migrator) error {
					v, err := m.Down(steps)
					if err != nil {
						return err
					}
					warnColor.Fprintf(cmd.OutOrStdout(), "Rolled back %d step(s), now at version %d\n", steps, v)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, func(m *database.Migrator) error {
					v, dirty, err := m.Version()
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					if dirty {
						warnColor.Fprintf(out, "version %d (dirty)\n", v)
						return nil
					}
					fmt.Fprintf(out, "version %d\n", v)
					return nil
				})
			},
		},
	)
	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(m *database.Migrator) error) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	m, err := database.NewMigrator(e.cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			e.logger.Error("failed to close migrator", cerr)
		}
	}()
	return fn(m)
}
