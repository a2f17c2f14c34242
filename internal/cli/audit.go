package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Ogyrecheg/yatube/internal/repository"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit trail",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "Show the most recent audit entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			return withDB(cmd, func(ctx context.Context, e *env) error {
				entries, err := repository.NewAuditRepository().ListRecent(ctx, limit)
				if err != nil {
					return err
				}

				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.SetHeader([]string{"ID", "When", "Actor", "Action", "Object", "IP"})
				table.SetAutoWrapText(false)
				for _, a := range entries {
					actor := "cli"
					if a.ActorID != nil {
						actor = strconv.Itoa(*a.ActorID)
					}
					object := a.ObjectType
					if a.ObjectID != nil {
						object += " #" + strconv.Itoa(*a.ObjectID)
					}
					table.Append([]string{
						strconv.Itoa(a.ID),
						a.CreatedAt.Format("2006-01-02 15:04:05"),
						actor,
						a.Action,
						object,
						a.IPAddress,
					})
				}
				table.Render()
				return nil
			})
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")

	cmd.AddCommand(list)
	return cmd
}
