package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Ogyrecheg/yatube/internal/models"
	"github.com/Ogyrecheg/yatube/internal/repository"
	"github.com/Ogyrecheg/yatube/internal/security"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newGroupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage communities posts can belong to",
	}
	cmd.AddCommand(newGroupCreateCmd(), newGroupDeleteCmd(), newGroupListCmd())
	return cmd
}

func newGroupCreateCmd() *cobra.Command {
	var g models.Group

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := security.NewValidationService(security.DefaultSecurityConfig())
			g.Title = v.SanitizeString(g.Title)
			g.Description = v.SanitizeString(g.Description)
			if err := v.ValidateGroupTitle(g.Title); err != nil {
				return err
			}
			if err := v.ValidateSlug(g.Slug); err != nil {
				return err
			}

			return withDB(cmd, func(ctx context.Context, e *env) error {
				err := repository.NewGroupRepository().Create(ctx, &g)
				if errors.Is(err, repository.ErrSlugTaken) {
					return fmt.Errorf("a group with slug %q already exists", g.Slug)
				}
				if err != nil {
					return err
				}

				recordAudit(ctx, e, repository.ActionCreateGroup, "group", g.ID)
				e.logger.SecurityEvent(security.EventGroupCreate, nil, "cli", "", "",
					map[string]interface{}{"group_id": g.ID, "slug": g.Slug})
				okColor.Fprintf(cmd.OutOrStdout(), "✅ Created group %s at /group/%s/\n", g.Title, g.Slug)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&g.Title, "title", "t", "", "group title (required)")
	f.StringVarP(&g.Slug, "slug", "s", "", "URL slug (required)")
	f.StringVarP(&g.Description, "description", "d", "", "description")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("slug")
	return cmd
}

func newGroupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a group; its posts stay without a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := args[0]
			return withDB(cmd, func(ctx context.Context, e *env) error {
				groups := repository.NewGroupRepository()
				g, err := groups.FindBySlug(ctx, slug)
				if errors.Is(err, repository.ErrGroupNotFound) {
					return fmt.Errorf("no group with slug %q", slug)
				}
				if err != nil {
					return err
				}
				if err := groups.Delete(ctx, slug); err != nil {
					return err
				}

				recordAudit(ctx, e, repository.ActionDeleteGroup, "group", g.ID)
				e.logger.SecurityEvent(security.EventGroupDelete, nil, "cli", "", "",
					map[string]interface{}{"group_id": g.ID, "slug": slug})
				warnColor.Fprintf(cmd.OutOrStdout(), "Deleted group %s\n", slug)
				return nil
			})
		},
	}
}

func newGroupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, e *env) error {
				groups, err := repository.NewGroupRepository().ListAll(ctx)
				if err != nil {
					return err
				}

				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.SetHeader([]string{"ID", "Title", "Slug", "Description"})
				table.SetAutoWrapText(false)
				for _, g := range groups {
					table.Append([]string{strconv.Itoa(g.ID), g.Title, g.Slug, models.Truncate(g.Description, 40)})
				}
				table.Render()
				return nil
			})
		},
	}
}
