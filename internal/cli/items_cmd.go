package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/unload/internal/cli/formatter"
	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/intelligence"
	"github.com/alexanderramin/unload/internal/service"
	"github.com/alexanderramin/unload/internal/view"
	"github.com/spf13/cobra"
)

func newItemsCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List items",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Items.List(cmd.Context(), app.UserID, status)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatItems(items, app.now(), app.loc()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", string(domain.StatusActive), "active, parked, done, dropped or all")
	return cmd
}

func newFocusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "focus",
		Short: "Show the priority list and the bench",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Items.List(cmd.Context(), app.UserID, string(domain.StatusActive))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatFocus(view.FocusPartition(items), app.now(), app.loc()))
			return nil
		},
	}
}

func newOrganizeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "organize",
		Aliases: []string{"organizer"},
		Short:   "Show what is due today and what is upcoming",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Items.List(cmd.Context(), app.UserID, string(domain.StatusActive))
			if err != nil {
				return err
			}
			v := view.OrganizerPartition(items, app.now(), app.loc())
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOrganizer(v, app.now(), app.loc()))
			return nil
		},
	}
}

// newItemCmd groups the single-item mutations.
func newItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Change one item",
	}
	cmd.AddCommand(
		newItemActionCmd(app, domain.ActionDone, "Mark an item done"),
		newItemActionCmd(app, domain.ActionDrop, "Let an item go"),
		newItemFocusCmd(app),
		newItemParkCmd(app),
		newItemPriorityCmd(app),
		newItemDeadlineCmd(app),
		newItemDeleteCmd(app),
	)
	return cmd
}

func patchAndPrint(cmd *cobra.Command, app *App, idArg string, patch service.ItemPatch) error {
	ctx := cmd.Context()
	id, err := resolveItemID(ctx, app, app.UserID, idArg)
	if err != nil {
		return err
	}
	it, err := app.Items.Patch(ctx, app.UserID, id, patch)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatItems([]*domain.Item{it}, app.now(), app.loc()))
	return nil
}

func newItemActionCmd(app *App, action domain.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return patchAndPrint(cmd, app, args[0], service.ItemPatch{Action: &action})
		},
	}
}

func newItemFocusCmd(app *App) *cobra.Command {
	var priority string
	cmd := &cobra.Command{
		Use:   "focus <id>",
		Short: "Bring an item back to the active list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := domain.ActionFocus
			patch := service.ItemPatch{Action: &action}
			if priority != "" {
				p := domain.Priority(priority)
				patch.Priority = &p
			}
			return patchAndPrint(cmd, app, args[0], patch)
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Also set the priority")
	return cmd
}

func newItemParkCmd(app *App) *cobra.Command {
	var until string
	cmd := &cobra.Command{
		Use:   "park <id>",
		Short: "Set an item aside until a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseWhen(app, until)
			if err != nil {
				return err
			}
			action := domain.ActionPark
			return patchAndPrint(cmd, app, args[0], service.ItemPatch{Action: &action, ParkedUntil: &t})
		},
	}
	cmd.Flags().StringVar(&until, "until", string(domain.HintTomorrow), "today, tomorrow, upcoming, YYYY-MM-DD or RFC 3339")
	return cmd
}

func newItemPriorityCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "priority <id> <urgent|high|medium|low>",
		Short: "Set an item's priority",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := domain.Priority(strings.ToLower(args[1]))
			return patchAndPrint(cmd, app, args[0], service.ItemPatch{Priority: &p})
		},
	}
}

func newItemDeadlineCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deadline <id> <when|none>",
		Short: "Set or clear an item's deadline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := service.ItemPatch{DeadlineSet: true}
			if !strings.EqualFold(args[1], "none") && !strings.EqualFold(args[1], string(domain.HintSomeday)) {
				t, err := parseWhen(app, args[1])
				if err != nil {
					return err
				}
				patch.Deadline = &t
			}
			return patchAndPrint(cmd, app, args[0], patch)
		},
	}
}

func newItemDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item for good",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveItemID(ctx, app, app.UserID, args[0])
			if err != nil {
				return err
			}
			if err := app.Items.Delete(ctx, app.UserID, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render("Deleted ")+formatter.Dim(formatter.ShortID(id)))
			return nil
		},
	}
}

// parseWhen reads a date, timestamp or hint (today, tomorrow, upcoming) in
// the configured location.
func parseWhen(app *App, s string) (time.Time, error) {
	if t := intelligence.DeadlineFor(s, s, app.now(), app.loc()); t != nil {
		return *t, nil
	}
	return time.Time{}, fmt.Errorf("%w: cannot read %q as a date", domain.ErrInvalidInput, s)
}
