package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/theleywin/SkillShare/src/api"
	"github.com/theleywin/SkillShare/src/models"
	"github.com/theleywin/SkillShare/src/reconcile"
)

func (a *cliApp) loadPlans(ctx context.Context, mine bool) (*reconcile.LearningPlans, error) {
	plans := reconcile.NewLearningPlans(a.client)
	if mine {
		plans = reconcile.NewMyLearningPlans(a.client)
	}
	return plans, plans.Load(ctx)
}

func parseOptionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := models.ParsePlanDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func newPlansCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Learning plans and their tasks",
	}

	var mine bool
	list := &cobra.Command{
		Use:   "list",
		Short: "Show learning plans with their progress",
		Args:  cobra.NoArgs,
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			plans, err := app.loadPlans(cmd.Context(), mine)
			if err != nil {
				return err
			}
			printPlans(cmd.OutOrStdout(), plans.Items())
			return nil
		}),
	}
	list.Flags().BoolVar(&mine, "mine", false, "only show your own plans")

	var topic, resources, timeline, start, end string
	var tasks []string
	create := &cobra.Command{
		Use:   "create",
		Short: "Start a new learning plan",
		Args:  cobra.NoArgs,
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			req := models.LearningPlanRequest{Topic: topic, Resources: resources, Timeline: timeline}
			var err error
			if req.StartDate, err = parseOptionalDate(start); err != nil {
				return &api.ValidationError{Message: "startDate: " + err.Error()}
			}
			if req.EndDate, err = parseOptionalDate(end); err != nil {
				return &api.ValidationError{Message: "endDate: " + err.Error()}
			}
			for _, task := range tasks {
				req.Tasks = append(req.Tasks, models.TaskRequest{Description: task})
			}
			plans, err := app.loadPlans(cmd.Context(), true)
			if err != nil {
				return err
			}
			plan, err := plans.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created plan %s with %d tasks\n", plan.ID, len(plan.Tasks))
			return nil
		}),
	}
	create.Flags().StringVar(&topic, "topic", "", "what the plan is about")
	create.Flags().StringVar(&resources, "resources", "", "books, courses or links to follow")
	create.Flags().StringVar(&timeline, "timeline", "", "free form timeline, e.g. \"4 weeks\"")
	create.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	create.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	create.Flags().StringArrayVar(&tasks, "task", nil, "task description (repeatable)")

	remove := &cobra.Command{
		Use:   "delete <plan-id>",
		Short: "Delete one of your learning plans",
		Args:  cobra.ExactArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			plans, err := app.loadPlans(cmd.Context(), true)
			if err != nil {
				return err
			}
			if err := plans.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted plan %s\n", args[0])
			return nil
		}),
	}

	var extendTo string
	extend := &cobra.Command{
		Use:   "extend <plan-id>",
		Short: "Move the end date of a plan, one week out by default",
		Args:  cobra.ExactArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			plans, err := app.loadPlans(cmd.Context(), true)
			if err != nil {
				return err
			}
			plan, ok := plans.Get(args[0])
			if !ok {
				return &api.NotFoundError{Kind: "learning plan", ID: args[0]}
			}
			endDate := api.SuggestedExtension(plan, time.Now())
			if extendTo != "" {
				if endDate, err = models.ParsePlanDate(extendTo); err != nil {
					return &api.ValidationError{Message: "endDate: " + err.Error()}
				}
			}
			if err := plans.Extend(cmd.Context(), args[0], endDate); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Plan %s now ends %s\n", args[0], endDate.Format("2006-01-02"))
			return nil
		}),
	}
	extend.Flags().StringVar(&extendTo, "to", "", "new end date (YYYY-MM-DD)")

	complete := &cobra.Command{
		Use:   "complete <plan-id> <task-id>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(2),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			plans, err := app.loadPlans(cmd.Context(), true)
			if err != nil {
				return err
			}
			task, err := plans.CompleteTask(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed %q, plan is %d%% done\n", task.Description, plans.Progress(args[0]))
			return nil
		}),
	}

	cmd.AddCommand(list, create, remove, extend, complete)
	return cmd
}

func newProgressCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Progress updates",
	}

	open := func(ctx context.Context) (*reconcile.ProgressUpdates, error) {
		updates := reconcile.NewProgressUpdates(app.client, app.session)
		return updates, updates.Load(ctx)
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show progress updates",
		Args:  cobra.NoArgs,
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			updates, err := open(cmd.Context())
			if err != nil {
				return err
			}
			printProgress(cmd.OutOrStdout(), updates.Items())
			return nil
		}),
	}

	var skill, content string
	add := &cobra.Command{
		Use:   "add",
		Short: "Tell others what you learned",
		Args:  cobra.NoArgs,
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			updates, err := open(cmd.Context())
			if err != nil {
				return err
			}
			update, err := updates.Create(cmd.Context(), models.ProgressUpdateRequest{Skill: skill, Content: content})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted progress update %s\n", update.ID)
			return nil
		}),
	}
	add.Flags().StringVar(&skill, "skill", "", "skill the update is about")
	add.Flags().StringVar(&content, "content", "", "what you did")

	remove := &cobra.Command{
		Use:   "delete <update-id>",
		Short: "Delete one of your progress updates",
		Args:  cobra.ExactArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			updates, err := open(cmd.Context())
			if err != nil {
				return err
			}
			if err := updates.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted progress update %s\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}
