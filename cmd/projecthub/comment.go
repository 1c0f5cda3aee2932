package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func commentCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Read and write task comments",
	}
	cmd.AddCommand(commentListCmd(app))
	cmd.AddCommand(commentAddCmd(app))
	return cmd
}

func commentListCmd(app *appContext) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "list [task-id]",
		Short: "List a task's comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAuth(); err != nil {
				return err
			}
			comments, err := app.client.ListComments(cmd.Context(), projectID, args[0])
			if err != nil {
				return err
			}
			for _, c := range comments {
				fmt.Printf("[%s] %s: %s\n", c.CreatedAt.Format("2006-01-02 15:04"), c.Author, c.Content)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectID, "project", "P", "", "Project the task belongs to")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func commentAddCmd(app *appContext) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "add [task-id] [content]",
		Short: "Add a comment to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.requireAuth()
			if err != nil {
				return err
			}
			comment, err := app.client.AddComment(cmd.Context(), projectID, args[0], args[1], identity.Username)
			if err != nil {
				return err
			}
			fmt.Printf("Added comment %s\n", comment.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectID, "project", "P", "", "Project the task belongs to")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
