package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
)

func taskCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(taskListCmd(app))
	cmd.AddCommand(taskShowCmd(app))
	cmd.AddCommand(taskCreateCmd(app))
	cmd.AddCommand(taskUpdateCmd(app))
	cmd.AddCommand(taskDeleteCmd(app))
	return cmd
}

// taskProject loads the project a task belongs to, tolerating orphan tasks.
func taskProject(app *appContext, cmd *cobra.Command, task *domain.Task) *domain.Project {
	if task.ProjectID == "" {
		return nil
	}
	project, err := app.client.GetProject(cmd.Context(), task.ProjectID)
	if err != nil {
		return nil
	}
	return project
}

func taskListCmd(app *appContext) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally for one project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAuth(); err != nil {
				return err
			}

			var tasks []domain.Task
			var err error
			if projectID != "" {
				tasks, err = app.client.ListProjectTasks(cmd.Context(), projectID)
			} else {
				tasks, err = app.client.ListTasks(cmd.Context())
			}
			if err != nil {
				return err
			}

			for _, t := range tasks {
				assignee := t.Assignee
				if assignee == "" {
					assignee = "-"
				}
				fmt.Printf("%s  %-12s  %-6s  %-10s  %s\n", t.ID, t.Status, t.Priority, assignee, t.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectID, "project", "P", "", "Limit to one project")
	return cmd
}

func taskShowCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one task with your capabilities on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.requireAuth()
			if err != nil {
				return err
			}
			task, err := app.client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			caps := domain.EvaluateTaskPermissions(identity, taskProject(app, cmd, task), task)
			fmt.Printf("%s [%s, %s priority]\n", task.Title, task.Status, task.Priority)
			if task.Description != "" {
				fmt.Println(task.Description)
			}
			if task.Assignee != "" {
				fmt.Printf("Assignee: %s\n", task.Assignee)
			}
			if task.DueDate != "" {
				fmt.Printf("Due: %s\n", task.DueDate)
			}
			fmt.Printf("You can: edit=%v delete=%v\n", caps.CanEditTask, caps.CanDeleteTask)
			return nil
		},
	}
}

func taskCreateCmd(app *appContext) *cobra.Command {
	var description, priority, status, dueDate, projectID, assignee string

	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.requireAuth()
			if err != nil {
				return err
			}

			if projectID != "" {
				project, err := app.client.GetProject(cmd.Context(), projectID)
				if err != nil {
					return err
				}
				if !domain.EvaluateTaskPermissions(identity, project, nil).CanCreateTask {
					return fmt.Errorf("you are not an owner or member of this project")
				}
			}

			task := &domain.Task{
				Title:       args[0],
				Description: description,
				Status:      domain.TaskStatus(status),
				Priority:    domain.TaskPriority(priority),
				DueDate:     dueDate,
				ProjectID:   projectID,
				Assignee:    assignee,
			}
			created, err := app.client.CreateTask(cmd.Context(), task)
			if err != nil {
				return err
			}
			fmt.Printf("Created task %s (%s)\n", created.Title, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&priority, "priority", "medium", "Priority (low|medium|high)")
	cmd.Flags().StringVarP(&status, "status", "s", "pending", "Status (pending|in_progress|completed)")
	cmd.Flags().StringVar(&dueDate, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&projectID, "project", "P", "", "Project the task belongs to")
	cmd.Flags().StringVarP(&assignee, "assignee", "a", "", "Assignee username")
	return cmd
}

func taskUpdateCmd(app *appContext) *cobra.Command {
	var title, description, priority, status, dueDate, assignee string

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.requireAuth()
			if err != nil {
				return err
			}
			task, err := app.client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			caps := domain.EvaluateTaskPermissions(identity, taskProject(app, cmd, task), task)
			if !caps.CanEditTask {
				return fmt.Errorf("only admins, project owners, or the assignee can edit this task")
			}

			if title != "" {
				task.Title = title
			}
			if description != "" {
				task.Description = description
			}
			if status != "" {
				if !domain.ValidTaskStatus(domain.TaskStatus(status)) {
					return fmt.Errorf("invalid status %q", status)
				}
				task.Status = domain.TaskStatus(status)
			}
			if priority != "" {
				if !domain.ValidTaskPriority(domain.TaskPriority(priority)) {
					return fmt.Errorf("invalid priority %q", priority)
				}
				task.Priority = domain.TaskPriority(priority)
			}
			if dueDate != "" {
				task.DueDate = dueDate
			}
			if cmd.Flags().Changed("assignee") {
				task.Assignee = assignee
			}

			updated, err := app.client.UpdateTask(cmd.Context(), task)
			if err != nil {
				return err
			}
			fmt.Printf("Updated task %s\n", updated.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status")
	cmd.Flags().StringVar(&dueDate, "due", "", "New due date")
	cmd.Flags().StringVarP(&assignee, "assignee", "a", "", "New assignee (empty to unassign)")
	return cmd
}

func taskDeleteCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.requireAuth()
			if err != nil {
				return err
			}
			task, err := app.client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			caps := domain.EvaluateTaskPermissions(identity, taskProject(app, cmd, task), task)
			if !caps.CanDeleteTask {
				return fmt.Errorf("only admins or project owners can delete a task")
			}
			if err := app.client.DeleteTask(cmd.Context(), task.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted task %s\n", task.ID)
			return nil
		},
	}
}
