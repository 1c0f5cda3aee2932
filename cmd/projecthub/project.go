package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
)

func projectCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(projectListCmd(app))
	cmd.AddCommand(projectShowCmd(app))
	cmd.AddCommand(projectCreateCmd(app))
	cmd.AddCommand(projectUpdateCmd(app))
	cmd.AddCommand(projectDeleteCmd(app))
	cmd.AddCommand(projectMembersCmd(app))
	return cmd
}

func projectListCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAuth(); err != nil {
				return err
			}
			projects, err := app.client.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range projects {
				fmt.Printf("%s  %-10s  %s\n", p.ID, p.Status, p.Name)
			}
			return nil
		},
	}
}

func projectShowCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one project with your capabilities on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.requireAuth()
			if err != nil {
				return err
			}
			project, err := app.client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			caps := domain.EvaluateProjectPermissions(identity, project)
			fmt.Printf("%s (%s)\n", project.Name, project.Status)
			if project.Description != "" {
				fmt.Println(project.Description)
			}
			fmt.Printf("Owners:  %s\n", strings.Join(project.Owners, ", "))
			fmt.Printf("Members: %s\n", strings.Join(project.Members, ", "))
			fmt.Printf("You can: edit=%v delete=%v manage-members=%v\n",
				caps.CanEditProject, caps.CanDeleteProject, caps.CanManageMembers)
			return nil
		},
	}
}

func projectCreateCmd(app *appContext) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAuth(); err != nil {
				return err
			}
			project, err := app.client.CreateProject(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			fmt.Printf("Created project %s (%s)\n", project.Name, project.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Project description")
	return cmd
}

func projectUpdateCmd(app *appContext) *cobra.Command {
	var name, description, status string

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.requireAuth()
			if err != nil {
				return err
			}
			project, err := app.client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !domain.EvaluateProjectPermissions(identity, project).CanEditProject {
				return fmt.Errorf("only project owners or admins can edit a project")
			}

			if name != "" {
				project.Name = name
			}
			if description != "" {
				project.Description = description
			}
			if status != "" {
				if !domain.ValidProjectStatus(domain.ProjectStatus(status)) {
					return fmt.Errorf("invalid status %q", status)
				}
				project.Status = domain.ProjectStatus(status)
			}

			updated, err := app.client.UpdateProject(cmd.Context(), project)
			if err != nil {
				return err
			}
			fmt.Printf("Updated project %s\n", updated.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status (planning|active|completed|on_hold)")
	return cmd
}

func projectDeleteCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.requireAuth()
			if err != nil {
				return err
			}
			project, err := app.client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !domain.EvaluateProjectPermissions(identity, project).CanDeleteProject {
				return fmt.Errorf("only project owners or admins can delete a project")
			}
			if err := app.client.DeleteProject(cmd.Context(), project.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted project %s\n", project.ID)
			return nil
		},
	}
}

func projectMembersCmd(app *appContext) *cobra.Command {
	var owners, members []string

	cmd := &cobra.Command{
		Use:   "members [id]",
		Short: "Replace a project's owner and member sets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.requireAuth()
			if err != nil {
				return err
			}
			project, err := app.client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !domain.EvaluateProjectPermissions(identity, project).CanManageMembers {
				return fmt.Errorf("only project owners or admins can manage members")
			}

			updated, err := app.client.UpdateMembers(cmd.Context(), project.ID, owners, members)
			if err != nil {
				return err
			}
			fmt.Printf("Owners:  %s\n", strings.Join(updated.Owners, ", "))
			fmt.Printf("Members: %s\n", strings.Join(updated.Members, ", "))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&owners, "owners", nil, "Owner usernames")
	cmd.Flags().StringSliceVar(&members, "members", nil, "Member usernames")
	return cmd
}
