package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projecthub/projecthub-cli/internal/core/service"
)

func loginCmd(app *appContext) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to ProjectHub",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.location = service.LocationLogin

			result, err := app.session.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if !result.OK {
				return fmt.Errorf("%s", result.Message)
			}

			identity := app.session.Current()
			fmt.Printf("Signed in as %s (%s)\n", identity.Username, identity.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func registerCmd(app *appContext) *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a ProjectHub account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.location = service.LocationLogin

			result, err := app.session.Register(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			if !result.OK {
				return fmt.Errorf("%s", result.Message)
			}

			identity := app.session.Current()
			fmt.Printf("Account created, signed in as %s\n", identity.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (becomes the username)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func logoutCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		},
	}
}

func whoamiCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.requireAuth()
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", identity.Username, identity.Role)
			return nil
		},
	}
}
