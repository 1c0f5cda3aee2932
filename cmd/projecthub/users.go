package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func usersCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List known users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAuth(); err != nil {
				return err
			}
			users, err := app.client.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			for _, u := range users {
				fmt.Printf("%-20s  %s\n", u.Username, u.Role)
			}
			return nil
		},
	}
}
