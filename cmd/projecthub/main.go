package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	app := &appContext{}

	rootCmd := &cobra.Command{
		Use:     "projecthub",
		Short:   "ProjectHub - project and task management from the terminal",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(loginCmd(app))
	rootCmd.AddCommand(registerCmd(app))
	rootCmd.AddCommand(logoutCmd(app))
	rootCmd.AddCommand(whoamiCmd(app))
	rootCmd.AddCommand(projectCmd(app))
	rootCmd.AddCommand(taskCmd(app))
	rootCmd.AddCommand(commentCmd(app))
	rootCmd.AddCommand(usersCmd(app))
	rootCmd.AddCommand(devserverCmd(app))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
