package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projecthub/projecthub-cli/internal/infrastructure/devserver"
)

func devserverCmd(app *appContext) *cobra.Command {
	var port, dbPath string

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local ProjectHub backend for development",
		Long: `Runs a self-contained ProjectHub backend on an embedded SQLite database.
Point the client at it with PROJECTHUB_API_URL=http://localhost:<port>.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = app.cfg.DevServer.Port
			}
			if dbPath == "" {
				dbPath = app.cfg.DevServer.DBPath
			}

			store, err := devserver.OpenStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			e := devserver.New(store, app.cfg.DevServer.JWTSecret, app.log)
			app.log.Info().Str("port", port).Str("db", dbPath).Msg("devserver listening")
			return e.Start(fmt.Sprintf(":%s", port))
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (default from PROJECTHUB_DEV_PORT)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default in-memory)")
	return cmd
}
