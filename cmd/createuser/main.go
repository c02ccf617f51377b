// Package main is an offline user-creation tool. Registration over HTTP
// closes after the first user, so an operator who loses access to every
// admin account (or wants to seed users in a script) needs a path that
// talks to the database directly.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/time-tracker/internal/auth"
	sqliteRepo "github.com/sakif/time-tracker/internal/repository/sqlite"
	"github.com/sakif/time-tracker/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		username string
		password string
		isAdmin  bool
		dbPath   string
	)

	cmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create a time tracker user directly in the database",
		Long: `Create a user without going through the HTTP API.

Registration over HTTP only works for the very first user; every later
account is normally created by an admin in the web UI. This command is
the escape hatch for scripts and locked-out deployments. The server
does not need to be stopped — SQLite in WAL mode handles the
concurrent write.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := sqliteRepo.New(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}))

			users := service.NewUserService(db, auth.NewPasswordService(), logger)
			user, err := users.Create(context.Background(), username, password, isAdmin)
			if err != nil {
				return err
			}

			role := "user"
			if user.IsAdmin {
				role = "admin"
			}
			fmt.Printf("Created %s %q (id %s)\n", role, user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (3-31 chars, letters/digits/underscore)")
	cmd.Flags().StringVar(&password, "password", "", "Password (6-72 chars)")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "Grant the admin flag")
	cmd.Flags().StringVar(&dbPath, "db", "data/timetracker.db", "Path to the SQLite database")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")

	return cmd
}
