// file: cmd/users.go
// version: 1.0.0
// guid: 83905dc7-54a6-4a14-b649-e12597932f15

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/jdfalk/portal-server/internal/config"
	"github.com/jdfalk/portal-server/internal/database"
	"github.com/jdfalk/portal-server/internal/server"
	"github.com/spf13/cobra"
)

const maxColumnWidth = 28

var (
	usersCmd = &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage the user registry",
	}

	usersListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered users, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList(cmd.OutOrStdout(), config.AppConfig)
		},
	}

	usersAddCmd = &cobra.Command{
		Use:   "add <email>",
		Short: "Register a user, or show the existing one for that email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			fullName, _ := cmd.Flags().GetString("full-name")
			phone, _ := cmd.Flags().GetString("phone")
			return runUsersAdd(cmd.OutOrStdout(), config.AppConfig, server.UserRequest{
				Email:    args[0],
				Username: username,
				FullName: fullName,
				Phone:    phone,
			})
		},
	}
)

func init() {
	usersAddCmd.Flags().String("username", "", "username (defaults to the full name)")
	usersAddCmd.Flags().String("full-name", "", "full name (defaults to the username)")
	usersAddCmd.Flags().String("phone", "", "phone number")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersAddCmd)
}

func openStore(cfg config.Config) (database.Store, error) {
	store, err := database.NewStore(cfg.DatabaseType, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func runUsersList(out io.Writer, cfg config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := server.NewUserService(store).List(context.Background())
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Fprintln(out, "No users registered.")
		return nil
	}
	fmt.Fprintf(out, "%-6s %-31s %-31s %s\n", "ID", "EMAIL", "USERNAME", "CREATED")
	for _, u := range users {
		fmt.Fprintf(out, "%-6d %-31s %-31s %s\n",
			u.ID,
			truncateString(u.Email, maxColumnWidth),
			truncateString(u.Username, maxColumnWidth),
			u.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(out, "%d user(s)\n", len(users))
	return nil
}

func runUsersAdd(out io.Writer, cfg config.Config, req server.UserRequest) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	user, created, err := server.NewUserService(store).GetOrCreate(context.Background(), req)
	if err != nil {
		return err
	}

	verb := "Already registered"
	if created {
		verb = "Created"
	}
	fmt.Fprintf(out, "%s user %d: %s (%s)\n", verb, user.ID, user.Email, user.Username)
	return nil
}

func truncateString(in string, max int) string {
	if len(in) <= max {
		return in
	}
	return in[:max] + "..."
}
