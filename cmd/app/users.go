package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tradelink/internal/middleware"
	"tradelink/internal/repository"
	"tradelink/internal/service"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage dashboard users",
	}
	cmd.AddCommand(newUsersCreateCmd())
	return cmd
}

func newUsersCreateCmd() *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user (or look it up by email) and print a dashboard token",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			users := service.NewUserService(repository.NewUserRepository(rt.db))
			user, err := users.Ensure(cmd.Context(), email)
			if err != nil {
				return err
			}

			token, err := middleware.GenerateJWT(rt.cfg.Auth.JWTSecret, user.ID, ttl)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user_id: %s\n", user.ID)
			fmt.Fprintf(out, "email:   %s\n", user.Email)
			fmt.Fprintf(out, "token:   %s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "dashboard token lifetime")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage terminal credentials",
	}
	cmd.AddCommand(newCredentialsIssueCmd())
	return cmd
}

func newCredentialsIssueCmd() *cobra.Command {
	var userFlag string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue (or rotate) the terminal credential of a user",
		Long: `Issue generates a new terminal username/password pair for the user.
The password is printed once and only its hash is stored. Issuing again
invalidates the previous password.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			events, closeEvents, err := rt.broker(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEvents()

			credentials := service.NewCredentialService(
				repository.NewCredentialRepository(rt.db),
				repository.NewUserRepository(rt.db),
				events,
				rt.log,
			)
			cred, err := credentials.Issue(cmd.Context(), userID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "username: %s\n", cred.Username)
			fmt.Fprintf(out, "password: %s\n", cred.Password)
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
