package auth

import (
	"fmt"

	"github.com/crucial707/vuln-blog/cmd/cli/config"
	"github.com/spf13/cobra"
)

// InitAuth registers register, login and logout on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(registerCmd(), loginCmd(), logoutCmd())
}

// ==========================
// Register
// ==========================
func registerCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}
			if err := config.Client().Register(cmd.Context(), username, password); err != nil {
				return fmt.Errorf("failed to register: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "User registered. You can now log in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "email or username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

// ==========================
// Login (stores the JWT)
// ==========================
func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store a token for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}
			token, err := config.Client().Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if err := config.SaveToken(token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Login successful. Token stored in", config.TokenPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "email or username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

// ==========================
// Logout
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			existed, err := config.ClearToken()
			if err != nil {
				return err
			}
			if !existed {
				fmt.Fprintln(cmd.OutOrStdout(), "No user logged in.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
