package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elakbay/elakbay/internal/utils"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		form := utils.AuthForm{Email: loginEmail, Password: loginPassword}
		if msg := utils.ValidateAuthForm(utils.ModeLogin, form); msg != "" {
			return fmt.Errorf("%s", msg)
		}

		env, err := newEnvironment(ctx)
		if err != nil {
			return err
		}

		if err := env.coordinator.SignIn(ctx, loginEmail, loginPassword); err != nil {
			return err
		}

		env.coordinator.Hydrate(ctx)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		env, err := newEnvironment(ctx)
		if err != nil {
			return err
		}

		return env.coordinator.SignOut(ctx)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Display the signed-in user and profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		env, err := newEnvironment(ctx)
		if err != nil {
			return err
		}

		env.coordinator.Hydrate(ctx)

		user := env.coordinator.CurrentUser()
		if user == nil {
			fmt.Println("Not signed in.")
			return nil
		}

		fmt.Printf("User:  %s (%s)\n", user.Email, user.ID)
		if profile := env.coordinator.CurrentProfile(); profile != nil {
			if profile.FullName != nil {
				fmt.Printf("Name:  %s\n", *profile.FullName)
			}
			if profile.Role != nil {
				fmt.Printf("Role:  %s\n", *profile.Role)
			}
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
}
