package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mobile-next/wintest/utils"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

const keyringService = "wintest"
const keyringUser = "server-token"

// loadToken returns the bearer token for the server: the flag value when
// given, otherwise the token stored in the keyring. No stored token means no
// authentication.
func loadToken(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	token, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read server token from keyring: %w", err)
	}
	return token, nil
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Commands for managing the bearer token that protects the server.`,
}

var authTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the server token",
	Long:  `Generate, display or remove the token stored in the system keyring.`,
}

var authTokenGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and store a new server token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := uuid.NewString()
		if err := keyring.Set(keyringService, keyringUser, token); err != nil {
			return fmt.Errorf("failed to store server token: %w", err)
		}

		utils.Verbose("Stored server token in keyring service %s", keyringService)
		fmt.Println(token)
		return nil
	},
}

var authTokenShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the server token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := keyring.Get(keyringService, keyringUser)
		if err != nil {
			return fmt.Errorf("no server token found for wintest")
		}

		fmt.Println(token)
		return nil
	},
}

var authTokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the server token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keyring.Delete(keyringService, keyringUser); err != nil {
			fmt.Println("no server token was stored")
			return nil
		}

		fmt.Println("Server token removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authTokenCmd)
	authTokenCmd.AddCommand(authTokenGenerateCmd, authTokenShowCmd, authTokenClearCmd)
}
