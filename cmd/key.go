// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"seedfast/dataorch/internal/config"
	"seedfast/dataorch/internal/keychain"
	"seedfast/dataorch/internal/terminal"
)

var keyProvider string

// keyCmd groups the keychain commands.
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage secrets stored in the OS keychain",
}

// keySetCmd stores the API key and optionally the database password.
var keySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the completion service API key and database password",
	Long: `The key set command prompts for the API key of the configured provider and for the
database password, and stores them in the OS keychain. Environment variables still
take precedence over stored secrets. Leave a prompt empty to keep the stored value.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := keyProvider
		if provider == "" {
			s, err := loadSettings()
			if err != nil {
				return reportConfigError(err)
			}
			provider = s.Provider
		}
		provider = strings.ToLower(strings.TrimSpace(provider))
		keyVar := config.APIKeyVar(provider)
		if keyVar == "" {
			return fmt.Errorf("unsupported provider %q (use xai or anthropic)", provider)
		}

		km, err := keychain.GetManager()
		if err != nil {
			fmt.Println("❌ Secure storage is not available on this system.")
			fmt.Printf("   Set %s in the environment or in .env instead.\n", keyVar)
			return errReported
		}

		apiKey, err := terminal.ReadSecret(fmt.Sprintf("Enter %s API key: ", provider))
		if err != nil {
			return err
		}
		if apiKey != "" {
			if err := km.SaveAPIKey(provider, apiKey); err != nil {
				fmt.Println("❌ Failed to save the API key securely.")
				return err
			}
			fmt.Printf("✅ %s API key saved\n", provider)
		}

		password, err := terminal.ReadSecret("Enter database password (empty to skip): ")
		if err != nil {
			return err
		}
		if password != "" {
			if err := km.SaveDBPassword(password); err != nil {
				fmt.Println("❌ Failed to save the database password securely.")
				return err
			}
			fmt.Println("✅ Database password saved")
		}
		return nil
	},
}

// keyClearCmd removes every stored secret.
var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every dataorch secret from the OS keychain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			fmt.Println("Nothing to clear: secure storage is not available on this system.")
			return nil
		}
		if err := km.ClearAll(); err != nil {
			return err
		}
		fmt.Println("✅ Stored secrets removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keySetCmd, keyClearCmd)
	keySetCmd.Flags().StringVar(&keyProvider, "provider", "", "Provider the API key belongs to (default from configuration)")
}
