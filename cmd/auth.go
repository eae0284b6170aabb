package cmd

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/vidlink-cli/vidlink/auth"
	"github.com/vidlink-cli/vidlink/icon"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.PersistentFlags().BoolP("fallback", "f", false, "Use the fallback key slot")
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the search API keys stored in the system keyring",
	Long: `Keys stored here are used by search when discovery.api_key and discovery.api_key_fallback are empty.
Without any key, search falls back to the results page.`,
}

func account(cmd *cobra.Command) string {
	if lo.Must(cmd.Flags().GetBool("fallback")) {
		return auth.Fallback
	}
	return auth.Primary
}

func init() {
	authCmd.AddCommand(authSetCmd)
}

var authSetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store an API key",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var secret string
		if len(args) == 1 {
			secret = args[0]
		} else {
			handleErr(survey.AskOne(&survey.Password{Message: "API key"}, &secret, survey.WithValidator(survey.Required)))
		}

		handleErr(auth.SetKey(account(cmd), secret))
		fmt.Printf("%s key stored\n", icon.Get(icon.Success))
	},
}

func init() {
	authCmd.AddCommand(authGetCmd)
	authGetCmd.SetOut(os.Stdout)
}

var authGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the stored API key",
	Run: func(cmd *cobra.Command, args []string) {
		secret, err := auth.GetKey(account(cmd))
		handleErr(err)
		cmd.Println(secret)
	},
}

func init() {
	authCmd.AddCommand(authDeleteCmd)
}

var authDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored API key",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteKey(account(cmd)))
		fmt.Printf("%s key removed\n", icon.Get(icon.Success))
	},
}
