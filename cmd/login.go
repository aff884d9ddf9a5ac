package cmd

import (
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/marquee-cli/marquee/auth"
	"github.com/marquee-cli/marquee/color"
	"github.com/marquee-cli/marquee/key"
	"github.com/marquee-cli/marquee/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)

	loginCmd.Flags().StringP("url", "u", "", "Media server url")
	loginCmd.Flags().StringP("token", "t", "", "Access token. Asked for when omitted")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save the media server url and access token",
	Long: `Save the media server url in the config file and the access token
in the system keyring.`,
	Run: func(cmd *cobra.Command, args []string) {
		url := lo.Must(cmd.Flags().GetString("url"))
		if url == "" {
			handleErr(survey.AskOne(&survey.Input{
				Message: "Server url",
				Default: viper.GetString(key.ServerURL),
			}, &url, survey.WithValidator(survey.Required)))
		}

		token := lo.Must(cmd.Flags().GetString("token"))
		if token == "" {
			handleErr(survey.AskOne(&survey.Password{
				Message: "Access token",
			}, &token, survey.WithValidator(survey.Required)))
		}

		viper.Set(key.ServerURL, strings.TrimRight(strings.TrimSpace(url), "/"))
		handleErr(writeConfig())
		handleErr(auth.SetToken(strings.TrimSpace(token)))

		success("logged in to %s", style.Fg(color.Purple)(viper.GetString(key.ServerURL)))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the access token",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		success("logged out")
	},
}
