package cmd

import (
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/marquee-cli/marquee/color"
	"github.com/marquee-cli/marquee/constant"
	"github.com/marquee-cli/marquee/style"
	"github.com/marquee-cli/marquee/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Only print the version number")
}

var versionTemplate = template.Must(template.New("version").Funcs(template.FuncMap{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}     {{ bold .Version }}
  {{ faint "Git Commit" }}  {{ bold .Revision }}
  {{ faint "Build Date" }}  {{ bold .BuiltAt }}
  {{ faint "Built By" }}    {{ bold .BuiltBy }}
  {{ faint "Platform" }}    {{ bold .OS }}/{{ bold .Arch }}
  {{ faint "Client" }}      {{ bold .UserAgent }}
`))

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		defer version.Notify(cmd.Context())

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), map[string]string{
			"App":       constant.Marquee,
			"Version":   constant.Version,
			"Revision":  constant.Revision,
			"BuiltAt":   strings.TrimSpace(constant.BuiltAt),
			"BuiltBy":   constant.BuiltBy,
			"OS":        runtime.GOOS,
			"Arch":      runtime.GOARCH,
			"UserAgent": constant.UserAgent,
		}))
	},
}
