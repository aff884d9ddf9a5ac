package cmd

import (
	"os"

	"github.com/marquee-cli/marquee/color"
	"github.com/marquee-cli/marquee/open"
	"github.com/marquee-cli/marquee/style"
	"github.com/marquee-cli/marquee/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

type whereTarget struct {
	name     string
	where    func() string
	argLong  string
	argShort mo.Option[string]
	hidden   bool
}

var wherePaths = []whereTarget{
	{"Config", where.Config, "config", mo.Some("c"), false},
	{"Logs", where.Logs, "logs", mo.Some("l"), false},
	{"History", where.History, "history", mo.None[string](), false},
	{"Cache", where.Cache, "cache", mo.None[string](), true},
	{"Temp", where.Temp, "temp", mo.None[string](), true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, t := range wherePaths {
		short, _ := t.argShort.Get()
		whereCmd.Flags().BoolP(t.argLong, short, false, t.name+" path")

		if t.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(t.argLong))
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(wherePaths, func(t whereTarget, _ int) string {
		return t.argLong
	})...)

	whereCmd.Flags().BoolP("open", "o", false, "Open the path instead of printing it")
	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show the paths marquee uses",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range wherePaths {
			if lo.Must(cmd.Flags().GetBool(t.argLong)) {
				if lo.Must(cmd.Flags().GetBool("open")) {
					handleErr(open.Start(t.where()))
					return
				}
				cmd.Println(t.where())
				return
			}
		}

		if lo.Must(cmd.Flags().GetBool("open")) {
			handleErr(open.Start(where.Config()))
			return
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		visible := lo.Reject(wherePaths, func(t whereTarget, _ int) bool {
			return t.hidden
		})

		for i, t := range visible {
			cmd.Printf("%s %s\n", header(t.name+"?"), style.Fg(color.Yellow)("--"+t.argLong))
			cmd.Println(t.where())

			if i < len(visible)-1 {
				cmd.Println()
			}
		}
	},
}
