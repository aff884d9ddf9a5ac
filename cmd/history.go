package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/marquee-cli/marquee/color"
	"github.com/marquee-cli/marquee/history"
	"github.com/marquee-cli/marquee/media"
	"github.com/marquee-cli/marquee/style"
	"github.com/marquee-cli/marquee/track"
	"github.com/marquee-cli/marquee/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.SetOut(os.Stdout)
	historyCmd.Flags().BoolP("pick", "p", false, "Pick an entry to resume")
}

// describeEntry renders one history line.
func describeEntry(e *history.Entry) string {
	return fmt.Sprintf("%s %s %s",
		style.Bold(e.Title),
		style.Fg(color.Yellow)(fmt.Sprintf("%.0f%%", e.Percentage())),
		style.Faint(e.UpdatedAt.Format(time.DateTime)),
	)
}

var historyCmd = &cobra.Command{
	Use:     "history",
	Short:   "Show what was played recently",
	Aliases: []string{"h"},
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := history.List()
		handleErr(err)

		if len(entries) == 0 {
			cmd.Println(style.Faint("Nothing played yet"))
			return
		}

		if !lo.Must(cmd.Flags().GetBool("pick")) {
			for _, e := range entries {
				cmd.Println(describeEntry(e))
			}
			cmd.Println(style.Faint(util.Quantify(len(entries), "entry", "entries")))
			return
		}

		var index int
		handleErr(survey.AskOne(&survey.Select{
			Message: "Resume",
			Options: lo.Map(entries, func(e *history.Entry, _ int) string {
				return fmt.Sprintf("%s  %s / %s", e.Title, util.Timestamp(e.Position), util.Timestamp(e.Duration))
			}),
		}, &index))

		checkDependencies()

		e := entries[index]
		item := media.Item{ID: e.ItemID, ServerID: e.ServerID, ViewOffset: e.Position}
		handleErr(play(cmd.Context(), item, e.VersionIndex, track.Overrides{}, playOptions{}))
	},
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove entries from the history",
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := history.List()
		handleErr(err)

		if len(entries) == 0 {
			cmd.Println(style.Faint("Nothing to remove"))
			return
		}

		var picked []int
		handleErr(survey.AskOne(&survey.MultiSelect{
			Message: "Remove",
			Options: lo.Map(entries, func(e *history.Entry, _ int) string { return e.Title }),
		}, &picked))

		for _, i := range picked {
			handleErr(history.Remove(entries[i]))
		}

		success("removed %s", util.Quantify(len(picked), "entry", "entries"))
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	historyClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every history entry",
	Run: func(cmd *cobra.Command, args []string) {
		confirmed := lo.Must(cmd.Flags().GetBool("yes"))
		if !confirmed {
			handleErr(survey.AskOne(&survey.Confirm{Message: "Clear the whole history?"}, &confirmed))
		}
		if !confirmed {
			return
		}

		handleErr(history.Clear())
		success("history cleared")
	},
}
