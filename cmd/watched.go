package cmd

import (
	"context"

	"github.com/marquee-cli/marquee/color"
	"github.com/marquee-cli/marquee/server"
	"github.com/marquee-cli/marquee/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchedCmd, unwatchedCmd)
}

// markAll applies mark to each id, stopping at the first failure.
func markAll(ctx context.Context, ids []string, mark func(context.Context, string) error) (int, error) {
	for i, id := range ids {
		if err := mark(ctx, id); err != nil {
			return i, err
		}
	}
	return len(ids), nil
}

var watchedCmd = &cobra.Command{
	Use:   "watched [item id...]",
	Short: "Mark items as watched",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := server.FromConfig()
		handleErr(err)

		n, err := markAll(cmd.Context(), args, client.MarkWatched)
		for _, id := range args[:n] {
			success("marked %s as %s", style.Bold(id), style.Fg(color.Green)("watched"))
		}
		handleErr(err)
	},
}

var unwatchedCmd = &cobra.Command{
	Use:   "unwatched [item id...]",
	Short: "Mark items as not watched",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := server.FromConfig()
		handleErr(err)

		n, err := markAll(cmd.Context(), args, client.MarkUnwatched)
		for _, id := range args[:n] {
			success("marked %s as %s", style.Bold(id), style.Fg(color.Yellow)("unwatched"))
		}
		handleErr(err)
	},
}
