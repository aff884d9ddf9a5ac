package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/marquee-cli/marquee/color"
	"github.com/marquee-cli/marquee/config"
	"github.com/marquee-cli/marquee/engine"
	"github.com/marquee-cli/marquee/history"
	"github.com/marquee-cli/marquee/icon"
	"github.com/marquee-cli/marquee/key"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/media"
	"github.com/marquee-cli/marquee/nowplaying"
	"github.com/marquee-cli/marquee/queue"
	"github.com/marquee-cli/marquee/server"
	"github.com/marquee-cli/marquee/session"
	"github.com/marquee-cli/marquee/style"
	"github.com/marquee-cli/marquee/track"
	"github.com/marquee-cli/marquee/tui"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().IntP("media-version", "m", -1, "Media version index to play. Asks when there are several")
	playCmd.Flags().StringP("audio", "a", "", "Audio language for this playback, e.g. en or jpn")
	playCmd.Flags().StringP("subtitle", "s", "", "Subtitle language for this playback, or off")
	playCmd.Flags().Bool("headless", false, "Play without the terminal controls")
	playCmd.Flags().Bool("shuffle", false, "Play the rest of the show in random order")
}

var playCmd = &cobra.Command{
	Use:   "play [item id]",
	Short: "Play a movie or an episode",
	Long: `Play a movie or an episode by its library id.
Episodes continue with the rest of the show until you quit.`,
	Args:    cobra.ExactArgs(1),
	Example: "  marquee play 48213 --subtitle off",
	Run: func(cmd *cobra.Command, args []string) {
		checkDependencies()

		item := media.Item{ID: args[0]}
		versionIndex := lo.Must(cmd.Flags().GetInt("media-version"))

		if versionIndex < 0 {
			client, err := server.FromConfig()
			handleErr(err)

			versionIndex, err = pickVersion(cmd.Context(), client, item.ID)
			handleErr(err)
		}

		overrides := track.Overrides{}
		if audio := lo.Must(cmd.Flags().GetString("audio")); audio != "" {
			overrides.Audio = mo.Some(track.Choice{Language: audio})
		}
		if sub := lo.Must(cmd.Flags().GetString("subtitle")); sub != "" {
			if strings.EqualFold(sub, "off") {
				overrides.Subtitle = mo.Some(track.Choice{Off: true})
			} else {
				overrides.Subtitle = mo.Some(track.Choice{Language: sub})
			}
		}

		opts := playOptions{
			headless: lo.Must(cmd.Flags().GetBool("headless")),
			shuffle:  lo.Must(cmd.Flags().GetBool("shuffle")),
		}
		handleErr(play(cmd.Context(), item, versionIndex, overrides, opts))
	},
}

// pickVersion asks which media version to play when an item has more than one.
func pickVersion(ctx context.Context, client *server.Client, id string) (int, error) {
	versions, err := client.Versions(ctx, id)
	if err != nil {
		return 0, err
	}

	if len(versions) < 2 || !interactive() {
		return 0, nil
	}

	labels := lo.Map(versions, func(v media.Version, i int) string {
		return fmt.Sprintf("%d. %s", i+1, v.Label())
	})

	var index int
	err = survey.AskOne(&survey.Select{
		Message: "Which version?",
		Options: labels,
	}, &index)
	return index, err
}

type playOptions struct {
	headless bool
	shuffle  bool
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// play wires a player for item and runs it until the user quits or the show ends.
func play(ctx context.Context, item media.Item, versionIndex int, overrides track.Overrides, opts playOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := server.FromConfig()
	if err != nil {
		return err
	}

	cfg := config.Playback()

	var surface nowplaying.Surface
	if viper.GetBool(key.NowPlaying) {
		surface = nowplaying.Default()
	} else {
		surface = nowplaying.NewMemory()
	}
	defer func() {
		if err := surface.Close(); err != nil {
			log.Warnf("close now-playing surface: %v", err)
		}
	}()

	headless := opts.headless || !interactive()

	queues := queue.NewManager(client, cfg)
	if opts.shuffle {
		if err := shuffled(ctx, client, queues, item.ID); err != nil {
			return err
		}
	}

	deps := session.Deps{
		Service: client,
		NewEngine: func() engine.Engine {
			return engine.NewMPV(viper.GetString(key.PlayerBinary))
		},
		Config:  cfg,
		Queue:   queues,
		Bridge:  nowplaying.NewBridge(surface),
		Chrome:  terminalChrome{restoreTitle: !headless},
		Artwork: client.ArtworkURL,
	}

	if viper.GetBool(key.HistorySaveOnPlay) {
		deps.History = func(item media.Item, position time.Duration, versionIndex int) {
			if err := history.Save(item, position, versionIndex); err != nil {
				log.Warnf("save history: %v", err)
			}
		}
	}

	player := session.NewPlayer(deps)

	if headless {
		player.OnReady = func(s *session.Session) {
			fmt.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Play)), s.Snapshot().Item.DisplayTitle())
		}

		err := player.Play(ctx, item, versionIndex, overrides)
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	return tui.Run(ctx, player, func(ctx context.Context) error {
		return player.Play(ctx, item, versionIndex, overrides)
	})
}

// shuffled makes a shuffled queue over the item's show the active one, so the first
// session adopts it instead of creating a sequential queue.
func shuffled(ctx context.Context, client *server.Client, queues *queue.Manager, id string) error {
	item, err := client.Item(ctx, id)
	if err != nil {
		return err
	}
	if !item.IsEpisode() {
		return fmt.Errorf("only episodes can be shuffled, %s is a %s", item.DisplayTitle(), item.Kind)
	}

	q, err := client.CreatePlayQueue(ctx, media.QueueRequest{
		ShowID:      item.GrandparentID,
		StartItemID: item.ID,
		Shuffle:     true,
	})
	if err != nil {
		return fmt.Errorf("create shuffled queue: %w", err)
	}

	queues.Supersede(q)
	return nil
}

// terminalChrome resets the window title the controls view sets.
type terminalChrome struct {
	restoreTitle bool
}

func (c terminalChrome) Restore() {
	if c.restoreTitle && term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print("\x1b]2;\x07")
	}
}
