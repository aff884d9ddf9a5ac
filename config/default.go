package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/marquee-cli/marquee/color"
	"github.com/marquee-cli/marquee/constant"
	"github.com/marquee-cli/marquee/key"
	"github.com/marquee-cli/marquee/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field is a registered configuration key with its default and description.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty renders the field for `marquee config info`.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable bound to this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Marquee + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds every registered field keyed by name.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.ServerURL, "http://127.0.0.1:32400", "Base URL of the media server")
	register(key.ServerClientID, "", "Client identifier sent to the media server.\nGenerated on first use")
	register(key.ServerTimeout, 15, "Timeout in seconds for media server requests")
	register(key.ServerRateLimit, 20, "Maximum media server requests per second")
	register(key.ServerInsecureOK, false, "Allow plain http media server URLs outside the local network")

	register(key.PlayerBinary, "mpv", "Path or name of the mpv binary")
	register(key.PlayerHardwareDecode, true, "Use hardware decoding when available")
	register(key.PlayerBufferSize, 150, "Demuxer buffer size in MiB")
	register(key.PlayerAudioDelay, 0, "Audio sync offset in milliseconds")
	register(key.PlayerSubtitleDelay, 0, "Subtitle sync offset in milliseconds")
	register(key.PlayerSeekSmall, 10, "Small seek step in seconds")
	register(key.PlayerSeekLarge, 30, "Large seek step in seconds")
	register(key.PlayerRotationLock, false, "Keep the orientation fixed when the terminal is resized")

	register(key.SubtitleFontSize, 55, "Subtitle font size")
	register(key.SubtitleColor, "#FFFFFF", "Subtitle text color")
	register(key.SubtitleBorderSize, 3, "Subtitle border size")
	register(key.SubtitleBorderColor, "#000000", "Subtitle border color")
	register(key.SubtitlePosition, 100, "Subtitle vertical position, 0 (top) to 100 (bottom)")

	register(key.AutoSkipIntro, false, "Skip intros automatically")
	register(key.AutoSkipCredits, false, "Skip credits automatically, advancing to the next episode when there is one")
	register(key.AutoSkipDelay, 5, "Seconds to wait before an automatic skip.\nWith 0 nothing is skipped automatically; the skip key still works")
	register(key.RememberTrackSelection, true, "Remember audio and subtitle selections on the server")
	register(key.ProgressInterval, 10, "Seconds between progress reports")
	register(key.QueueWindow, 50, "Play queue items fetched either side of the current item")
	register(key.NowPlaying, true, "Publish playback to the system media controls (MPRIS)")

	register(key.HistorySaveOnPlay, true, "Save local resume history when playback stops")

	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, nerd, plain")

	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")

	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"blue":     style.Fg(color.Blue),
	"purple":   style.Fg(color.Purple),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
