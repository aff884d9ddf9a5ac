package config

import (
	"time"

	"github.com/marquee-cli/marquee/key"
	"github.com/spf13/viper"
)

// SubtitleStyle is handed to the engine when it is opened.
type SubtitleStyle struct {
	FontSize    int
	Color       string
	BorderSize  int
	BorderColor string
	Position    int
}

// PlaybackConfig is an immutable snapshot of the settings a playback session needs.
// It is built once per session and passed by value to every component.
type PlaybackConfig struct {
	HardwareDecode bool
	BufferSizeMiB  int
	AudioDelay     time.Duration
	SubtitleDelay  time.Duration
	Subtitle       SubtitleStyle

	SeekSmall    time.Duration
	SeekLarge    time.Duration
	RotationLock bool

	AutoSkipIntro   bool
	AutoSkipCredits bool
	AutoSkipDelay   time.Duration

	RememberTracks   bool
	ProgressInterval time.Duration
	QueueWindow      int
}

// Playback reads the current snapshot from viper.
func Playback() PlaybackConfig {
	seconds := func(k string) time.Duration {
		return time.Duration(viper.GetInt(k)) * time.Second
	}
	millis := func(k string) time.Duration {
		return time.Duration(viper.GetInt(k)) * time.Millisecond
	}

	return PlaybackConfig{
		HardwareDecode: viper.GetBool(key.PlayerHardwareDecode),
		BufferSizeMiB:  viper.GetInt(key.PlayerBufferSize),
		AudioDelay:     millis(key.PlayerAudioDelay),
		SubtitleDelay:  millis(key.PlayerSubtitleDelay),
		Subtitle: SubtitleStyle{
			FontSize:    viper.GetInt(key.SubtitleFontSize),
			Color:       viper.GetString(key.SubtitleColor),
			BorderSize:  viper.GetInt(key.SubtitleBorderSize),
			BorderColor: viper.GetString(key.SubtitleBorderColor),
			Position:    viper.GetInt(key.SubtitlePosition),
		},
		SeekSmall:        seconds(key.PlayerSeekSmall),
		SeekLarge:        seconds(key.PlayerSeekLarge),
		RotationLock:     viper.GetBool(key.PlayerRotationLock),
		AutoSkipIntro:    viper.GetBool(key.AutoSkipIntro),
		AutoSkipCredits:  viper.GetBool(key.AutoSkipCredits),
		AutoSkipDelay:    seconds(key.AutoSkipDelay),
		RememberTracks:   viper.GetBool(key.RememberTrackSelection),
		ProgressInterval: seconds(key.ProgressInterval),
		QueueWindow:      viper.GetInt(key.QueueWindow),
	}
}
