// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Media Server - connection to the remote library.
const (
	ServerURL        = "server.url"
	ServerClientID   = "server.client_id"
	ServerTimeout    = "server.timeout"
	ServerRateLimit  = "server.rate_limit"
	ServerInsecureOK = "server.allow_insecure"
)

// Engine - options handed to the native decoder when it is opened.
const (
	PlayerBinary         = "player.binary"
	PlayerHardwareDecode = "player.hardware_decode"
	PlayerBufferSize     = "player.buffer_size"
	PlayerAudioDelay     = "player.audio_delay"
	PlayerSubtitleDelay  = "player.subtitle_delay"
	PlayerSeekSmall      = "player.seek_small"
	PlayerSeekLarge      = "player.seek_large"
	PlayerRotationLock   = "player.rotation_lock"
)

// Subtitles - render settings.
const (
	SubtitleFontSize    = "subtitle.font_size"
	SubtitleColor       = "subtitle.color"
	SubtitleBorderSize  = "subtitle.border_size"
	SubtitleBorderColor = "subtitle.border_color"
	SubtitlePosition    = "subtitle.position"
)

// Playback behaviour.
const (
	AutoSkipIntro          = "playback.auto_skip_intro"
	AutoSkipCredits        = "playback.auto_skip_credits"
	AutoSkipDelay          = "playback.auto_skip_delay"
	RememberTrackSelection = "playback.remember_tracks"
	ProgressInterval       = "playback.progress_interval"
	QueueWindow            = "playback.queue_window"
	NowPlaying             = "playback.now_playing"
)

// History tracking.
const (
	HistorySaveOnPlay = "history.save_on_play"
)

// Iconography.
const (
	IconsVariant = "icons.variant"
)

// Logging.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
