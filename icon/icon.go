// Package icon renders feedback symbols in the variant chosen by icons.variant.
package icon

import (
	"github.com/marquee-cli/marquee/key"
	"github.com/spf13/viper"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants lists the supported icon variants.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol.
type Icon int

const (
	Success Icon = iota + 1
	Fail
	Play
	Pause
	Skip
	Next
	Previous
	Queue
)

type iconDef struct {
	emoji string
	nerd  string
	plain string
}

func (d iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

var icons = map[Icon]iconDef{
	Success:  {emoji: "🎉", nerd: "\uf00c", plain: "✓"},
	Fail:     {emoji: "💀", nerd: "\uf00d", plain: "✖"},
	Play:     {emoji: "▶️", nerd: "\uf04b", plain: "▶"},
	Pause:    {emoji: "⏸️", nerd: "\uf04c", plain: "⏸"},
	Skip:     {emoji: "⏩", nerd: "\uf04e", plain: "»"},
	Next:     {emoji: "⏭️", nerd: "\uf051", plain: ">|"},
	Previous: {emoji: "⏮️", nerd: "\uf048", plain: "|<"},
	Queue:    {emoji: "📜", nerd: "\uf03a", plain: "≡"},
}

// Get returns the symbol for i in the configured variant.
func Get(i Icon) string {
	return icons[i].get()
}
