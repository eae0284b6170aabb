// Package icon renders the glyphs printed next to CLI output in the configured variant.
package icon

import (
	"github.com/spf13/viper"
	"github.com/vidlink-cli/vidlink/key"
)

// Variant is a family of glyphs selected with the icons.variant key.
type Variant string

const (
	Plain   Variant = "plain"
	Emoji   Variant = "emoji"
	Nerd    Variant = "nerd"
	Kaomoji Variant = "kaomoji"
	Squares Variant = "squares"
)

// Variants lists the accepted values of icons.variant.
func Variants() []string {
	return []string{string(Plain), string(Emoji), string(Nerd), string(Kaomoji), string(Squares)}
}

// Icon identifies a glyph.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Link
	Video
	Audio
)

var glyphs = map[Icon]map[Variant]string{
	Success: {
		Plain:   "OK",
		Emoji:   "🎉",
		Nerd:    "",
		Kaomoji: "(ᵔ◡ᵔ)",
		Squares: "■",
	},
	Fail: {
		Plain:   "X",
		Emoji:   "💀",
		Nerd:    "",
		Kaomoji: "(╯°□°)╯︵ ┻━┻",
		Squares: "▣",
	},
	Progress: {
		Plain:   "...",
		Emoji:   "⏳",
		Nerd:    "",
		Kaomoji: "(・_・;)",
		Squares: "◫",
	},
	Link: {
		Plain:   "->",
		Emoji:   "🔗",
		Nerd:    "",
		Kaomoji: "(→_→)",
		Squares: "▸",
	},
	Video: {
		Plain:   "V",
		Emoji:   "🎬",
		Nerd:    "",
		Kaomoji: "(▀̿Ĺ̯▀̿ ̿)",
		Squares: "▶",
	},
	Audio: {
		Plain:   "A",
		Emoji:   "🎵",
		Nerd:    "",
		Kaomoji: "♪(´ε` )",
		Squares: "♪",
	},
}

// Current returns the configured variant. Unknown values fall back to plain.
func Current() Variant {
	v := Variant(viper.GetString(key.IconsVariant))
	if _, ok := glyphs[Success][v]; !ok {
		return Plain
	}
	return v
}

// Render returns i in variant v.
func Render(i Icon, v Variant) string {
	return glyphs[i][v]
}

// Get returns i in the configured variant.
func Get(i Icon) string {
	return Render(i, Current())
}
