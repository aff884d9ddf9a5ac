// Package language normalizes the language codes exchanged between the native engine
// (usually ISO 639-1, two letters) and the media server (ISO 639-2, three letters).
package language

import (
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// bibliographic maps ISO 639-2/B codes, which servers commonly emit, to the /T codes
// x/text produces.
var bibliographic = map[string]string{
	"alb": "sqi",
	"arm": "hye",
	"baq": "eus",
	"bur": "mya",
	"chi": "zho",
	"cze": "ces",
	"dut": "nld",
	"fre": "fra",
	"geo": "kat",
	"ger": "deu",
	"gre": "ell",
	"ice": "isl",
	"mac": "mkd",
	"mao": "mri",
	"may": "msa",
	"per": "fas",
	"rum": "ron",
	"slo": "slk",
	"tib": "bod",
	"wel": "cym",
}

// Normalize returns the three-letter terminology code for a two- or three-letter code or a
// BCP 47 tag. Unknown input is returned lower-cased; empty input stays empty.
func Normalize(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if c == "" || c == "und" {
		return ""
	}
	if t, ok := bibliographic[c]; ok {
		return t
	}

	base, err := xlang.ParseBase(c)
	if err != nil {
		tag, err := xlang.Parse(c)
		if err != nil {
			return c
		}
		base, _ = tag.Base()
	}

	iso3 := base.ISO3()
	if iso3 == "" || iso3 == "und" {
		return c
	}
	return iso3
}

// Equal reports whether two codes name the same language. Empty codes never match.
func Equal(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	return na != "" && na == nb
}

// Name returns the English display name for a code, or the code itself.
func Name(code string) string {
	n := Normalize(code)
	if n == "" {
		return ""
	}
	base, err := xlang.ParseBase(n)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return code
}
