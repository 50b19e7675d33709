package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// aliases covers word forms and ISO 639-2/B codes the tag parser does not
// resolve on its own.
var aliases = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"fre":        "fr",
	"german":     "de",
	"ger":        "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"mandarin":   "zh",
	"chi":        "zh",
	"thai":       "th",
	"russian":    "ru",
	"dutch":      "nl",
	"dut":        "nl",
	"polish":     "pl",
	"swedish":    "sv",
}

// unspaced lists base languages whose scripts do not separate words.
var unspaced = map[string]bool{
	"zh": true,
	"ja": true,
	"th": true,
	"lo": true,
	"km": true,
	"my": true,
}

var displayNames = display.English.Languages()

// Normalize reduces a two or three letter code, BCP 47 tag or English
// language name to its ISO 639-1 base. Input that is none of these yields "".
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if base, ok := aliases[code]; ok {
		return base
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		if len(code) == 2 {
			return code
		}
		return ""
	}
	base, _ := tag.Base()
	if b := base.String(); len(b) == 2 {
		return b
	}
	return ""
}

// DisplayName is the English name of the language, "Unknown" for blank input
// and the upper-cased code when nothing matches.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	if base, err := xlanguage.ParseBase(Normalize(trimmed)); err == nil {
		if name := displayNames.Name(base); name != "" {
			return name
		}
	}
	return strings.ToUpper(trimmed)
}

// Unspaced reports whether the language is written without word spacing.
func Unspaced(code string) bool {
	return unspaced[Normalize(code)]
}

// Joiner is the separator placed between units and segments: "" for
// unspaced scripts and " " for everything else.
func Joiner(code string) string {
	if Unspaced(code) {
		return ""
	}
	return " "
}
