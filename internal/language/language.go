package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Undetermined is the ISO 639-2 code used when a language cannot be parsed.
const Undetermined = "und"

// Normalize maps a user-supplied language code or name onto its ISO 639-2
// three-letter form. Unparseable input yields Undetermined.
func Normalize(code string) string {
	tag, ok := parse(code)
	if !ok {
		return Undetermined
	}
	base, conf := tag.Base()
	if conf == language.No {
		return Undetermined
	}
	return base.ISO3()
}

// DisplayName returns a human-readable English name for the language code,
// or "Unknown" when the code cannot be parsed.
func DisplayName(code string) string {
	tag, ok := parse(code)
	if !ok {
		return "Unknown"
	}
	name := display.English.Languages().Name(tag)
	if strings.TrimSpace(name) == "" {
		return "Unknown"
	}
	return name
}

// Matches reports whether two language codes refer to the same base
// language. Either side being undetermined never matches.
func Matches(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == Undetermined || nb == Undetermined {
		return false
	}
	return na == nb
}

func parse(code string) (language.Tag, bool) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return language.Und, false
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return language.Und, false
	}
	return tag, true
}
