package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a parsed BCP-47 tag with the derived codes each stage needs.
type Language struct {
	tag language.Tag
	raw string
}

// Parse validates a BCP-47 tag such as "pt-PT" or "en".
func Parse(value string) (Language, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Language{}, fmt.Errorf("empty language tag")
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return Language{}, fmt.Errorf("parse language %q: %w", trimmed, err)
	}
	return Language{tag: tag, raw: trimmed}, nil
}

// MustParse is Parse for constants known to be valid.
func MustParse(value string) Language {
	l, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return l
}

// Tag returns the canonical BCP-47 form ("pt-PT").
func (l Language) Tag() string {
	return l.tag.String()
}

// ISO2 returns the two-letter base language ("pt" for "pt-BR"). Recognition
// and translation engines take this form.
func (l Language) ISO2() string {
	base, _ := l.tag.Base()
	return base.String()
}

// ISO3 returns the ISO 639-2 code used in container stream metadata.
func (l Language) ISO3() string {
	base, _ := l.tag.Base()
	return base.ISO3()
}

// DisplayName returns the English name of the language, including region
// when the tag carries one ("Brazilian Portuguese").
func (l Language) DisplayName() string {
	if name := display.English.Tags().Name(l.tag); name != "" {
		return name
	}
	return l.raw
}

// BaseName returns the English name of the base language only.
func (l Language) BaseName() string {
	base, _ := l.tag.Base()
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return l.ISO2()
}

func (l Language) String() string {
	return l.Tag()
}

// ToISO2 converts a tag to its base language code, returning "" for invalid input.
func ToISO2(code string) string {
	l, err := Parse(code)
	if err != nil {
		return ""
	}
	return l.ISO2()
}

// ToISO3 converts a tag to its ISO 639-2 code, returning "und" for invalid input.
func ToISO3(code string) string {
	l, err := Parse(code)
	if err != nil {
		return "und"
	}
	return l.ISO3()
}

// DisplayName returns a human-readable name, or the input when it cannot be parsed.
func DisplayName(code string) string {
	l, err := Parse(code)
	if err != nil {
		return strings.TrimSpace(code)
	}
	return l.DisplayName()
}
