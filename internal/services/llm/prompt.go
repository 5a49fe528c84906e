package llm

import (
	"strings"

	"redub/internal/language"
)

// TranslationPrompt is the default system prompt for subtitle-style
// translation. {from} and {to} are replaced with language display names.
const TranslationPrompt = `You translate lines of spoken dialogue from {from} to {to} for a voice-over.
Keep the meaning and tone. Keep the translation about as long as the source so it can be spoken in the same time.
Do not add explanations, notes, or quotation marks.
Respond with JSON only: {"translation": "<translated text>"}`

// ExpandPrompt substitutes the {from} and {to} placeholders in a prompt
// template with human-readable language names.
func ExpandPrompt(template, from, to string) string {
	return strings.NewReplacer(
		"{from}", displayName(from),
		"{to}", displayName(to),
	).Replace(template)
}

func displayName(tag string) string {
	if name := language.DisplayName(tag); name != "" {
		return name
	}
	return tag
}
