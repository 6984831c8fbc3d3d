package moderation

import "github.com/abadojack/whatlanggo"

// minReliableLength is the shortest text whose language detection is worth reporting.
const minReliableLength = 12

// DetectLanguage returns the ISO 639-1 code of the text language,
// or an empty string when the text is too short or detection is unsure.
func DetectLanguage(text string) string {
	if len([]rune(text)) < minReliableLength {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
