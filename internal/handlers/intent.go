package handlers

import (
	"strings"

	"suitcraft-ai/internal/preference"
)

// occasionKeywords maps free-text fragments to occasion keys. Longer, more
// specific fragments come first.
var occasionKeywords = []struct {
	fragment string
	occasion string
}{
	{"black tie", "gala"},
	{"black-tie", "gala"},
	{"job interview", "interview"},
	{"interview", "interview"},
	{"wedding", "wedding"},
	{"groom", "wedding"},
	{"best man", "wedding"},
	{"funeral", "funeral"},
	{"memorial", "funeral"},
	{"graduat", "graduation"},
	{"gala", "gala"},
	{"ball", "gala"},
	{"cocktail", "cocktail"},
	{"party", "cocktail"},
	{"date", "date"},
	{"dinner", "date"},
	{"business", "business"},
	{"meeting", "business"},
	{"office", "business"},
	{"conference", "business"},
}

var colorKeywords = []string{
	"forest green", "light gray", "light grey", "charcoal", "burgundy",
	"navy", "black", "brown", "olive", "cream", "tan", "gray", "grey",
	"blue", "green", "beige", "white", "maroon", "plum",
}

// detectIntent reads a free-text request such as "navy suit for my sister's
// wedding" into a preference update. The occasion falls back to the whole
// text as a custom occasion.
func detectIntent(text string) (preference.Raw, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return preference.Raw{}, false
	}

	var raw preference.Raw
	for _, kw := range occasionKeywords {
		if containsWord(t, kw.fragment) {
			raw.Occasion = kw.occasion
			break
		}
	}
	if raw.Occasion == "" {
		raw.Occasion = "custom:" + strings.TrimSpace(text)
	}

	for _, c := range colorKeywords {
		if containsWord(t, c) {
			raw.ColorPreference = c
			break
		}
	}
	if strings.Contains(t, "any color") || strings.Contains(t, "you pick") || strings.Contains(t, "surprise me") {
		raw.ColorPreference = "ai-pick"
	}
	return raw, true
}

// containsWord matches fragment at a word start so "tan" does not hit
// "important". Fragments ending in a stem ("graduat") match any suffix.
func containsWord(text, fragment string) bool {
	for i := 0; i+len(fragment) <= len(text); {
		idx := strings.Index(text[i:], fragment)
		if idx < 0 {
			return false
		}
		start := i + idx
		end := start + len(fragment)
		if (start == 0 || !isLetter(text[start-1])) && (end == len(text) || !isLetter(text[end]) || isStem(fragment)) {
			return true
		}
		i = start + 1
	}
	return false
}

func isStem(fragment string) bool {
	return fragment == "graduat"
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
