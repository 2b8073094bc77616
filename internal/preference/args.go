package preference

import "strings"

// ParseArgs reads "key=value" tokens (and a few bare keywords) into a Raw
// record on top of defaults. Underscores in values stand for spaces, so
// "color=forest_green" asks for "forest green". Words that match nothing
// become a custom occasion when no occasion was given.
func ParseArgs(raw string, defaults Raw) Raw {
	out := defaults
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out
	}

	var rest []string
	for _, tok := range strings.Fields(raw) {
		orig := tok
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}

		if key, value, ok := strings.Cut(orig, "="); ok {
			value = strings.ReplaceAll(strings.TrimSpace(value), "_", " ")
			switch strings.ToLower(key) {
			case "occasion", "occ", "for":
				out.Occasion = value
				continue
			case "color", "colour", "suitcolor":
				out.ColorPreference = value
				out.SuitColor = ""
				continue
			case "formality", "level":
				out.FormalityLevel = value
				continue
			case "body", "build", "bodytype":
				out.BodyType = value
				continue
			case "skin", "tone", "skintone":
				out.SkinTone = value
				continue
			case "season":
				out.Season = value
				continue
			case "budget":
				out.Budget = value
				continue
			}
		}

		if _, ok := occasions[tok]; ok {
			out.Occasion = tok
			continue
		}
		if _, ok := palettes[tok]; ok {
			out.ColorPreference = tok
			continue
		}
		if _, ok := delegatedColors[tok]; ok {
			out.ColorPreference = tok
			continue
		}
		if _, ok := formalityLevels[tok]; ok {
			out.FormalityLevel = tok
			continue
		}
		if _, ok := bodyTypes[tok]; ok {
			out.BodyType = tok
			continue
		}
		if _, ok := seasons[tok]; ok {
			out.Season = tok
			continue
		}
		if _, ok := budgets[tok]; ok {
			out.Budget = tok
			continue
		}

		rest = append(rest, orig)
	}

	if len(rest) > 0 && strings.TrimSpace(out.Occasion) == "" {
		out.Occasion = customPrefix + strings.Join(rest, " ")
	}
	return out
}
