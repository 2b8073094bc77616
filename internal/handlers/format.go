package handlers

import (
	"fmt"
	"strings"

	"suitcraft-ai/internal/pipeline"
	"suitcraft-ai/internal/preference"
)

const helpText = "👔 SuitCraft\n\n" +
	"Tell me where you're going and I'll put together a full suit outfit with preview photos.\n\n" +
	"Commands:\n" +
	"/suit <details> - recommend now, e.g. /suit wedding color=navy season=summer\n" +
	"/menu - pick preferences with buttons\n" +
	"/set <details> - update saved preferences without generating\n" +
	"/prefs - show saved preferences\n" +
	"/reset - forget saved preferences\n" +
	"/help - this message\n\n" +
	"Or just write: \"charcoal suit for a job interview\"."

// formatResult renders an accepted outfit as a plain-text message.
func formatResult(res pipeline.Result) string {
	var b strings.Builder

	s := res.Suit
	b.WriteString("🤵 Suit: " + join(s.Color, s.Pattern, s.Fabric, s.Style) + "\n")
	if s.Fit != "" {
		b.WriteString("   Fit: " + s.Fit + "\n")
	}
	if len(s.Pieces) > 0 {
		b.WriteString("   Pieces: " + strings.Join(s.Pieces, ", ") + "\n")
	}
	writeWhy(&b, s.Justification)

	sh := res.Shirt
	b.WriteString("👔 Shirt: " + join(sh.Color, sh.Fabric, "shirt") + "\n")
	if sh.Collar != "" || sh.Cuffs != "" {
		b.WriteString("   " + joinSep(", ", suffix(sh.Collar, "collar"), suffix(sh.Cuffs, "cuffs")) + "\n")
	}
	writeWhy(&b, sh.Justification)

	n := res.Neckwear
	b.WriteString("🎀 Neckwear: " + join(n.Color, n.Pattern, n.Material, n.Type) + "\n")
	writeWhy(&b, n.Justification)

	sho := res.Shoes
	b.WriteString("👞 Shoes: " + join(sho.Color, sho.Material, sho.Style, sho.Type) + "\n")
	writeWhy(&b, sho.Justification)

	if len(res.Accessories) > 0 {
		b.WriteString("⌚ Accessories: " + strings.Join(res.Accessories, ", ") + "\n")
	}
	if l := res.Layering; !l.Empty() {
		b.WriteString("🧥 Layering: " + joinSep(", ", l.Outerwear, l.Vest, suffix(l.PocketSquare, "pocket square")) + "\n")
	}

	if res.Justification != "" {
		b.WriteString("\n" + res.Justification + "\n")
	}
	if res.SeasonalNotes != "" {
		b.WriteString("\n🌦 " + res.SeasonalNotes + "\n")
	}
	if len(res.StyleNotes) > 0 {
		b.WriteString("\nStyle notes:\n")
		for _, note := range res.StyleNotes {
			b.WriteString("• " + note + "\n")
		}
	}
	if res.Warning != "" {
		b.WriteString("\n⚠️ " + res.Warning + "\n")
	}
	return strings.TrimSpace(b.String())
}

func formatError(res pipeline.Result) string {
	switch res.ErrorKind {
	case pipeline.ErrorKindInvalidPreferences:
		return "❌ " + res.Error + "\nTry /suit wedding or /menu."
	case pipeline.ErrorKindUpstream:
		return "❌ The stylist service is unavailable right now. Please try again in a minute."
	default:
		return fmt.Sprintf("❌ I couldn't put together a reliable outfit (%d attempt(s)). Please try again.", res.Attempts)
	}
}

func formatPrefs(raw preference.Raw) string {
	var b strings.Builder
	b.WriteString("📋 Your preferences\n\n")
	b.WriteString("Occasion: " + describeOccasion(raw.Occasion) + "\n")
	b.WriteString("Color: " + describe(raw.ColorPreference, preference.Palettes(), "AI pick") + "\n")
	b.WriteString("Formality: " + describe(raw.FormalityLevel, preference.FormalityLevels(), "Formal") + "\n")
	b.WriteString("Body type: " + describe(raw.BodyType, preference.BodyTypes(), "Average") + "\n")
	b.WriteString("Skin tone: " + describe(raw.SkinTone, preference.SkinTones(), "Medium") + "\n")
	b.WriteString("Season: " + describe(raw.Season, preference.Seasons(), "any") + "\n")
	b.WriteString("Budget: " + describe(raw.Budget, preference.Budgets(), "any") + "\n")
	return b.String()
}

func describeOccasion(value string) string {
	if value == "" {
		return "(not set)"
	}
	if custom, ok := strings.CutPrefix(value, "custom:"); ok {
		return strings.TrimSpace(custom)
	}
	if o, ok := preference.LookupOccasion(value); ok {
		return o.Name
	}
	return value
}

func describe(value string, options []preference.NamedOption, fallback string) string {
	if value == "" {
		return fallback
	}
	for _, o := range options {
		if o.Key == value {
			return o.Name
		}
	}
	return value
}

func writeWhy(b *strings.Builder, why string) {
	if why = strings.TrimSpace(why); why != "" {
		b.WriteString("   " + why + "\n")
	}
}

func join(parts ...string) string {
	return joinSep(" ", parts...)
}

func joinSep(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func suffix(v, noun string) string {
	if v = strings.TrimSpace(v); v == "" {
		return ""
	}
	return v + " " + noun
}
