// Package stylist composes the instructions sent to the text model.
package stylist

import (
	"fmt"
	"strings"

	"suitcraft-ai/internal/outfit"
	"suitcraft-ai/internal/preference"
)

type Prompt struct {
	System string
	User   string
}

// Combined joins both parts for backends that take a single prompt string.
func (p Prompt) Combined() string {
	return p.System + "\n" + p.User
}

type OccasionGuide struct {
	Mood       string
	Colors     []string
	Neckwear   []string
	Rules      []string
	Expressive bool
}

var occasionGuides = map[string]OccasionGuide{
	"wedding": {
		Mood:       "celebratory and refined",
		Colors:     []string{"burgundy", "forest green", "light gray", "tan", "cream", "dusty blue", "sage"},
		Neckwear:   []string{"silk necktie", "bow tie", "ascot", "knit tie"},
		Rules:      []string{"Never outshine the groom: avoid all-white or all-black unless the invitation asks for it.", "Seasonal fabrics and lighter tones are welcome for daytime ceremonies."},
		Expressive: true,
	},
	"interview": {
		Mood:     "competent and trustworthy",
		Colors:   []string{"dark slate gray", "midnight blue", "deep brown", "dark olive"},
		Neckwear: []string{"classic silk necktie"},
		Rules:    []string{"Solid or very subtle patterns only.", "No bow ties, ascots or novelty neckwear."},
	},
	"business": {
		Mood:     "polished and authoritative",
		Colors:   []string{"dark slate gray", "midnight blue", "deep brown", "dark olive", "oxford gray"},
		Neckwear: []string{"classic silk necktie"},
		Rules:    []string{"Keep patterns to pinstripe, chalk stripe or subtle check.", "No bow ties, ascots or novelty neckwear."},
	},
	"date": {
		Mood:       "confident and approachable",
		Colors:     []string{"burgundy", "forest green", "tan", "cobalt", "camel", "olive"},
		Neckwear:   []string{"knit tie", "silk necktie", "open collar with pocket square"},
		Rules:      []string{"A softer, less corporate silhouette is encouraged."},
		Expressive: true,
	},
	"gala": {
		Mood:       "elegant and memorable",
		Colors:     []string{"midnight blue", "deep burgundy", "emerald", "ivory dinner jacket"},
		Neckwear:   []string{"bow tie", "silk necktie"},
		Rules:      []string{"Black tie conventions apply when formality is black-tie: peak or shawl lapels with satin facings."},
		Expressive: true,
	},
	"graduation": {
		Mood:       "proud and fresh",
		Colors:     []string{"medium gray", "tan", "light blue", "olive", "burgundy"},
		Neckwear:   []string{"silk necktie", "knit tie", "bow tie"},
		Rules:      []string{"Comfort matters for a long ceremony; suggest breathable fabrics."},
		Expressive: true,
	},
	"funeral": {
		Mood:     "respectful and understated",
		Colors:   []string{"dark slate gray", "midnight blue", "deep brown", "dark charcoal brown"},
		Neckwear: []string{"plain dark necktie"},
		Rules:    []string{"Muted, solid colors only; nothing bright or glossy.", "No bow ties, ascots, novelty neckwear or loud accessories."},
	},
	"cocktail": {
		Mood:       "stylish and sociable",
		Colors:     []string{"burgundy", "emerald", "cobalt", "plum", "forest green", "tan"},
		Neckwear:   []string{"silk necktie", "bow tie", "knit tie", "ascot"},
		Rules:      []string{"Textured fabrics such as velvet or hopsack are welcome in the evening."},
		Expressive: true,
	},
}

var customGuide = OccasionGuide{
	Mood:     "appropriate to the described event",
	Neckwear: []string{"silk necktie", "knit tie", "bow tie if the event is festive"},
	Rules:    []string{"Infer the formality of the event from its description and dress one notch above it."},
}

var formalityGuides = map[string]string{
	"black-tie":       "Black tie: dinner suit or tuxedo, formal shirt with wing or turndown collar, black patent or polished oxfords.",
	"formal":          "Formal: a matching two- or three-piece suit, dress shirt, tie, dark leather oxfords.",
	"semi-formal":     "Semi-formal: a suit or well-matched jacket and trousers, tie optional for relaxed venues.",
	"business-casual": "Business casual: tailored jacket and trousers, open collar acceptable, loafers or derbies.",
}

var bodyGuides = map[string]string{
	"slim":     "Slim build: add visual width with structured shoulders, textured fabrics and horizontal details.",
	"athletic": "Athletic build: tailored fit with room in the chest and shoulders, tapered trousers.",
	"average":  "Average build: classic tailored fit with balanced proportions.",
	"broad":    "Broad build: vertical lines, darker tones on the jacket, single-breasted with a lower button stance.",
}

var skinGuides = map[string]string{
	"fair":   "Fair skin: medium-to-deep tones give contrast; avoid washed-out pastels next to the face.",
	"medium": "Medium skin: most mid and jewel tones work; earthy and rich colors are flattering.",
	"olive":  "Olive skin: earth tones, warm neutrals and deep greens complement the undertone.",
	"dark":   "Dark skin: strong contrasts and rich or bright accents work well; pastel shirts stand out nicely.",
}

var seasonGuides = map[string]string{
	"spring": "Spring: lighter wools, cotton blends and softer colors.",
	"summer": "Summer: linen, tropical wool or seersucker; half-lined jackets.",
	"fall":   "Fall: flannel, tweed and richer autumn colors.",
	"winter": "Winter: heavier wools, flannel and layering with an overcoat.",
}

var budgetGuides = map[string]string{
	"budget":    "Budget: durable blends and versatile pieces that can be reused.",
	"mid-range": "Mid-range: quality wool and good construction without luxury labels.",
	"premium":   "Premium: fine wools, half-canvas construction, leather-soled shoes.",
	"luxury":    "Luxury: bespoke-level fabrics and full-canvas tailoring.",
}

const responseShape = `{
  "suit": {"style": "", "color": "", "fabric": "", "pattern": "", "fit": "", "pieces": [""], "justification": ""},
  "shirt": {"color": "", "fabric": "", "collar": "", "cuffs": "", "fit": "", "justification": ""},
  "neckwear": {"type": "", "color": "", "pattern": "", "material": "", "justification": ""},
  "shoes": {"type": "", "color": "", "material": "", "style": "", "justification": ""},
  "accessories": [""],
  "layering": {"outerwear": "", "vest": "", "pocket_square": ""},
  "justification": "",
  "seasonalNotes": "",
  "styleNotes": [""]
}`

func guideFor(p preference.Preferences) OccasionGuide {
	if g, ok := occasionGuides[p.Occasion]; ok && !p.CustomOccasion {
		return g
	}
	return customGuide
}

// Build composes the system and user instructions for one recommendation.
func Build(p preference.Preferences, safeColors []string) Prompt {
	if len(safeColors) == 0 {
		safeColors = outfit.DefaultSafeColors
	}
	guide := guideFor(p)

	var sys strings.Builder
	sys.Grow(4096)

	sys.WriteString("ROLE: You are a master menswear stylist who builds complete formal outfits.\n\n")

	sys.WriteString("OUTPUT FORMAT (STRICT):\n")
	sys.WriteString("- Reply with exactly one JSON object and nothing else.\n")
	sys.WriteString("- No prose before or after it, no markdown, no code fences.\n")
	sys.WriteString("- Every string field must be filled with a concrete value.\n")
	sys.WriteString("- accessories and styleNotes are JSON arrays of strings.\n")
	sys.WriteString("- layering is optional; omit fields that do not apply.\n")
	sys.WriteString("Shape:\n")
	sys.WriteString(responseShape)
	sys.WriteString("\n\n")

	sys.WriteString("SUIT COLOR RULES:\n")
	for _, line := range colorRules(p, safeColors) {
		sys.WriteString("- " + line + "\n")
	}
	sys.WriteString("\n")

	sys.WriteString("OCCASION RULES:\n")
	if p.Conservative() {
		writeSection(&sys, "Conservative occasion", []string{
			"Use conservative, dark colors.",
			"Neckwear must be a classic necktie; never a bow tie, ascot, cravat or novelty tie.",
		})
	} else if guide.Expressive {
		writeSection(&sys, "Expressive occasion", []string{
			"Expanded neckwear is allowed: " + strings.Join(guide.Neckwear, ", ") + ".",
			"A wider color palette is welcome when it suits the event.",
		})
	}
	writeSection(&sys, "Mood", []string{guide.Mood})
	writeSection(&sys, "Guidance", guide.Rules)
	sys.WriteString("\n")

	sys.WriteString("QUALITY BAR:\n")
	for _, line := range []string{
		"suit.style and neckwear.type must always be specified.",
		"Every justification explains the choice for this person and occasion.",
		"Harmonize shirt, neckwear and shoes with the suit color.",
	} {
		sys.WriteString("- " + line + "\n")
	}

	var user strings.Builder
	user.Grow(1024)
	user.WriteString("Recommend a complete formal outfit.\n\n")
	user.WriteString("CLIENT PROFILE:\n")
	user.WriteString(fmt.Sprintf("- Occasion: %s\n", p.OccasionLabel))
	user.WriteString(fmt.Sprintf("- Suit color: %s\n", colorSummary(p)))

	var notes []string
	if line, ok := formalityGuides[p.Formality]; ok {
		notes = append(notes, line)
	}
	if line, ok := bodyGuides[p.BodyType]; ok {
		notes = append(notes, line)
	}
	if line, ok := skinGuides[p.SkinTone]; ok {
		notes = append(notes, line)
	}
	if line, ok := seasonGuides[p.Season]; ok {
		notes = append(notes, line)
	}
	if line, ok := budgetGuides[p.Budget]; ok {
		notes = append(notes, line)
	}
	writeSection(&user, "Tailoring notes", uniq(notes))

	if len(guide.Colors) > 0 && p.ColorMode == preference.ColorDelegated {
		writeSection(&user, "Colors that suit this occasion", guide.Colors)
	}
	user.WriteString("\nReturn only the JSON object.")

	return Prompt{
		System: strings.TrimSpace(sys.String()),
		User:   strings.TrimSpace(user.String()),
	}
}

func colorRules(p preference.Preferences, safeColors []string) []string {
	switch p.ColorMode {
	case preference.ColorExplicit:
		return []string{
			fmt.Sprintf("The client requested the suit color %q. suit.color MUST be exactly %q.", p.Color, p.Color),
			"Do not substitute, shade or rename the requested color.",
			"Build the rest of the outfit around that color.",
		}
	case preference.ColorPalette:
		return []string{
			fmt.Sprintf("Choose the suit color from the %s family: %s.", p.Palette, strings.Join(p.PaletteColors, ", ")),
			"State the chosen color plainly in suit.color.",
		}
	default:
		return []string{
			"The client delegated the color choice to you.",
			fmt.Sprintf("Do NOT default to %s; pick a deliberate color that fits the occasion and the client.", strings.Join(safeColors, ", ")),
			"Name the color specifically (for example \"midnight blue\" rather than \"blue\").",
		}
	}
}

func colorSummary(p preference.Preferences) string {
	switch p.ColorMode {
	case preference.ColorExplicit:
		return p.Color + " (required)"
	case preference.ColorPalette:
		return p.Palette + " palette"
	default:
		return "stylist's choice"
	}
}

// Retry returns the prompt for the next attempt after a rejected candidate.
func Retry(base Prompt, violation *outfit.ValidationError, p preference.Preferences) Prompt {
	if violation == nil {
		return base
	}

	var b strings.Builder
	b.WriteString(base.User)
	b.WriteString("\n\nCORRECTION: your previous answer was rejected.\n")
	b.WriteString("- Problem: " + violation.Message + "\n")

	switch violation.Kind {
	case outfit.ColorPreferenceIgnored:
		b.WriteString(fmt.Sprintf("- Set suit.color to exactly %q.\n", p.Color))
	case outfit.UnwantedDefaultColor:
		b.WriteString("- Pick a different, more distinctive suit color.\n")
	case outfit.MissingField, outfit.IncompleteOccasionDetail:
		b.WriteString("- Fill in " + violation.Field + " and every other required field.\n")
	case outfit.OccasionInappropriate:
		b.WriteString("- Follow the occasion rules for " + violation.Field + ".\n")
	}
	b.WriteString("Return only the corrected JSON object.")

	return Prompt{System: base.System, User: b.String()}
}

// Diversify asks for a different combination after a valid answer was
// sampled away.
func Diversify(base Prompt) Prompt {
	return Prompt{
		System: base.System,
		User:   base.User + "\n\nOffer a fresh combination that differs from the most common choice for this profile. Return only the JSON object.",
	}
}

func writeSection(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	b.WriteString("- " + title + ":\n")
	for _, line := range lines {
		b.WriteString("  - " + line + "\n")
	}
}

func uniq(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
