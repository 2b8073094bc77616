// Package lookbook renders a recommended outfit as a set of preview images
// of one consistent model seen from several angles.
package lookbook

import (
	"fmt"
	"slices"
	"strings"

	"suitcraft-ai/internal/dashscope"
	"suitcraft-ai/internal/outfit"
	"suitcraft-ai/internal/preference"
)

const (
	ViewFront = "front"
	ViewSide  = "side"
	ViewBack  = "back"

	styleSuffix       = "professional fashion photography with studio lighting"
	genericBackground = "a clean, neutral photography studio backdrop with soft even light"
)

var DefaultViews = []string{ViewFront, ViewSide, ViewBack}

// NegativeGuidance lists what no view may show. It is appended to every
// prompt so command runners without a negative-prompt channel still get it.
var NegativeGuidance = dashscope.DefaultNegativePrompt

type ImageRequest struct {
	View       string
	Prompt     string
	Background string
	Negative   string
}

var viewDirections = map[string]string{
	ViewFront: "front view, facing directly at the camera, showing the complete outfit from the front",
	ViewSide:  "side view, perfect 90-degree profile shot, showing the suit's silhouette from the side",
	ViewBack:  "back view, facing directly away from the camera, showing how the suit fits from behind",
}

var occasionBackgrounds = map[string]string{
	"wedding":    "an elegant garden wedding venue with floral arches and soft afternoon light",
	"interview":  "a bright modern corporate office lobby",
	"business":   "a contemporary glass-walled boardroom overlooking the city",
	"date":       "an upscale restaurant with warm candlelit evening ambience",
	"gala":       "a grand ballroom with crystal chandeliers",
	"graduation": "a sunny university campus courtyard with stone architecture",
	"funeral":    "a quiet, softly lit chapel interior with muted tones",
	"cocktail":   "a stylish rooftop cocktail lounge at dusk",
}

var skinDescriptions = map[string]string{
	"fair":   "fair-skinned",
	"medium": "medium-skinned",
	"olive":  "olive-skinned",
	"dark":   "dark-skinned",
}

var buildDescriptions = map[string]string{
	"slim":     "slim",
	"athletic": "athletic",
	"average":  "average",
	"broad":    "broad-shouldered",
}

type ComposerOptions struct {
	Views []string
}

type Composer struct {
	views []string
}

func NewComposer(opts ComposerOptions) *Composer {
	var views []string
	for _, v := range opts.Views {
		v = strings.ToLower(strings.TrimSpace(v))
		if _, ok := viewDirections[v]; ok && !slices.Contains(views, v) {
			views = append(views, v)
		}
	}
	if len(views) == 0 {
		views = append(views, DefaultViews...)
	}
	return &Composer{views: views}
}

func (c *Composer) Views() []string {
	return append([]string(nil), c.views...)
}

// Compose builds one request per configured view. Every prompt repeats the
// same identity and outfit text verbatim.
func (c *Composer) Compose(o outfit.Outfit, p preference.Preferences) []ImageRequest {
	identity := Identity(p)
	wearing := DescribeOutfit(o)
	background := Background(p)

	out := make([]ImageRequest, 0, len(c.views))
	for _, view := range c.views {
		var b strings.Builder
		b.WriteString("Full-body photorealistic photograph of ")
		b.WriteString(identity)
		b.WriteString(", wearing ")
		b.WriteString(wearing)
		b.WriteString(". Setting: ")
		b.WriteString(background)
		b.WriteString(". ")
		b.WriteString(viewDirections[view])
		b.WriteString(". This is the same person in every view of the series: same face, same build, same hairstyle, same outfit. ")
		b.WriteString(styleSuffix)
		b.WriteString(". Avoid: ")
		b.WriteString(NegativeGuidance)
		b.WriteString(".")

		out = append(out, ImageRequest{View: view, Prompt: b.String(), Background: background, Negative: NegativeGuidance})
	}
	return out
}

// Identity is the fixed description of the model wearing the outfit.
func Identity(p preference.Preferences) string {
	skin, ok := skinDescriptions[p.SkinTone]
	if !ok {
		skin = skinDescriptions[preference.DefaultSkinTone]
	}
	build, ok := buildDescriptions[p.BodyType]
	if !ok {
		build = buildDescriptions[preference.DefaultBodyType]
	}
	return fmt.Sprintf("a %s man in his early thirties with a %s build, short neatly groomed dark hair, clean-shaven, calm confident expression", skin, build)
}

func Background(p preference.Preferences) string {
	if !p.CustomOccasion {
		if bg, ok := occasionBackgrounds[p.Occasion]; ok {
			return bg
		}
	}
	return genericBackground
}

// DescribeOutfit renders every filled field of the outfit as prose.
func DescribeOutfit(o outfit.Outfit) string {
	var parts []string

	suit := phrase(o.Suit.Color, o.Suit.Pattern, o.Suit.Fabric, o.Suit.Style, "suit")
	if o.Suit.Fit != "" {
		suit += " with a " + o.Suit.Fit + " fit"
	}
	if len(o.Suit.Pieces) > 0 {
		suit += " (" + strings.Join(o.Suit.Pieces, ", ") + ")"
	}
	parts = append(parts, "a "+suit)

	shirt := phrase(o.Shirt.Color, o.Shirt.Fabric, o.Shirt.Fit, "shirt")
	var details []string
	if o.Shirt.Collar != "" {
		details = append(details, "a "+o.Shirt.Collar+" collar")
	}
	if o.Shirt.Cuffs != "" {
		details = append(details, o.Shirt.Cuffs+" cuffs")
	}
	if len(details) > 0 {
		shirt += " with " + strings.Join(details, " and ")
	}
	parts = append(parts, "a "+shirt)

	if neck := phrase(o.Neckwear.Color, o.Neckwear.Pattern, o.Neckwear.Material, o.Neckwear.Type); neck != "" {
		parts = append(parts, "a "+neck)
	}
	if shoes := phrase(o.Shoes.Color, o.Shoes.Material, o.Shoes.Style, o.Shoes.Type); shoes != "" {
		parts = append(parts, shoes+" shoes")
	}

	if l := o.Layering; !l.Empty() {
		if l.Outerwear != "" {
			parts = append(parts, l.Outerwear)
		}
		if l.Vest != "" {
			parts = append(parts, l.Vest+" vest")
		}
		if l.PocketSquare != "" {
			parts = append(parts, l.PocketSquare+" pocket square")
		}
	}

	if len(o.Accessories) > 0 {
		parts = append(parts, "accessorized with "+strings.Join(o.Accessories, ", "))
	}

	return strings.Join(parts, ", ")
}

func phrase(words ...string) string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

