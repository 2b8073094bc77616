package preference

type NamedOption struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type Occasion struct {
	Name string
	// Conservative occasions keep to dark classic colors and a plain necktie.
	Conservative bool
}

type Palette struct {
	Name   string
	Colors []string
}

const (
	OccasionCustom = "custom"

	DefaultFormality = "formal"
	DefaultBodyType  = "average"
	DefaultSkinTone  = "medium"
)

var occasions = map[string]Occasion{
	"wedding":    {Name: "Wedding"},
	"interview":  {Name: "Job Interview", Conservative: true},
	"business":   {Name: "Business Meeting", Conservative: true},
	"date":       {Name: "Date Night"},
	"gala":       {Name: "Gala / Black Tie Event"},
	"graduation": {Name: "Graduation"},
	"funeral":    {Name: "Funeral", Conservative: true},
	"cocktail":   {Name: "Cocktail Party"},
}

var palettes = map[string]Palette{
	"classic": {Name: "Classic", Colors: []string{"Navy", "Charcoal", "Black"}},
	"earth":   {Name: "Earth Tones", Colors: []string{"Brown", "Tan", "Olive"}},
	"bold":    {Name: "Bold", Colors: []string{"Burgundy", "Forest Green"}},
	"light":   {Name: "Light", Colors: []string{"Light Gray", "Cream"}},
}

var formalityLevels = map[string]string{
	"black-tie":       "Black Tie",
	"formal":          "Formal",
	"semi-formal":     "Semi-Formal",
	"business-casual": "Business Casual",
}

var bodyTypes = map[string]string{
	"slim":     "Slim",
	"athletic": "Athletic",
	"average":  "Average",
	"broad":    "Broad",
}

var skinTones = map[string]string{
	"fair":   "Fair",
	"medium": "Medium",
	"olive":  "Olive",
	"dark":   "Dark",
}

var seasons = map[string]string{
	"spring": "Spring",
	"summer": "Summer",
	"fall":   "Fall",
	"winter": "Winter",
}

var budgets = map[string]string{
	"budget":    "Budget",
	"mid-range": "Mid-Range",
	"premium":   "Premium",
	"luxury":    "Luxury",
}

// delegatedColors are the colorPreference values that hand the choice to the model.
var delegatedColors = map[string]struct{}{
	"":              {},
	"ai-pick":       {},
	"no-preference": {},
	"any":           {},
}

func LookupOccasion(key string) (Occasion, bool) {
	o, ok := occasions[key]
	return o, ok
}

func LookupPalette(key string) (Palette, bool) {
	p, ok := palettes[key]
	if !ok {
		return Palette{}, false
	}
	p.Colors = append([]string(nil), p.Colors...)
	return p, true
}

func Occasions() []NamedOption {
	return ordered([]string{"wedding", "interview", "business", "date", "gala", "graduation", "funeral", "cocktail"},
		func(k string) (string, bool) {
			o, ok := occasions[k]
			return o.Name, ok
		})
}

func Palettes() []NamedOption {
	out := ordered([]string{"classic", "earth", "bold", "light"}, func(k string) (string, bool) {
		p, ok := palettes[k]
		return p.Name, ok
	})
	return append(out, NamedOption{Key: "ai-pick", Name: "Let AI pick"})
}

func FormalityLevels() []NamedOption {
	return ordered([]string{"black-tie", "formal", "semi-formal", "business-casual"}, lookup(formalityLevels))
}

func BodyTypes() []NamedOption {
	return ordered([]string{"slim", "athletic", "average", "broad"}, lookup(bodyTypes))
}

func SkinTones() []NamedOption {
	return ordered([]string{"fair", "medium", "olive", "dark"}, lookup(skinTones))
}

func Seasons() []NamedOption {
	return ordered([]string{"spring", "summer", "fall", "winter"}, lookup(seasons))
}

func Budgets() []NamedOption {
	return ordered([]string{"budget", "mid-range", "premium", "luxury"}, lookup(budgets))
}

func lookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func ordered(order []string, name func(string) (string, bool)) []NamedOption {
	out := make([]NamedOption, 0, len(order))
	for _, key := range order {
		if n, ok := name(key); ok {
			out = append(out, NamedOption{Key: key, Name: n})
		}
	}
	return out
}
