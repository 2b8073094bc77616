// Package preference turns the loosely typed preference form into the
// canonical record the stylist and validator work from.
package preference

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

type ColorMode string

const (
	ColorExplicit  ColorMode = "explicit"
	ColorDelegated ColorMode = "delegated"
	ColorPalette   ColorMode = "palette"
)

const customPrefix = "custom:"

// Raw is the inbound preference payload.
type Raw struct {
	Occasion        string `json:"occasion" validate:"required,max=200"`
	ColorPreference string `json:"colorPreference" validate:"max=200"`
	SuitColor       string `json:"suitColor,omitempty" validate:"max=100"`
	FormalityLevel  string `json:"formalityLevel" validate:"max=50"`
	BodyType        string `json:"bodyType" validate:"max=50"`
	SkinTone        string `json:"skinTone" validate:"max=50"`
	Season          string `json:"season,omitempty" validate:"max=50"`
	Budget          string `json:"budget,omitempty" validate:"max=50"`
}

type Preferences struct {
	Occasion       string
	OccasionLabel  string
	CustomOccasion bool

	ColorMode     ColorMode
	Color         string
	Palette       string
	PaletteColors []string

	Formality string
	BodyType  string
	SkinTone  string
	Season    string
	Budget    string
}

// ExplicitColor reports the suit color the caller insisted on, if any.
func (p Preferences) ExplicitColor() (string, bool) {
	if p.ColorMode != ColorExplicit || p.Color == "" {
		return "", false
	}
	return p.Color, true
}

func (p Preferences) Conservative() bool {
	if p.CustomOccasion {
		return false
	}
	o, ok := occasions[p.Occasion]
	return ok && o.Conservative
}

type InvalidError struct {
	Field  string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid preferences: %s %s", e.Field, e.Reason)
}

type Normalizer struct {
	validate *validator.Validate
}

func NewNormalizer() *Normalizer {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Normalizer{validate: v}
}

var defaultNormalizer = NewNormalizer()

func Normalize(raw Raw) (Preferences, error) {
	return defaultNormalizer.Normalize(raw)
}

func (n *Normalizer) Normalize(raw Raw) (Preferences, error) {
	raw = trimRaw(raw)

	if err := n.validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			reason := "is invalid"
			switch fe.Tag() {
			case "required":
				reason = "is required"
			case "max":
				reason = "is too long"
			}
			return Preferences{}, &InvalidError{Field: fe.Field(), Reason: reason}
		}
		return Preferences{}, fmt.Errorf("validate preferences: %w", err)
	}

	var p Preferences
	if err := resolveOccasion(&p, raw.Occasion); err != nil {
		return Preferences{}, err
	}
	resolveColor(&p, raw.ColorPreference, raw.SuitColor)

	p.Formality = pick(formalityLevels, raw.FormalityLevel, DefaultFormality)
	p.BodyType = pick(bodyTypes, raw.BodyType, DefaultBodyType)
	p.SkinTone = pick(skinTones, raw.SkinTone, DefaultSkinTone)
	p.Season = pick(seasons, raw.Season, "")
	p.Budget = pick(budgets, raw.Budget, "")

	return p, nil
}

func resolveOccasion(p *Preferences, value string) error {
	key := strings.ToLower(value)
	if strings.HasPrefix(key, customPrefix) {
		text := strings.TrimSpace(value[len(customPrefix):])
		if text == "" {
			return &InvalidError{Field: "occasion", Reason: "has an empty custom value"}
		}
		p.Occasion = OccasionCustom
		p.OccasionLabel = text
		p.CustomOccasion = true
		return nil
	}

	if o, ok := occasions[key]; ok {
		p.Occasion = key
		p.OccasionLabel = o.Name
		return nil
	}

	p.Occasion = OccasionCustom
	p.OccasionLabel = value
	p.CustomOccasion = true
	return nil
}

func resolveColor(p *Preferences, preference, suitColor string) {
	if suitColor != "" {
		p.ColorMode = ColorExplicit
		p.Color = suitColor
		return
	}

	key := strings.ToLower(preference)
	if strings.HasPrefix(key, customPrefix) {
		text := strings.TrimSpace(preference[len(customPrefix):])
		if text != "" {
			p.ColorMode = ColorExplicit
			p.Color = text
			return
		}
		key = ""
	}

	if _, ok := delegatedColors[key]; ok {
		p.ColorMode = ColorDelegated
		return
	}

	if pal, ok := palettes[key]; ok {
		p.ColorMode = ColorPalette
		p.Palette = key
		p.PaletteColors = append([]string(nil), pal.Colors...)
		return
	}

	p.ColorMode = ColorExplicit
	p.Color = preference
}

func pick(known map[string]string, value, fallback string) string {
	key := strings.ToLower(value)
	if _, ok := known[key]; ok {
		return key
	}
	return fallback
}

func trimRaw(raw Raw) Raw {
	raw.Occasion = strings.TrimSpace(raw.Occasion)
	raw.ColorPreference = strings.TrimSpace(raw.ColorPreference)
	raw.SuitColor = strings.TrimSpace(raw.SuitColor)
	raw.FormalityLevel = strings.TrimSpace(raw.FormalityLevel)
	raw.BodyType = strings.TrimSpace(raw.BodyType)
	raw.SkinTone = strings.TrimSpace(raw.SkinTone)
	raw.Season = strings.TrimSpace(raw.Season)
	raw.Budget = strings.TrimSpace(raw.Budget)
	return raw
}
