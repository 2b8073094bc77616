package outfit

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator"

	"suitcraft-ai/internal/preference"
)

var DefaultSafeColors = []string{"navy", "navy blue", "charcoal", "charcoal gray", "charcoal grey", "black"}

var conservativeNeckwear = []string{"bow tie", "bowtie", "ascot", "cravat", "bolo", "novelty"}

var brightColors = []string{
	"red", "scarlet", "crimson", "orange", "yellow", "mustard", "pink", "fuchsia", "magenta",
	"purple", "lavender", "lilac", "turquoise", "teal", "lime", "mint", "sky blue", "baby blue",
	"royal blue", "emerald", "kelly green", "white", "ivory", "cream", "gold", "silver",
	"beige", "tan", "khaki", "sand", "stone", "camel", "light gray", "light grey", "powder blue",
}

var paleModifiers = []string{"light ", "pale ", "pastel ", "powder ", "baby "}

type ValidatorOptions struct {
	// SafeColors overrides the suit colors rejected when the choice was delegated.
	SafeColors []string
}

// Validator classifies a candidate against the structural and business rules.
// It never mutates the candidate.
type Validator struct {
	validate   *validator.Validate
	safeColors map[string]struct{}
}

func NewValidator(opts ValidatorOptions) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	colors := opts.SafeColors
	if len(colors) == 0 {
		colors = DefaultSafeColors
	}
	safe := make(map[string]struct{}, len(colors))
	for _, c := range colors {
		safe[normalizeColor(c)] = struct{}{}
	}

	return &Validator{validate: v, safeColors: safe}
}

func (v *Validator) Validate(rec *Recommendation, prefs preference.Preferences) error {
	if rec == nil {
		return &ValidationError{Kind: MissingField, Field: "suit", Message: "recommendation is empty"}
	}
	if err := v.structural(rec); err != nil {
		return err
	}

	suitColor := strings.TrimSpace(rec.Suit.Color)

	if want, ok := prefs.ExplicitColor(); ok {
		if !strings.EqualFold(suitColor, strings.TrimSpace(want)) {
			return &ValidationError{
				Kind:    ColorPreferenceIgnored,
				Field:   "suit.color",
				Message: fmt.Sprintf("recommendation ignored the requested suit color: wanted %q, got %q", want, suitColor),
			}
		}
	}

	if v.unwantedDefault(suitColor, prefs) {
		return &ValidationError{
			Kind:    UnwantedDefaultColor,
			Field:   "suit.color",
			Message: fmt.Sprintf("recommendation fell back to a default suit color %q that was not requested", suitColor),
		}
	}

	if strings.TrimSpace(rec.Suit.Style) == "" {
		return &ValidationError{Kind: IncompleteOccasionDetail, Field: "suit.style", Message: "suit style is missing for " + occasionLabel(prefs)}
	}
	if strings.TrimSpace(rec.Neckwear.Type) == "" {
		return &ValidationError{Kind: IncompleteOccasionDetail, Field: "neckwear.type", Message: "neckwear type is missing for " + occasionLabel(prefs)}
	}

	if prefs.Conservative() {
		neck := strings.ToLower(rec.Neckwear.Type)
		for _, n := range conservativeNeckwear {
			if strings.Contains(neck, n) {
				return &ValidationError{
					Kind:    OccasionInappropriate,
					Field:   "neckwear.type",
					Message: fmt.Sprintf("%q is not a classic necktie, which %s calls for", rec.Neckwear.Type, occasionLabel(prefs)),
				}
			}
		}
		if prefs.ColorMode == preference.ColorDelegated && isBrightOrPale(suitColor) {
			return &ValidationError{
				Kind:    OccasionInappropriate,
				Field:   "suit.color",
				Message: fmt.Sprintf("suit color %q is too bright or pale for %s", suitColor, occasionLabel(prefs)),
			}
		}
	}

	return nil
}

// unwantedDefault reports a safe default color the user did not ask for. In
// palette mode only the palette's own colors are exempt.
func (v *Validator) unwantedDefault(color string, prefs preference.Preferences) bool {
	c := normalizeColor(color)
	if _, safe := v.safeColors[c]; !safe {
		return false
	}
	switch prefs.ColorMode {
	case preference.ColorDelegated:
		return true
	case preference.ColorPalette:
		for _, allowed := range prefs.PaletteColors {
			if normalizeColor(allowed) == c {
				return false
			}
		}
		return true
	}
	return false
}

func (v *Validator) structural(rec *Recommendation) error {
	if err := v.validate.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := fieldPath(verrs[0].Namespace())
			return &ValidationError{Kind: MissingField, Field: field, Message: "missing required field " + field}
		}
		return fmt.Errorf("validate recommendation: %w", err)
	}

	if rec.Justification == nil || strings.TrimSpace(*rec.Justification) == "" {
		return &ValidationError{Kind: MissingField, Field: "justification", Message: "missing required field justification"}
	}
	if rec.SeasonalNotes == nil {
		return &ValidationError{Kind: MissingField, Field: "seasonalNotes", Message: "missing required field seasonalNotes"}
	}
	return nil
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func normalizeColor(c string) string {
	return strings.Join(strings.Fields(strings.ToLower(c)), " ")
}

func isBrightOrPale(color string) bool {
	c := normalizeColor(color)
	if strings.HasPrefix(c, "dark ") || strings.HasPrefix(c, "deep ") || strings.HasPrefix(c, "midnight ") {
		return false
	}
	for _, m := range paleModifiers {
		if strings.HasPrefix(c, m) {
			return true
		}
	}
	for _, b := range brightColors {
		if c == b || strings.HasSuffix(c, " "+b) || strings.HasPrefix(c, b+" ") {
			return true
		}
	}
	return false
}

func occasionLabel(p preference.Preferences) string {
	if p.OccasionLabel != "" {
		return p.OccasionLabel
	}
	return "the occasion"
}
