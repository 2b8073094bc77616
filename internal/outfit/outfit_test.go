package outfit

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitcraft-ai/internal/preference"
)

const sampleJSON = `{
  "suit": {"style": "two-piece single-breasted", "color": "Burgundy", "fabric": "wool", "pattern": "solid", "fit": "tailored", "pieces": ["jacket", "trousers"], "justification": "rich and confident"},
  "shirt": {"color": "white", "fabric": "poplin", "collar": "spread", "cuffs": "barrel", "fit": "slim", "justification": "clean base"},
  "neckwear": {"type": "silk necktie", "color": "navy", "pattern": "pin dot", "material": "silk", "justification": "anchors the burgundy"},
  "shoes": {"type": "oxford", "color": "dark brown", "material": "calf leather", "style": "cap toe", "justification": "classic"},
  "accessories": {"watch": "steel dress watch", "belt": "dark brown leather belt", "count": 2},
  "layering": {"pocket_square": "white linen"},
  "justification": "A business look with character.",
  "seasonalNotes": "Works year round.",
  "styleNotes": "Keep the jacket buttoned when standing."
}`

func mustParse(t *testing.T, raw string) *Recommendation {
	t.Helper()
	rec, err := Parse(raw)
	require.NoError(t, err)
	return rec
}

func prefsFor(color, occasion string) preference.Preferences {
	p, err := preference.Normalize(preference.Raw{Occasion: occasion, ColorPreference: color})
	if err != nil {
		panic(err)
	}
	return p
}

func TestParseStripsFences(t *testing.T) {
	for _, wrapped := range []string{
		"```json\n" + sampleJSON + "\n```",
		"```JSON\n" + sampleJSON + "\n```",
		"```\n" + sampleJSON + "\n```",
		"Here is your outfit:\n" + sampleJSON + "\nEnjoy!",
		sampleJSON,
	} {
		rec := mustParse(t, wrapped)
		require.NotNil(t, rec.Suit)
		assert.Equal(t, "Burgundy", rec.Suit.Color)
	}
}

func TestParseCoercesLists(t *testing.T) {
	rec := mustParse(t, sampleJSON)
	assert.Equal(t, StringList{"steel dress watch", "dark brown leather belt"}, rec.Accessories)
	assert.Equal(t, StringList{"Keep the jacket buttoned when standing."}, rec.StyleNotes)
	assert.Equal(t, StringList{"jacket", "trousers"}, rec.Suit.Pieces)
}

func TestParseMalformed(t *testing.T) {
	for _, raw := range []string{"", "I cannot help with that", "```json\n{\"suit\": \n```", `{"suit": "navy"}`} {
		_, err := Parse(raw)
		require.Error(t, err)
		assert.True(t, IsMalformed(err), "raw %q", raw)
	}
}

func TestNormalizeList(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want StringList
	}{
		{name: "array", in: `["a", "b"]`, want: StringList{"a", "b"}},
		{name: "string", in: `"tie clip"`, want: StringList{"tie clip"}},
		{name: "object keeps order", in: `{"z": "cufflinks", "a": "watch", "n": 3}`, want: StringList{"cufflinks", "watch"}},
		{name: "number", in: `42`, want: StringList{}},
		{name: "null", in: `null`, want: StringList{}},
		{name: "mixed array", in: `["a", 1, {"b": "c"}, " "]`, want: StringList{"a"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeList([]byte(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeListIdempotent(t *testing.T) {
	for _, in := range []string{`{"a": "watch", "b": "belt"}`, `"single"`, `["x", "y"]`, `7`} {
		once, err := NormalizeList([]byte(in))
		require.NoError(t, err)

		encoded, err := json.Marshal(once)
		require.NoError(t, err)

		twice, err := NormalizeList(encoded)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestValidateAccepts(t *testing.T) {
	v := NewValidator(ValidatorOptions{})
	rec := mustParse(t, sampleJSON)
	require.NoError(t, v.Validate(rec, prefsFor("burgundy", "business")))
}

func TestValidateMissingField(t *testing.T) {
	v := NewValidator(ValidatorOptions{})
	prefs := prefsFor("Burgundy", "business")

	cases := []struct {
		name  string
		edit  func(m map[string]any)
		field string
	}{
		{name: "no shirt", edit: func(m map[string]any) { delete(m, "shirt") }, field: "shirt"},
		{name: "blank fabric", edit: func(m map[string]any) { m["suit"].(map[string]any)["fabric"] = "  " }, field: "suit.fabric"},
		{name: "no accessories", edit: func(m map[string]any) { delete(m, "accessories") }, field: "accessories"},
		{name: "no justification", edit: func(m map[string]any) { delete(m, "justification") }, field: "justification"},
		{name: "no seasonal notes", edit: func(m map[string]any) { delete(m, "seasonalNotes") }, field: "seasonalNotes"},
		{name: "no shoe material", edit: func(m map[string]any) { delete(m["shoes"].(map[string]any), "material") }, field: "shoes.material"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var m map[string]any
			require.NoError(t, json.Unmarshal([]byte(sampleJSON), &m))
			tc.edit(m)
			raw, err := json.Marshal(m)
			require.NoError(t, err)

			err = v.Validate(mustParse(t, string(raw)), prefs)
			verr, ok := AsValidation(err)
			require.True(t, ok, "err %v", err)
			assert.Equal(t, MissingField, verr.Kind)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestValidateEmptySeasonalNotesAllowed(t *testing.T) {
	v := NewValidator(ValidatorOptions{})
	raw := strings.Replace(sampleJSON, `"Works year round."`, `""`, 1)
	require.NoError(t, v.Validate(mustParse(t, raw), prefsFor("Burgundy", "business")))
}

func TestValidateColorFidelity(t *testing.T) {
	v := NewValidator(ValidatorOptions{})
	rec := mustParse(t, strings.Replace(sampleJSON, `"color": "Burgundy"`, `"color": "Navy"`, 1))

	err := v.Validate(rec, prefsFor("Burgundy", "business"))
	verr, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, ColorPreferenceIgnored, verr.Kind)
	assert.Equal(t, "suit.color", verr.Field)

	// An explicit request for a safe color is honored, not flagged.
	require.NoError(t, v.Validate(rec, prefsFor("navy", "business")))
}

func TestValidateAntiDefault(t *testing.T) {
	v := NewValidator(ValidatorOptions{})
	delegated := prefsFor("ai-pick", "wedding")

	for _, color := range []string{"Navy", "navy  blue", "CHARCOAL GREY", "Black"} {
		rec := mustParse(t, strings.Replace(sampleJSON, `"color": "Burgundy"`, `"color": "`+color+`"`, 1))
		verr, ok := AsValidation(v.Validate(rec, delegated))
		require.True(t, ok, color)
		assert.Equal(t, UnwantedDefaultColor, verr.Kind, color)
	}

	rec := mustParse(t, strings.Replace(sampleJSON, `"color": "Burgundy"`, `"color": "Midnight Blue"`, 1))
	require.NoError(t, v.Validate(rec, delegated))

	cases := []struct {
		palette string
		color   string
		wantErr bool
	}{
		{palette: "classic", color: "Charcoal"},
		{palette: "classic", color: "navy"},
		{palette: "earth", color: "Navy", wantErr: true},
		{palette: "bold", color: "Navy", wantErr: true},
		{palette: "light", color: "Black", wantErr: true},
		{palette: "earth", color: "charcoal grey", wantErr: true},
		{palette: "earth", color: "Olive"},
		{palette: "bold", color: "Burgundy"},
	}
	for _, tc := range cases {
		t.Run(tc.palette+"/"+tc.color, func(t *testing.T) {
			rec := mustParse(t, strings.Replace(sampleJSON, `"color": "Burgundy"`, `"color": "`+tc.color+`"`, 1))
			err := v.Validate(rec, prefsFor(tc.palette, "wedding"))
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			verr, ok := AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, UnwantedDefaultColor, verr.Kind)
			assert.Equal(t, "suit.color", verr.Field)
		})
	}
}

func TestValidateCustomSafeColors(t *testing.T) {
	v := NewValidator(ValidatorOptions{SafeColors: []string{"Burgundy"}})
	verr, ok := AsValidation(v.Validate(mustParse(t, sampleJSON), prefsFor("ai-pick", "date")))
	require.True(t, ok)
	assert.Equal(t, UnwantedDefaultColor, verr.Kind)
}

func TestValidateOccasionDetail(t *testing.T) {
	v := NewValidator(ValidatorOptions{})
	prefs := prefsFor("Burgundy", "wedding")

	rec := mustParse(t, strings.Replace(sampleJSON, `"style": "two-piece single-breasted"`, `"style": ""`, 1))
	verr, ok := AsValidation(v.Validate(rec, prefs))
	require.True(t, ok)
	assert.Equal(t, IncompleteOccasionDetail, verr.Kind)
	assert.Equal(t, "suit.style", verr.Field)

	rec = mustParse(t, strings.Replace(sampleJSON, `"type": "silk necktie", `, ``, 1))
	verr, ok = AsValidation(v.Validate(rec, prefs))
	require.True(t, ok)
	assert.Equal(t, IncompleteOccasionDetail, verr.Kind)
	assert.Equal(t, "neckwear.type", verr.Field)
}

func TestValidateConservativeOccasion(t *testing.T) {
	v := NewValidator(ValidatorOptions{})

	// A business occasion keeps a classic necktie.
	bow := mustParse(t, strings.Replace(sampleJSON, `"type": "silk necktie"`, `"type": "Bow Tie"`, 1))
	verr, ok := AsValidation(v.Validate(bow, prefsFor("Burgundy", "business")))
	require.True(t, ok)
	assert.Equal(t, OccasionInappropriate, verr.Kind)

	// The same bow tie is fine at a gala.
	require.NoError(t, v.Validate(bow, prefsFor("Burgundy", "gala")))

	// A delegated funeral color must stay dark.
	funeral := prefsFor("ai-pick", "funeral")
	for _, color := range []string{
		"Royal Blue", "Cream", "light pink",
		"Light Gray", "Beige", "Tan", "Khaki", "Sand", "Stone", "Powder Blue", "pale olive", "Pastel Green",
	} {
		rec := mustParse(t, strings.Replace(sampleJSON, `"color": "Burgundy"`, `"color": "`+color+`"`, 1))
		verr, ok := AsValidation(v.Validate(rec, funeral))
		require.True(t, ok, color)
		assert.Equal(t, OccasionInappropriate, verr.Kind, color)
	}
	rec := mustParse(t, strings.Replace(sampleJSON, `"color": "Burgundy"`, `"color": "Dark Slate Gray"`, 1))
	require.NoError(t, v.Validate(rec, funeral))
}

func TestValidateDoesNotMutate(t *testing.T) {
	v := NewValidator(ValidatorOptions{})
	rec := mustParse(t, sampleJSON)
	before, err := json.Marshal(rec)
	require.NoError(t, err)

	_ = v.Validate(rec, prefsFor("Teal", "business"))

	after, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestSettleAndEmpty(t *testing.T) {
	o := mustParse(t, sampleJSON).Settle()
	assert.Equal(t, "Burgundy", o.Suit.Color)
	require.NotNil(t, o.Layering)
	assert.Equal(t, "white linen", o.Layering.PocketSquare)

	raw, err := json.Marshal(Empty())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{"suit", "shirt", "neckwear", "shoes", "accessories", "justification", "seasonalNotes", "styleNotes"} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, []any{}, m["accessories"])
	assert.Equal(t, []any{}, m["styleNotes"])
	assert.NotContains(t, m, "layering")
}
