// Package outfit holds the recommendation model plus the parser and the
// rule checks applied to raw model output.
package outfit

type Suit struct {
	Style         string     `json:"style"`
	Color         string     `json:"color" validate:"notblank"`
	Fabric        string     `json:"fabric" validate:"notblank"`
	Pattern       string     `json:"pattern" validate:"notblank"`
	Fit           string     `json:"fit" validate:"notblank"`
	Pieces        StringList `json:"pieces"`
	Justification string     `json:"justification" validate:"notblank"`
}

type Shirt struct {
	Color         string `json:"color" validate:"notblank"`
	Fabric        string `json:"fabric" validate:"notblank"`
	Collar        string `json:"collar" validate:"notblank"`
	Cuffs         string `json:"cuffs" validate:"notblank"`
	Fit           string `json:"fit" validate:"notblank"`
	Justification string `json:"justification" validate:"notblank"`
}

type Neckwear struct {
	Type          string `json:"type"`
	Color         string `json:"color" validate:"notblank"`
	Pattern       string `json:"pattern" validate:"notblank"`
	Material      string `json:"material" validate:"notblank"`
	Justification string `json:"justification" validate:"notblank"`
}

type Shoes struct {
	Type          string `json:"type" validate:"notblank"`
	Color         string `json:"color" validate:"notblank"`
	Material      string `json:"material" validate:"notblank"`
	Style         string `json:"style" validate:"notblank"`
	Justification string `json:"justification" validate:"notblank"`
}

type Layering struct {
	Outerwear    string `json:"outerwear,omitempty"`
	Vest         string `json:"vest,omitempty"`
	PocketSquare string `json:"pocket_square,omitempty"`
}

func (l *Layering) Empty() bool {
	return l == nil || (l.Outerwear == "" && l.Vest == "" && l.PocketSquare == "")
}

// Recommendation is a candidate as decoded from the model. Pointer and nil
// list fields mean the key was absent from the response.
type Recommendation struct {
	Suit          *Suit      `json:"suit" validate:"required"`
	Shirt         *Shirt     `json:"shirt" validate:"required"`
	Neckwear      *Neckwear  `json:"neckwear" validate:"required"`
	Shoes         *Shoes     `json:"shoes" validate:"required"`
	Accessories   StringList `json:"accessories" validate:"required"`
	Layering      *Layering  `json:"layering,omitempty"`
	Justification *string    `json:"justification"`
	SeasonalNotes *string    `json:"seasonalNotes"`
	StyleNotes    StringList `json:"styleNotes" validate:"required"`
}

// Outfit is the settled form of a recommendation with every field present.
type Outfit struct {
	Suit          Suit       `json:"suit"`
	Shirt         Shirt      `json:"shirt"`
	Neckwear      Neckwear   `json:"neckwear"`
	Shoes         Shoes      `json:"shoes"`
	Accessories   StringList `json:"accessories"`
	Layering      *Layering  `json:"layering,omitempty"`
	Justification string     `json:"justification"`
	SeasonalNotes string     `json:"seasonalNotes"`
	StyleNotes    StringList `json:"styleNotes"`
}

// Settle copies a validated candidate into an Outfit, filling absent lists
// with empty ones.
func (r *Recommendation) Settle() Outfit {
	var o Outfit
	if r == nil {
		return Empty()
	}
	if r.Suit != nil {
		o.Suit = *r.Suit
		o.Suit.Pieces = cloneList(r.Suit.Pieces)
	}
	if r.Shirt != nil {
		o.Shirt = *r.Shirt
	}
	if r.Neckwear != nil {
		o.Neckwear = *r.Neckwear
	}
	if r.Shoes != nil {
		o.Shoes = *r.Shoes
	}
	if !r.Layering.Empty() {
		l := *r.Layering
		o.Layering = &l
	}
	if r.Justification != nil {
		o.Justification = *r.Justification
	}
	if r.SeasonalNotes != nil {
		o.SeasonalNotes = *r.SeasonalNotes
	}
	o.Accessories = cloneList(r.Accessories)
	o.StyleNotes = cloneList(r.StyleNotes)
	return o
}

// Empty is the all-blank outfit used for error responses.
func Empty() Outfit {
	return Outfit{
		Suit:        Suit{Pieces: StringList{}},
		Accessories: StringList{},
		StyleNotes:  StringList{},
	}
}

func cloneList(in StringList) StringList {
	out := make(StringList, len(in))
	copy(out, in)
	return out
}
