package pipeline

import (
	"errors"

	"suitcraft-ai/internal/outfit"
	"suitcraft-ai/internal/preference"
)

const (
	ErrorKindInvalidPreferences = "invalid_preferences"
	ErrorKindUpstream           = "upstream"
	ErrorKindMalformedOutput    = "malformed_output"
	ErrorKindValidation         = "validation"
	ErrorKindInternal           = "internal"
)

// Result is the response for one recommendation request. Every outfit field
// is always present, on success and on failure.
type Result struct {
	outfit.Outfit
	Images    []string `json:"images"`
	Attempts  int      `json:"attempts"`
	Warning   string   `json:"warning,omitempty"`
	Error     string   `json:"error,omitempty"`
	ErrorKind string   `json:"errorKind,omitempty"`
}

func (r Result) Failed() bool { return r.Error != "" }

// Assemble merges an accepted outfit with the resolved preview images.
func Assemble(o outfit.Outfit, images []string, warning string, attempts int) Result {
	if images == nil {
		images = []string{}
	}
	if o.Accessories == nil {
		o.Accessories = outfit.StringList{}
	}
	if o.StyleNotes == nil {
		o.StyleNotes = outfit.StringList{}
	}
	if o.Suit.Pieces == nil {
		o.Suit.Pieces = outfit.StringList{}
	}
	return Result{Outfit: o, Images: images, Warning: warning, Attempts: attempts}
}

// AssembleError builds the canonical error shape for a failed request.
func AssembleError(err error, attempts int) Result {
	msg := "recommendation failed"
	if err != nil {
		msg = err.Error()
	}
	return Result{
		Outfit:    outfit.Empty(),
		Images:    []string{},
		Attempts:  attempts,
		Error:     msg,
		ErrorKind: ClassifyError(err),
	}
}

func ClassifyError(err error) string {
	var invalid *preference.InvalidError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &invalid):
		return ErrorKindInvalidPreferences
	case outfit.IsUpstream(err):
		return ErrorKindUpstream
	case outfit.IsMalformed(err):
		return ErrorKindMalformedOutput
	}
	if _, ok := outfit.AsValidation(err); ok {
		return ErrorKindValidation
	}
	return ErrorKindInternal
}
