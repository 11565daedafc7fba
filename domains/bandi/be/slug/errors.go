package slug

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySegment = errors.New("segment normalized to empty")
	ErrInvalidDate  = errors.New("publication date unusable")
	ErrMissingID    = errors.New("record has no identifier")
)

// Segment names in slug order.
const (
	SegmentRegione     = "regione"
	SegmentProvincia   = "provincia"
	SegmentEnte        = "ente"
	SegmentTitoloBreve = "titoloBreve"
	SegmentDate        = "dataPubblicazione"
	SegmentConcorsoID  = "concorsoId"
)

// Error reports a fallback applied to one slug segment.
type Error struct {
	Segment  string
	Fallback string
	Err      error
}

func (e *Error) Error() string {
	if e.Fallback == "" {
		return fmt.Sprintf("slug segment %s: %v", e.Segment, e.Err)
	}
	return fmt.Sprintf("slug segment %s: %v (using %q)", e.Segment, e.Err, e.Fallback)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fallbacks lists every segment error contained in err, including errors joined with errors.Join.
func Fallbacks(err error) []*Error {
	if err == nil {
		return nil
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*Error
		for _, inner := range joined.Unwrap() {
			out = append(out, Fallbacks(inner)...)
		}
		return out
	}

	var single *Error
	if errors.As(err, &single) {
		return []*Error{single}
	}
	return nil
}
