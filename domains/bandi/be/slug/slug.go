package slug

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/concoro/concoro-platform/domains/bandi/be/model"
	"github.com/concoro/concoro-platform/platform/go/slugtext"
	"github.com/concoro/concoro-platform/platform/go/timeutil"
)

// PathPrefix is the route under which detail pages live.
const PathPrefix = "/bandi/"

// Literal placeholders for segments that normalize to nothing.
const (
	FallbackRegione   = "italia"
	FallbackProvincia = "italia"
	FallbackEnte      = "ente-pubblico"
	FallbackTitolo    = "concorso"
)

const (
	segmentCount = 6
	minIDLength  = 8
)

var (
	entePrefix  = regexp.MustCompile(`(?i)^\s*(comune\s+di|provincia\s+di|regione|asl|azienda|universit[àa])\s+`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ParsedSlug is the typed view of a six-segment slug. Values are returned as found.
type ParsedSlug struct {
	Regione           string `json:"regione"`
	Provincia         string `json:"provincia"`
	Ente              string `json:"ente"`
	TitoloBreve       string `json:"titoloBreve"`
	DataPubblicazione string `json:"dataPubblicazione"`
	ConcorsoID        string `json:"concorsoId"`
}

// String reassembles the slug.
func (p ParsedSlug) String() string {
	return strings.Join([]string{p.Regione, p.Provincia, p.Ente, p.TitoloBreve, p.DataPubblicazione, p.ConcorsoID}, "/")
}

// EnteSegment strips institutional prefixes ("Comune di", "Regione", "ASL", ...) and normalizes the rest.
func EnteSegment(ente string) string {
	return ToURLSafeSlug(entePrefix.ReplaceAllString(ente, ""))
}

// GenerateBandoSlug assembles regione/provincia/ente/titoloBreve/YYYY-MM-DD/concorsoId.
// It always returns six segments.
func GenerateBandoSlug(rec model.CompetitionRecord) string {
	s, _ := BuildBandoSlug(rec)
	return s
}

// BuildBandoSlug returns the same slug as GenerateBandoSlug together with an error describing every
// placeholder it had to substitute. The slug is usable even when the error is non-nil.
func BuildBandoSlug(rec model.CompetitionRecord) (string, error) {
	var errs []error
	geo := ExtractRegioneProvincia(rec)

	regione := segment(SegmentRegione, ToURLSafeSlug(geo.RegioneNome), FallbackRegione, &errs)
	provincia := segment(SegmentProvincia, ToURLSafeSlug(geo.ProvinciaNome), FallbackProvincia, &errs)
	ente := segment(SegmentEnte, EnteSegment(rec.Ente), FallbackEnte, &errs)
	titolo := segment(SegmentTitoloBreve, ToURLSafeSlug(CreateTitoloBreve(rec.Titolo)), FallbackTitolo, &errs)

	published, err := publicationDate(rec)
	if err != nil {
		published = now()
		errs = append(errs, &Error{Segment: SegmentDate, Fallback: timeutil.FormatDate(published), Err: errors.Join(ErrInvalidDate, err)})
	}

	id := rec.Identifier()
	if id == "" {
		errs = append(errs, &Error{Segment: SegmentConcorsoID, Err: ErrMissingID})
	}

	s := strings.Join([]string{regione, provincia, ente, titolo, timeutil.FormatDate(published), id}, "/")
	return s, errors.Join(errs...)
}

// IsValidBandoSlug checks the six-segment shape: four URL-safe segments, a YYYY-MM-DD date and an
// identifier of at least eight characters. A bare document ID is never a valid slug.
func IsValidBandoSlug(s string) bool {
	if s == "" || IsFirestoreDocumentID(s) {
		return false
	}

	parts := strings.Split(s, "/")
	if len(parts) != segmentCount {
		return false
	}
	for _, part := range parts[:4] {
		if !slugtext.IsSlug(part) {
			return false
		}
	}
	if !datePattern.MatchString(parts[4]) {
		return false
	}
	return len(parts[5]) >= minIDLength
}

// ParseBandoSlug splits a slug into its six segments. Only the segment count is checked.
func ParseBandoSlug(s string) (ParsedSlug, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != segmentCount {
		return ParsedSlug{}, false
	}
	return ParsedSlug{
		Regione:           parts[0],
		Provincia:         parts[1],
		Ente:              parts[2],
		TitoloBreve:       parts[3],
		DataPubblicazione: parts[4],
		ConcorsoID:        parts[5],
	}, true
}

// ParseBandoPath is ParseBandoSlug for request paths that may carry the /bandi/ prefix.
func ParseBandoPath(path string) (ParsedSlug, bool) {
	return ParseBandoSlug(TrimPath(path))
}

// TrimPath removes the /bandi/ prefix and surrounding slashes.
func TrimPath(path string) string {
	p := strings.TrimSpace(path)
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimPrefix(p, strings.TrimPrefix(PathPrefix, "/"))
	return strings.Trim(p, "/")
}

// BandoPath is the public URL path of a record: the slug path when the slug validates, the
// identifier path otherwise.
func BandoPath(rec model.CompetitionRecord) string {
	if s := GenerateBandoSlug(rec); IsValidBandoSlug(s) {
		return PathPrefix + s
	}
	return PathPrefix + rec.Identifier()
}

func segment(name, value, fallback string, errs *[]error) string {
	if value != "" {
		return value
	}
	*errs = append(*errs, &Error{Segment: name, Fallback: fallback, Err: ErrEmptySegment})
	return fallback
}

func publicationDate(rec model.CompetitionRecord) (time.Time, error) {
	if !rec.PublicationDate.IsZero() {
		return rec.PublicationDate.UTC(), nil
	}
	return ParsePublicationDate(rec.RawPublicationDate)
}
