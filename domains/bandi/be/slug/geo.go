package slug

import (
	"regexp"
	"strings"

	"github.com/concoro/concoro-platform/domains/bandi/be/model"
)

// DefaultArea is used for region and province when nothing better is known.
const DefaultArea = "Italia"

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	areaSeparator = regexp.MustCompile(`[,;-]`)
)

// Geo is the pre-normalization region/province pair of a record.
type Geo struct {
	RegioneNome   string
	ProvinciaNome string
}

// ExtractRegioneProvincia reads region and province from the first province entry. Legacy records
// without one fall back to the first token of AreaGeografica as province; the region cannot be
// inferred on that path and is always DefaultArea.
func ExtractRegioneProvincia(rec model.CompetitionRecord) Geo {
	if len(rec.Province) > 0 {
		first := rec.Province[0]
		return Geo{
			RegioneNome:   orDefault(first.RegioneNome, DefaultArea),
			ProvinciaNome: orDefault(first.ProvinciaNome, DefaultArea),
		}
	}

	return Geo{
		RegioneNome:   DefaultArea,
		ProvinciaNome: orDefault(firstAreaToken(rec.AreaGeografica), DefaultArea),
	}
}

func firstAreaToken(area string) string {
	cleaned := parenthetical.ReplaceAllString(area, "")
	parts := areaSeparator.Split(cleaned, -1)
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[0])
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
