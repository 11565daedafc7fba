package slug

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultTitolo is returned for empty titles.
const DefaultTitolo = "Concorso"

const maxTitoloWords = 4

var (
	titoloBoilerplate = regexp.MustCompile(`(?i)^\s*(concorso\s+)?(pubblico\s+)?(per\s+)?(la\s+copertura\s+di\s+)?(n\.?\s*\d+\s+)?(post[oi]\s+di\s+)?`)
	selezionePubblica = regexp.MustCompile(`(?i)^\s*selezione\s+pubblica\s+(per\s+)?`)
	avvisoSelezione   = regexp.MustCompile(`(?i)^\s*avviso\s+pubblico\s+(di\s+)?(selezione\s+)?(per\s+)?`)

	titoloStopwords = map[string]struct{}{
		"per": {}, "di": {}, "da": {}, "in": {}, "con": {},
		"del": {}, "della": {}, "dei": {}, "delle": {}, "degli": {},
	}
)

// CreateTitoloBreve reduces a full legal title to at most four meaningful words.
func CreateTitoloBreve(titolo string) string {
	if strings.TrimSpace(titolo) == "" {
		return DefaultTitolo
	}

	cleaned := titoloBoilerplate.ReplaceAllString(titolo, "")
	cleaned = selezionePubblica.ReplaceAllString(cleaned, "")
	cleaned = avvisoSelezione.ReplaceAllString(cleaned, "")

	raw := strings.Fields(cleaned)
	if len(raw) == 0 {
		// the whole title was boilerplate
		raw = strings.Fields(titolo)
	}

	meaningful := make([]string, 0, maxTitoloWords)
	for _, w := range raw {
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		if _, stop := titoloStopwords[strings.ToLower(w)]; stop {
			continue
		}
		meaningful = append(meaningful, w)
		if len(meaningful) == maxTitoloWords {
			break
		}
	}

	if len(meaningful) == 0 {
		return strings.Join(raw[:min(len(raw), maxTitoloWords)], " ")
	}
	return strings.Join(meaningful, " ")
}
