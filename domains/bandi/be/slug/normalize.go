// Package slug builds and parses the SEO paths of competition detail pages:
//
//	/bandi/<regione>/<provincia>/<ente>/<titolo-breve>/<YYYY-MM-DD>/<concorsoId>
//
// Every function is pure. Malformed input degrades to literal placeholders instead of failing;
// the Build*/Parse* variants expose what was substituted for callers that need to know.
package slug

import "github.com/concoro/concoro-platform/platform/go/slugtext"

// ToURLSafeSlug converts arbitrary text into a lowercase hyphenated token without diacritics.
// The result may be empty.
func ToURLSafeSlug(s string) string {
	return slugtext.ToURLSafe(s)
}

// NormalizeEnteForSlug normalizes an organization name. It behaves exactly like ToURLSafeSlug.
func NormalizeEnteForSlug(ente string) string {
	return slugtext.ToURLSafe(ente)
}
