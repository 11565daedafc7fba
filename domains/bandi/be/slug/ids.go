package slug

import "regexp"

var (
	autoID  = regexp.MustCompile(`^[A-Za-z0-9]{20}$`)
	uuidID  = regexp.MustCompile(`(?i)^[0-9a-f]{8}-?[0-9a-f]{4}-?[0-9a-f]{4}-?[0-9a-f]{4}-?[0-9a-f]{12}$`)
	hex32ID = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// IsFirestoreDocumentID recognizes Firestore auto IDs (20 alphanumerics), UUIDs with or without
// hyphens and 32-character lowercase hex IDs.
func IsFirestoreDocumentID(s string) bool {
	return autoID.MatchString(s) || uuidID.MatchString(s) || hex32ID.MatchString(s)
}
