package slug

// MatchesEnteSlug reports whether enteSlug is the slug of the organization name, either in full
// ("comune-di-vigasio") or as the prefix-stripped segment used in bando paths ("vigasio").
func MatchesEnteSlug(enteName, enteSlug string) bool {
	if enteSlug == "" {
		return false
	}
	return NormalizeEnteForSlug(enteName) == enteSlug || EnteSegment(enteName) == enteSlug
}
