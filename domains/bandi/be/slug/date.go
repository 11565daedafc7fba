package slug

import (
	"time"

	"github.com/concoro/concoro-platform/platform/go/timeutil"
)

// now is the clock behind the date fallback.
var now = time.Now

// ParsePublicationDate resolves any of the publication date shapes found in Firestore documents.
func ParsePublicationDate(v any) (time.Time, error) {
	return timeutil.Parse(v)
}

// FormatPublicationDate renders v as YYYY-MM-DD (UTC). Missing or unparseable values yield today's date.
func FormatPublicationDate(v any) string {
	t, err := timeutil.Parse(v)
	if err != nil {
		t = now()
	}
	return timeutil.FormatDate(t)
}
