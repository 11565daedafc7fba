package problem

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	p := New(http.StatusBadRequest, TypeValidation, "", "bad slug")
	p.Errors = map[string][]string{"slug": {"must have six segments"}}
	Write(rec, p)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, ContentType, rec.Header().Get("Content-Type"))

	var got Details
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Bad Request", got.Title)
	require.Equal(t, TypeValidation, got.Type)
	require.Equal(t, []string{"must have six segments"}, got.Errors["slug"])
}
