package slug

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const vigasioSlug = "italia/verona/vigasio/istruttore-tecnico/2025-05-22/2d157e931ed9421aaac05a59f2ad9f7b"

func writeExport(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := Command()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const vigasioExport = `[{
  "id": "2d157e931ed9421aaac05a59f2ad9f7b",
  "Ente": "Comune di Vigasio",
  "AreaGeografica": "Verona, Veneto",
  "Titolo": "Concorso pubblico per la copertura di n. 1 posto di Istruttore Tecnico...",
  "publication_date": "2025-05-22"
}]`

func TestGeneratePrintsSlugAndPath(t *testing.T) {
	out, err := run(t, "generate", "--file", writeExport(t, vigasioExport))
	require.NoError(t, err)

	fields := strings.Fields(out)
	require.Equal(t, []string{
		"2d157e931ed9421aaac05a59f2ad9f7b",
		vigasioSlug,
		"/bandi/" + vigasioSlug,
	}, fields)
}

func TestGenerateStrictFailsOnFallback(t *testing.T) {
	export := writeExport(t, `[{"id": "AbCdEfGhIjKlMnOpQrSt", "Ente": "???", "Titolo": "Dirigente", "publication_date": "2024-01-10"}]`)

	out, err := run(t, "generate", "--file", export)
	require.NoError(t, err)
	require.Contains(t, out, "ente-pubblico")

	_, err = run(t, "generate", "--file", export, "--strict")
	require.Error(t, err)
	require.ErrorContains(t, err, "record AbCdEfGhIjKlMnOpQrSt")
	require.ErrorContains(t, err, "ente")
}

func TestGenerateRejectsInvalidExport(t *testing.T) {
	_, err := run(t, "generate", "--file", writeExport(t, `[{"Ente": "missing id"}]`))
	require.Error(t, err)

	_, err = run(t, "generate")
	require.Error(t, err)
}

func TestInspect(t *testing.T) {
	out, err := run(t, "inspect", "/bandi/"+vigasioSlug, "2d157e931ed9421aaac05a59f2ad9f7b")
	require.NoError(t, err)

	var got []Inspection
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)

	require.Equal(t, vigasioSlug, got[0].Slug)
	require.True(t, got[0].Valid)
	require.NotNil(t, got[0].Parsed)
	require.Equal(t, "vigasio", got[0].Parsed.Ente)

	require.False(t, got[1].Valid)
	require.True(t, got[1].DocumentID)
	require.Nil(t, got[1].Parsed)
}
