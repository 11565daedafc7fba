package slugtext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToURLSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already normalized", input: "istruttore-tecnico", want: "istruttore-tecnico"},
		{name: "trims whitespace and lowercases", input: "  Comune Vigasio ", want: "comune-vigasio"},
		{name: "strips accents", input: "Università di Forlì", want: "universita-di-forli"},
		{name: "apostrophes and punctuation", input: "Sant'Angelo d'Alife (CE)", want: "santangelo-dalife-ce"},
		{name: "collapses separators", input: "a -- b   c", want: "a-b-c"},
		{name: "tabs and newlines", input: "Valle\td'Aosta\nAosta", want: "valle-daosta-aosta"},
		{name: "leading and trailing dashes", input: "--Roma--", want: "roma"},
		{name: "nothing survives", input: "!!! ???", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ToURLSafe(tt.input))
		})
	}
}

func TestToURLSafeShapeAndIdempotence(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Comune di Vigasio",
		"AZIENDA OSPEDALIERA UNIVERSITARIA «Policlinico»",
		"Città Metropolitana di Reggio Calabria",
		"ÀÉÎÕÜ çñ ß",
		"---",
		"  ",
		"n. 1 posto — Istruttore",
		"日本語 text",
	}

	for _, in := range inputs {
		out := ToURLSafe(in)
		if out != "" {
			require.True(t, IsSlug(out), "input %q produced %q", in, out)
		}
		require.Equal(t, out, ToURLSafe(out), "not idempotent for %q", in)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	s, err := Normalize(" Regione Lazio ")
	require.NoError(t, err)
	require.Equal(t, "regione-lazio", s)

	_, err = Normalize("???")
	require.ErrorIs(t, err, ErrEmpty)
}

func TestOrDefault(t *testing.T) {
	t.Parallel()

	require.Equal(t, "roma", OrDefault("Roma", "italia"))
	require.Equal(t, "italia", OrDefault("", "italia"))
	require.Equal(t, "italia", OrDefault("()", "italia"))
}
