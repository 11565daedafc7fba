package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/concoro/concoro-platform/domains/bandi/be/model"
	"github.com/concoro/concoro-platform/domains/bandi/be/repo"
	"github.com/concoro/concoro-platform/platform/go/metrics"
	"github.com/concoro/concoro-platform/platform/go/requesttrace"
)

type mockRepository struct {
	getFn            func(ctx context.Context, id string) (model.CompetitionRecord, error)
	listActiveFn     func(ctx context.Context) ([]model.CompetitionRecord, error)
	listByEnteFn     func(ctx context.Context, ente string) ([]model.CompetitionRecord, error)
	listByEnteSlugFn func(ctx context.Context, enteSlug string) ([]model.CompetitionRecord, error)
	listEntiFn       func(ctx context.Context) ([]string, error)
}

func (m *mockRepository) Get(ctx context.Context, id string) (model.CompetitionRecord, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, id)
}

func (m *mockRepository) ListActive(ctx context.Context) ([]model.CompetitionRecord, error) {
	if m.listActiveFn == nil {
		panic("listActiveFn not configured")
	}
	return m.listActiveFn(ctx)
}

func (m *mockRepository) ListByEnte(ctx context.Context, ente string) ([]model.CompetitionRecord, error) {
	if m.listByEnteFn == nil {
		panic("listByEnteFn not configured")
	}
	return m.listByEnteFn(ctx, ente)
}

func (m *mockRepository) ListByEnteSlug(ctx context.Context, enteSlug string) ([]model.CompetitionRecord, error) {
	if m.listByEnteSlugFn == nil {
		panic("listByEnteSlugFn not configured")
	}
	return m.listByEnteSlugFn(ctx, enteSlug)
}

func (m *mockRepository) ListEnti(ctx context.Context) ([]string, error) {
	if m.listEntiFn == nil {
		panic("listEntiFn not configured")
	}
	return m.listEntiFn(ctx)
}

const (
	vigasioID   = "2d157e931ed9421aaac05a59f2ad9f7b"
	vigasioSlug = "italia/verona/vigasio/istruttore-tecnico/2025-05-22/" + vigasioID
)

func vigasio() model.CompetitionRecord {
	return model.CompetitionRecord{
		ID:              vigasioID,
		Ente:            "Comune di Vigasio",
		Titolo:          "Istruttore tecnico",
		AreaGeografica:  "Verona (VR)",
		PublicationDate: time.Date(2025, 5, 22, 9, 0, 0, 0, time.UTC),
		Stato:           "open",
	}
}

func audit() requesttrace.AuditInfo {
	return requesttrace.Anonymous("test")
}

func TestServiceGet(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	svc := New(&mockRepository{
		getFn: func(_ context.Context, id string) (model.CompetitionRecord, error) {
			if id == vigasioID {
				return vigasio(), nil
			}
			return model.CompetitionRecord{}, repo.ErrNotFound
		},
	}, zaptest.NewLogger(t), m)

	b, err := svc.Get(context.Background(), audit(), vigasioID)
	require.NoError(t, err)
	require.Equal(t, vigasioSlug, b.Slug)
	require.Equal(t, "/bandi/"+vigasioSlug, b.Path)
	require.True(t, b.Canonical)

	_, err = svc.Get(context.Background(), audit(), "unknown")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), audit(), "  ")
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "bandoId")

	series, err := testutil.GatherAndCount(m.Registry, "concoro_bandi_lookups_total")
	require.NoError(t, err)
	require.Equal(t, 2, series)
}

func TestServiceGetWrapsRepositoryFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("firestore unavailable")
	svc := New(&mockRepository{
		getFn: func(context.Context, string) (model.CompetitionRecord, error) { return model.CompetitionRecord{}, boom },
	}, nil, nil)

	_, err := svc.Get(context.Background(), audit(), vigasioID)
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestServiceGetBySlug(t *testing.T) {
	t.Parallel()

	var requested []string
	svc := New(&mockRepository{
		getFn: func(_ context.Context, id string) (model.CompetitionRecord, error) {
			requested = append(requested, id)
			return vigasio(), nil
		},
	}, zaptest.NewLogger(t), nil)

	b, err := svc.GetBySlug(context.Background(), audit(), vigasioSlug)
	require.NoError(t, err)
	require.True(t, b.Canonical)

	b, err = svc.GetBySlug(context.Background(), audit(), "/bandi/veneto/verona/vigasio/old-title/2025-05-22/"+vigasioID)
	require.NoError(t, err)
	require.False(t, b.Canonical)
	require.Equal(t, "/bandi/"+vigasioSlug, b.Path)

	require.Equal(t, []string{vigasioID, vigasioID}, requested)
}

func TestServiceGetBySlugValidation(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{}, nil, nil)

	for _, raw := range []string{"", "a/b/c", "a/b/c/d/2025-01-01/"} {
		_, err := svc.GetBySlug(context.Background(), audit(), raw)
		var validationErr *ValidationError
		require.True(t, errors.As(err, &validationErr), raw)
		require.Contains(t, validationErr.Fields, "slug")
	}
}

func TestServiceResolve(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{
		getFn: func(_ context.Context, id string) (model.CompetitionRecord, error) {
			if id == vigasioID {
				return vigasio(), nil
			}
			return model.CompetitionRecord{}, repo.ErrNotFound
		},
	}, nil, nil)

	testCases := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "bare id", path: vigasioID},
		{name: "id path", path: "/bandi/" + vigasioID},
		{name: "slug path", path: "/bandi/" + vigasioSlug + "/"},
		{name: "unknown single segment", path: "/bandi/nope", wantErr: ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := svc.Resolve(context.Background(), audit(), tc.path)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, vigasioID, b.Record.ID)
		})
	}

	_, err := svc.Resolve(context.Background(), audit(), "/bandi/")
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))

	_, err = svc.Resolve(context.Background(), audit(), "a/b")
	require.True(t, errors.As(err, &validationErr))
}

func TestServiceListByEnteSlugPrefersStoredSlug(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{
		listByEnteSlugFn: func(_ context.Context, enteSlug string) ([]model.CompetitionRecord, error) {
			require.Equal(t, "vigasio", enteSlug)
			return []model.CompetitionRecord{vigasio()}, nil
		},
	}, nil, nil)

	out, err := svc.ListByEnteSlug(context.Background(), audit(), "vigasio")
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestServiceListByEnteSlugFallsBackToNames(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	var loaded []string
	svc := New(&mockRepository{
		listByEnteSlugFn: func(context.Context, string) ([]model.CompetitionRecord, error) { return nil, nil },
		listEntiFn: func(context.Context) ([]string, error) {
			return []string{"ASL Roma 1", "Comune di Vigasio", "Vigasio", "Comune di Verona"}, nil
		},
		listByEnteFn: func(_ context.Context, ente string) ([]model.CompetitionRecord, error) {
			loaded = append(loaded, ente)
			rec := vigasio()
			if ente == "Vigasio" {
				rec.ID = "Qw12Er34Ty56Ui78Op90"
			}
			return []model.CompetitionRecord{rec, vigasio()}, nil
		},
	}, nil, m)

	out, err := svc.ListByEnteSlug(context.Background(), audit(), "vigasio")
	require.NoError(t, err)
	require.Equal(t, []string{"Comune di Vigasio", "Vigasio"}, loaded)
	require.Len(t, out, 2)

	series, err := testutil.GatherAndCount(m.Registry, "concoro_bandi_lookups_total")
	require.NoError(t, err)
	require.Equal(t, 2, series)
}

func TestServiceListByEnteSlugMatchesEntiWithOnlyClosedBandi(t *testing.T) {
	t.Parallel()

	r := repo.NewMemoryRepository(repo.DefaultActiveStatus,
		model.CompetitionRecord{ID: "Xy12Ab34Cd56Ef78Gh90", Ente: "ASL Roma 1", Titolo: "Dirigente medico", Stato: "closed"},
		model.CompetitionRecord{ID: "Qw12Er34Ty56Ui78Op90", Ente: "ASL Roma 1", Titolo: "Infermiere", Stato: "closed"},
		vigasio(),
	)
	svc := New(r, nil, nil)

	out, err := svc.ListByEnteSlug(context.Background(), audit(), "roma-1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, b := range out {
		require.Equal(t, "ASL Roma 1", b.Record.Ente)
		require.Equal(t, "closed", b.Record.Stato)
	}
}

func TestServiceListByEnteSlugValidation(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{}, nil, nil)
	for _, raw := range []string{"", "Comune di Vigasio", "vigasio--x", "-vigasio"} {
		_, err := svc.ListByEnteSlug(context.Background(), audit(), raw)
		var validationErr *ValidationError
		require.True(t, errors.As(err, &validationErr), raw)
	}
}

func TestServiceListActiveCountsFallbacks(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	svc := New(&mockRepository{
		listActiveFn: func(context.Context) ([]model.CompetitionRecord, error) {
			return []model.CompetitionRecord{
				vigasio(),
				{ID: "Xy12Ab34Cd56Ef78Gh90", PublicationDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
			}, nil
		},
	}, zaptest.NewLogger(t), m)

	out, err := svc.ListActive(context.Background(), audit())
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "italia/italia/ente-pubblico/concorso/2024-01-02/Xy12Ab34Cd56Ef78Gh90", out[1].Slug)
	require.Equal(t, "/bandi/"+out[1].Slug, out[1].Path)

	require.Equal(t, 1.0, counterValue(t, m, "concoro_slug_fallbacks_total"))
}

func TestServiceInspect(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{}, nil, nil)

	got := svc.Inspect("/bandi/" + vigasioSlug)
	require.True(t, got.Valid)
	require.False(t, got.DocumentID)
	require.NotNil(t, got.Parsed)
	require.Equal(t, "vigasio", got.Parsed.Ente)

	got = svc.Inspect(vigasioID)
	require.False(t, got.Valid)
	require.True(t, got.DocumentID)
	require.Nil(t, got.Parsed)
}

func TestNewRequiresRepository(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { New(nil, nil, nil) })
}

func counterValue(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}
