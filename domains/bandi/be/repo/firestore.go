package repo

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/concoro/concoro-platform/domains/bandi/be/model"
)

// FirestoreConfig selects the collection and the Stato value treated as active.
type FirestoreConfig struct {
	Collection   string
	ActiveStatus string
}

// FirestoreRepository reads the concorsi collection. Matching on Ente, ente_slug and Stato is exact.
type FirestoreRepository struct {
	client       *firestore.Client
	collection   string
	activeStatus string
}

// NewFirestoreRepository panics when client is nil.
func NewFirestoreRepository(client *firestore.Client, cfg FirestoreConfig) *FirestoreRepository {
	if client == nil {
		panic("firestore client is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.ActiveStatus == "" {
		cfg.ActiveStatus = DefaultActiveStatus
	}
	return &FirestoreRepository{client: client, collection: cfg.Collection, activeStatus: cfg.ActiveStatus}
}

func (r *FirestoreRepository) Get(ctx context.Context, id string) (model.CompetitionRecord, error) {
	if id == "" {
		return model.CompetitionRecord{}, ErrNotFound
	}

	snap, err := r.client.Collection(r.collection).Doc(id).Get(ctx)
	switch {
	case err == nil:
		return model.FromDocument(snap.Ref.ID, snap.Data()), nil
	case status.Code(err) != codes.NotFound:
		return model.CompetitionRecord{}, fmt.Errorf("get %s/%s: %w", r.collection, id, err)
	}

	records, err := r.query(ctx, r.client.Collection(r.collection).Where(model.FieldConcorsoID, "==", id).Limit(1))
	if err != nil {
		return model.CompetitionRecord{}, err
	}
	if len(records) == 0 {
		return model.CompetitionRecord{}, ErrNotFound
	}
	return records[0], nil
}

func (r *FirestoreRepository) ListActive(ctx context.Context) ([]model.CompetitionRecord, error) {
	return r.query(ctx, r.active())
}

func (r *FirestoreRepository) ListByEnte(ctx context.Context, ente string) ([]model.CompetitionRecord, error) {
	return r.query(ctx, r.client.Collection(r.collection).Where(model.FieldEnte, "==", ente))
}

func (r *FirestoreRepository) ListByEnteSlug(ctx context.Context, enteSlug string) ([]model.CompetitionRecord, error) {
	return r.query(ctx, r.client.Collection(r.collection).Where(model.FieldEnteSlug, "==", enteSlug))
}

func (r *FirestoreRepository) ListEnti(ctx context.Context) ([]string, error) {
	records, err := r.query(ctx, r.client.Collection(r.collection).Select(model.FieldEnte))
	if err != nil {
		return nil, err
	}
	return distinctEnti(records), nil
}

func (r *FirestoreRepository) active() firestore.Query {
	return r.client.Collection(r.collection).Where(model.FieldStato, "==", r.activeStatus)
}

func (r *FirestoreRepository) query(ctx context.Context, q firestore.Query) ([]model.CompetitionRecord, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []model.CompetitionRecord
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", r.collection, err)
		}
		out = append(out, model.FromDocument(snap.Ref.ID, snap.Data()))
	}
	return out, nil
}

func distinctEnti(records []model.CompetitionRecord) []string {
	seen := make(map[string]struct{}, len(records))
	enti := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Ente == "" {
			continue
		}
		if _, ok := seen[rec.Ente]; ok {
			continue
		}
		seen[rec.Ente] = struct{}{}
		enti = append(enti, rec.Ente)
	}
	slices.Sort(enti)
	return enti
}

var _ Repository = (*FirestoreRepository)(nil)
