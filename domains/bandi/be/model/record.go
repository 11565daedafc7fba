// Package model holds the typed view of a competition announcement read from Firestore.
package model

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/concoro/concoro-platform/platform/go/timeutil"
)

// Firestore field names.
const (
	FieldID              = "id"
	FieldConcorsoID      = "concorso_id"
	FieldEnte            = "Ente"
	FieldTitolo          = "Titolo"
	FieldAreaGeografica  = "AreaGeografica"
	FieldProvince        = "province"
	FieldPublicationDate = "publication_date"
	FieldDataChiusura    = "DataChiusura"
	FieldStato           = "Stato"
	FieldEnteSlug        = "ente_slug"
)

// RecordSchema is the JSON Schema for exported competition records.
//
//go:embed record.schema.json
var RecordSchema []byte

// GeoPoint is a single coordinate attached to a province entry.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Province is one entry of the ordered province list.
type Province struct {
	ProvinciaNome string     `json:"provincia_nome"`
	RegioneNome   string     `json:"regione_nome"`
	Geopoints     []GeoPoint `json:"geopoints,omitempty"`
}

// CompetitionRecord is a concorso as stored in the concorsi collection. It is read-only to this service.
type CompetitionRecord struct {
	ID             string     `json:"id"`
	ConcorsoID     string     `json:"concorso_id,omitempty"`
	Ente           string     `json:"Ente"`
	Titolo         string     `json:"Titolo"`
	AreaGeografica string     `json:"AreaGeografica,omitempty"`
	Province       []Province `json:"province,omitempty"`
	// PublicationDate is the resolved publication instant; zero when the raw value was missing or unparseable.
	PublicationDate time.Time `json:"publication_date,omitzero"`
	// RawPublicationDate keeps the value exactly as found in the document.
	RawPublicationDate any       `json:"-"`
	DataChiusura       time.Time `json:"DataChiusura,omitzero"`
	Stato              string    `json:"Stato,omitempty"`
	EnteSlug           string    `json:"ente_slug,omitempty"`
}

// Identifier returns the concorso_id when present, the document ID otherwise.
func (r CompetitionRecord) Identifier() string {
	if r.ConcorsoID != "" {
		return r.ConcorsoID
	}
	return r.ID
}

// FromDocument converts a loosely typed Firestore document (or a decoded JSON export) into a record.
// Fields with an unexpected type degrade to their zero value; the function never fails.
func FromDocument(docID string, data map[string]any) CompetitionRecord {
	rec := CompetitionRecord{
		ID:             firstNonEmpty(docID, stringField(data, FieldID)),
		ConcorsoID:     stringField(data, FieldConcorsoID),
		Ente:           stringField(data, FieldEnte),
		Titolo:         stringField(data, FieldTitolo),
		AreaGeografica: stringField(data, FieldAreaGeografica),
		Province:       provincesField(data[FieldProvince]),
		Stato:          stringField(data, FieldStato),
		EnteSlug:       stringField(data, FieldEnteSlug),
	}
	if raw, ok := data[FieldPublicationDate]; ok {
		rec.RawPublicationDate = raw
		if t, err := timeutil.Parse(raw); err == nil {
			rec.PublicationDate = t
		}
	}
	if t, err := timeutil.Parse(data[FieldDataChiusura]); err == nil {
		rec.DataChiusura = t
	}

	return rec
}

// DecodeJSON parses a single exported record. The document ID is taken from the "id" field.
func DecodeJSON(raw []byte) (CompetitionRecord, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return CompetitionRecord{}, fmt.Errorf("decode record: %w", err)
	}
	return FromDocument("", data), nil
}

func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%.0f", v))
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}

func provincesField(raw any) []Province {
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return nil
	}

	out := make([]Province, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Province{
			ProvinciaNome: rawString(m["provincia_nome"]),
			RegioneNome:   rawString(m["regione_nome"]),
			Geopoints:     geoPointsField(m["geopoints"]),
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type latLng interface {
	GetLatitude() float64
	GetLongitude() float64
}

func geoPointsField(raw any) []GeoPoint {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}

	var out []GeoPoint
	for _, item := range items {
		switch p := item.(type) {
		case latLng:
			out = append(out, GeoPoint{Lat: p.GetLatitude(), Lng: p.GetLongitude()})
		case map[string]any:
			lat, latOK := floatField(p, "lat", "latitude", "_latitude")
			lng, lngOK := floatField(p, "lng", "longitude", "_longitude")
			if latOK && lngOK {
				out = append(out, GeoPoint{Lat: lat, Lng: lng})
			}
		}
	}
	return out
}

func floatField(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		if f, ok := m[key].(float64); ok {
			return f, true
		}
	}
	return 0, false
}

// rawString keeps province names untouched so callers see them exactly as stored.
func rawString(v any) string {
	s, _ := v.(string)
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
