// Package decode parses backend payloads into domain records. Decoding is
// total over malformed input: a record that can't be understood is skipped,
// never fatal to the batch.
package decode

import (
	"encoding/json"
	"fmt"
	"time"

	"visits/internal/geo"
	"visits/internal/model"
)

type geofenceRecord struct {
	GeofenceID string            `json:"geofence_id"`
	Geometry   geometry          `json:"geometry"`
	Metadata   map[string]string `json:"metadata"`
	CreatedAt  string            `json:"created_at"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Orders decodes a geofence list response into orders. Records with missing
// ids, unknown geometry types, malformed coordinates, or unparseable
// timestamps are dropped. The result is sorted by createdAt ascending, id
// ascending on ties (via OrderSet.List).
func Orders(body []byte) (model.OrderSet, error) {
	var records []geofenceRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode geofences: %w", err)
	}
	set := model.OrderSet{}
	for _, rec := range records {
		if o, ok := orderFrom(rec); ok {
			set.Insert(o)
		}
	}
	return set, nil
}

func orderFrom(rec geofenceRecord) (model.Order, bool) {
	if rec.GeofenceID == "" {
		return model.Order{}, false
	}
	createdAt, err := time.Parse(time.RFC3339, rec.CreatedAt)
	if err != nil {
		return model.Order{}, false
	}
	location, ok := locationFrom(rec.Geometry)
	if !ok {
		return model.Order{}, false
	}
	metadata := map[string]string{}
	for k, v := range rec.Metadata {
		if k != "" && v != "" {
			metadata[k] = v
		}
	}
	if len(metadata) == 0 {
		metadata = nil
	}
	return model.Order{
		ID:        rec.GeofenceID,
		CreatedAt: createdAt,
		Location:  location,
		Metadata:  metadata,
		Source:    model.SourceGeofence,
		Geotag:    model.Geotag{Kind: model.GeotagNotSent},
	}, true
}

func locationFrom(g geometry) (model.Coordinate, bool) {
	switch g.Type {
	case "Point":
		// GeoJSON order: [lng, lat]
		var pair []float64
		if err := json.Unmarshal(g.Coordinates, &pair); err != nil || len(pair) < 2 {
			return model.Coordinate{}, false
		}
		c, err := model.NewCoordinate(pair[len(pair)-1], pair[0])
		if err != nil {
			return model.Coordinate{}, false
		}
		return c, true
	case "Polygon":
		var ring [][]float64
		if err := json.Unmarshal(g.Coordinates, &ring); err != nil || len(ring) <= 2 {
			return model.Coordinate{}, false
		}
		points := make([]model.Coordinate, 0, len(ring))
		for _, pair := range ring {
			if len(pair) < 2 {
				return model.Coordinate{}, false
			}
			c, err := model.NewCoordinate(pair[len(pair)-1], pair[0])
			if err != nil {
				return model.Coordinate{}, false
			}
			points = append(points, c)
		}
		c, err := geo.Centroid(points)
		if err != nil {
			return model.Coordinate{}, false
		}
		return c, true
	default:
		return model.Coordinate{}, false
	}
}
