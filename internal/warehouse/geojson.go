package warehouse

import (
	"encoding/json"
	"fmt"
	"time"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

var nullGeometry = json.RawMessage("null")

// ToFeatureCollection turns query rows into GeoJSON. The geometry column must
// hold GeoJSON (e.g. ST_AsGeoJSON(geom)); every other column becomes a property.
func ToFeatureCollection(rows []map[string]any, geomColumn string) (FeatureCollection, error) {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(rows))}
	for i, row := range rows {
		raw, ok := row[geomColumn]
		if !ok {
			return FeatureCollection{}, fmt.Errorf("row %d: geometry column %q missing", i, geomColumn)
		}
		geom, err := geometryJSON(raw)
		if err != nil {
			return FeatureCollection{}, fmt.Errorf("row %d: %w", i, err)
		}

		props := make(map[string]any, len(row)-1)
		for k, v := range row {
			if k == geomColumn {
				continue
			}
			props[k] = propertyValue(v)
		}
		fc.Features = append(fc.Features, Feature{Type: "Feature", Geometry: geom, Properties: props})
	}
	return fc, nil
}

func geometryJSON(v any) (json.RawMessage, error) {
	switch g := v.(type) {
	case nil:
		return nullGeometry, nil
	case string:
		return rawGeometry([]byte(g))
	case []byte:
		return rawGeometry(g)
	case map[string]any:
		data, err := json.Marshal(g)
		if err != nil {
			return nil, fmt.Errorf("encoding geometry: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported geometry value of type %T", v)
	}
}

func rawGeometry(b []byte) (json.RawMessage, error) {
	if !json.Valid(b) {
		return nil, fmt.Errorf("geometry is not GeoJSON")
	}
	return json.RawMessage(append([]byte(nil), b...)), nil
}

func propertyValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return v
	}
}
