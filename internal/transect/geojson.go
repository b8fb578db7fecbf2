package transect

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/rs/zerolog/log"
)

// FeatureCollection is the subset of GeoJSON needed to read transects
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   *Geometry              `json:"geometry"`
}

type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// LoadGeoJSON reads LineString features as transects: the first vertex is the
// origin and the last vertex the endpoint. Features that cannot be used are
// reported in the returned error while the valid ones are still loaded.
func LoadGeoJSON(r io.Reader) (*Store, error) {
	var fc FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decoding transect geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected FeatureCollection, got %q", fc.Type)
	}

	s := NewStore()
	var errs []error
	for i, f := range fc.Features {
		t, err := featureToTransect(i, f)
		if err == nil {
			err = s.Add(t)
		}
		if err != nil {
			log.Warn().Err(err).Int("feature", i).Msg("Skipping transect feature")
			errs = append(errs, fmt.Errorf("feature %d: %w", i, err))
		}
	}

	log.Info().Int("transects", s.Len()).Int("rejected", len(errs)).Msg("Loaded transects")
	return s, errors.Join(errs...)
}

func featureToTransect(i int, f Feature) (models.Transect, error) {
	id := featureID(i, f.Properties)
	if f.Geometry == nil || f.Geometry.Type != "LineString" {
		return models.Transect{}, models.NewInvalidTransectError(id, "geometry must be a LineString")
	}

	var coords [][]float64
	if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil {
		return models.Transect{}, models.NewInvalidTransectError(id, fmt.Sprintf("reading coordinates: %v", err))
	}
	if len(coords) < 2 {
		return models.Transect{}, models.NewInvalidTransectError(id, "line needs at least two vertices")
	}
	first, last := coords[0], coords[len(coords)-1]
	// positions may carry a third (elevation) ordinate
	if len(first) < 2 || len(last) < 2 {
		return models.Transect{}, models.NewInvalidTransectError(id, "vertices need x and y")
	}

	return models.NewTransect(id,
		models.Point{X: first[0], Y: first[1]},
		models.Point{X: last[0], Y: last[1]})
}

func featureID(i int, props map[string]interface{}) string {
	for _, key := range []string{"name", "id"} {
		switch v := props[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return strconv.Itoa(i)
}

// ToGeoJSON writes the store back out as LineString features
func (s *Store) ToGeoJSON(w io.Writer) error {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, s.Len())}
	for _, t := range s.transects {
		coords, err := json.Marshal([][]float64{
			{t.Origin.X, t.Origin.Y},
			{t.Endpoint.X, t.Endpoint.Y},
		})
		if err != nil {
			return fmt.Errorf("encoding transect %s: %w", t.ID, err)
		}
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Properties: map[string]interface{}{"name": t.ID},
			Geometry:   &Geometry{Type: "LineString", Coordinates: coords},
		})
	}
	return json.NewEncoder(w).Encode(fc)
}
