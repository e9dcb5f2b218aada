// internal/domain/boundary/model.go

package boundary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// KeyProperty is the feature property joining boundaries to tabular data
const KeyProperty = "statcode"

// Common errors
var (
	ErrBoundaryUnavailable  = errors.New("boundary unavailable")
	ErrNotFeatureCollection = errors.New("not a feature collection")
)

// Feature is one region polygon. Raw keeps the source bytes so the feature
// can be written back unchanged.
type Feature struct {
	ID         string
	Properties map[string]interface{}
	Geometry   geom.T
	Raw        json.RawMessage
}

// MarshalJSON writes the feature as it was read
func (f *Feature) MarshalJSON() ([]byte, error) {
	return f.Raw, nil
}

// Collection is a GeoJSON feature collection. Every top-level member other
// than "features" is kept verbatim in Members, in source order.
type Collection struct {
	Keys     []string
	Members  map[string]json.RawMessage
	Features []*Feature
}

// WithFeatures returns a collection sharing c's top-level members but holding features
func (c *Collection) WithFeatures(features []*Feature) *Collection {
	return &Collection{
		Keys:     c.Keys,
		Members:  c.Members,
		Features: features,
	}
}

// IDs returns the identifiers of all features in order
func (c *Collection) IDs() []string {
	ids := make([]string, 0, len(c.Features))
	for _, f := range c.Features {
		ids = append(ids, f.ID)
	}
	return ids
}

// MarshalJSON writes the top-level members followed by the feature list
func (c *Collection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, key := range c.Keys {
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(c.Members[key])
		buf.WriteByte(',')
	}
	buf.WriteString(`"features":[`)
	for i, f := range c.Features {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(f.Raw)
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

// ParseCollection decodes a GeoJSON FeatureCollection
func ParseCollection(data []byte) (*Collection, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("error reading collection: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotFeatureCollection
	}

	c := &Collection{Members: make(map[string]json.RawMessage)}
	var rawFeatures []json.RawMessage
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("error reading member name: %w", err)
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("error reading member %q: %w", key, err)
		}

		if key == "features" {
			if err := json.Unmarshal(raw, &rawFeatures); err != nil {
				return nil, fmt.Errorf("error reading features: %w", err)
			}
			continue
		}
		c.Keys = append(c.Keys, key)
		c.Members[key] = raw
	}

	var typ string
	if raw, ok := c.Members["type"]; ok {
		_ = json.Unmarshal(raw, &typ)
	}
	if !strings.EqualFold(typ, "FeatureCollection") {
		return nil, ErrNotFeatureCollection
	}

	c.Features = make([]*Feature, 0, len(rawFeatures))
	for i, raw := range rawFeatures {
		f, err := ParseFeature(raw)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		c.Features = append(c.Features, f)
	}

	return c, nil
}

// ParseFeature decodes one GeoJSON feature and reads its region identifier
func ParseFeature(raw json.RawMessage) (*Feature, error) {
	var gf struct {
		Geometry   json.RawMessage        `json:"geometry"`
		Properties map[string]interface{} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &gf); err != nil {
		return nil, fmt.Errorf("error decoding feature: %w", err)
	}

	f := &Feature{
		Properties: gf.Properties,
		Raw:        raw,
	}

	if code, ok := gf.Properties[KeyProperty].(string); ok {
		f.ID = strings.TrimSpace(code)
	}

	if len(gf.Geometry) > 0 && string(gf.Geometry) != "null" {
		var g geom.T
		if err := geojson.Unmarshal(gf.Geometry, &g); err != nil {
			return nil, fmt.Errorf("error decoding geometry of %q: %w", f.ID, err)
		}
		f.Geometry = g
	}

	return f, nil
}
