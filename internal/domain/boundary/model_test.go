package boundary

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const collectionJSON = `{"type":"FeatureCollection","name":"gemeentegrenzen_2020","crs":{"type":"name","properties":{"name":"urn:ogc:def:crs:OGC:1.3:CRS84"}},"features":[{"type":"Feature","properties":{"statcode":"GM0503  ","statnaam":"Delft"},"geometry":{"type":"Polygon","coordinates":[[[4.3,51.9],[4.4,51.9],[4.4,52.0],[4.3,52.0],[4.3,51.9]]]}},{"type":"Feature","properties":{"statcode":"GM0505"},"geometry":null}]}`

func TestParseCollection(t *testing.T) {
	c, err := ParseCollection([]byte(collectionJSON))
	require.NoError(t, err)

	assert.Equal(t, []string{"type", "name", "crs"}, c.Keys)
	assert.Equal(t, []string{"GM0503", "GM0505"}, c.IDs())
	assert.NotNil(t, c.Features[0].Geometry)
	assert.Nil(t, c.Features[1].Geometry)
	assert.Equal(t, "Delft", c.Features[0].Properties["statnaam"])
}

func TestCollection_MarshalJSONKeepsMembers(t *testing.T) {
	c, err := ParseCollection([]byte(collectionJSON))
	require.NoError(t, err)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, collectionJSON, string(out))
}

func TestCollection_WithFeaturesSharesMembers(t *testing.T) {
	c, err := ParseCollection([]byte(collectionJSON))
	require.NoError(t, err)

	sub := c.WithFeatures(nil)
	out, err := json.Marshal(sub)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.JSONEq(t, `[]`, string(decoded["features"]))
	assert.JSONEq(t, string(c.Members["crs"]), string(decoded["crs"]))
	assert.JSONEq(t, `"gemeentegrenzen_2020"`, string(decoded["name"]))
}

func TestParseCollection_Rejects(t *testing.T) {
	_, err := ParseCollection([]byte(`{"type":"Feature","features":[]}`))
	require.ErrorIs(t, err, ErrNotFeatureCollection)

	_, err = ParseCollection([]byte(`[]`))
	require.ErrorIs(t, err, ErrNotFeatureCollection)
}
