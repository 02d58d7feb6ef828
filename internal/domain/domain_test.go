package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullFloatJSON(t *testing.T) {
	type payload struct {
		Value NullFloat `json:"value"`
	}

	data, err := json.Marshal(payload{Value: NullFloat(1.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":1.5}`, string(data))

	data, err = json.Marshal(payload{Value: Null()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":null}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"value":null}`), &decoded))
	assert.False(t, decoded.Value.Defined())

	require.NoError(t, json.Unmarshal([]byte(`{"value":2.25}`), &decoded))
	require.True(t, decoded.Value.Defined())
	assert.InDelta(t, 2.25, float64(decoded.Value), 1e-12)
}

func TestReported(t *testing.T) {
	assert.True(t, Reported(0))
	assert.True(t, Reported(-1.5))
	assert.False(t, Reported(Unreported()))
	assert.False(t, Reported(math.NaN()))
}

func TestMovieHelpers(t *testing.T) {
	m := Movie{Budget: 100, Revenue: 300, ROI: 2, ReleaseYear: 1999}
	assert.True(t, m.HasROI())
	assert.True(t, m.HasYear())

	m.ROI = Unreported()
	m.ReleaseYear = 0
	assert.False(t, m.HasROI())
	assert.False(t, m.HasYear())
}

func TestDimensionValid(t *testing.T) {
	for _, d := range Dimensions() {
		assert.True(t, d.Valid(), "dimension %s", d)
	}
	assert.False(t, Dimension("decade").Valid())
	assert.False(t, Dimension("").Valid())
}
