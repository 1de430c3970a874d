package icem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/mbgrid/types"
)

func TestOrientationVocabulary(t *testing.T) {
	all := AllOrientations()
	require.Len(t, all, NOrientations)
	seen := make(map[string]bool)
	for n, o := range all {
		tok := o.String()
		assert.Len(t, tok, 6)
		assert.False(t, seen[tok], "duplicate token %q", tok)
		seen[tok] = true

		key, ok := o.Key()
		require.True(t, ok)
		assert.Equal(t, OrientationKey(n), key)
		assert.Equal(t, o, key.Orientation())

		parsed, err := ParseOrientation(tok)
		require.NoError(t, err, tok)
		assert.Equal(t, o, parsed)

		// Inverse undoes the axis map and keeps the signs
		inv := o.Inverse()
		assert.Equal(t, o, inv.Inverse())
		for a := 0; a < 3; a++ {
			b := o[a].Axis
			assert.Equal(t, types.Axis(a), inv[b].Axis)
			assert.Equal(t, o[a].Sign, inv[b].Sign)
			assert.Equal(t, types.Axis(a), o.Local(b))
		}
	}
}

func TestParseOrientation(t *testing.T) {
	{
		o, err := ParseOrientation(" i j k")
		require.NoError(t, err)
		assert.Equal(t, Orientation{{types.AxisI, 1}, {types.AxisJ, 1}, {types.AxisK, 1}}, o)
		key, _ := o.Key()
		assert.Equal(t, OrientationKey(0), key)
	}
	{
		o, err := ParseOrientation("-j i k")
		require.NoError(t, err)
		assert.Equal(t, Orientation{{types.AxisJ, -1}, {types.AxisI, 1}, {types.AxisK, 1}}, o)
		assert.Equal(t, "-j i k", o.String())
	}
	{ // '+' is an accepted positive sign, upper case letters are accepted
		o, err := ParseOrientation("+I-K+J")
		require.NoError(t, err)
		assert.Equal(t, " i-k j", o.String())
	}
	for _, bad := range []string{"i j k", " i j k ", " i i k", "*i j k", " x j k", " i j-j", ""} {
		_, err := ParseOrientation(bad)
		assert.Error(t, err, "%q", bad)
	}
	_, ok := Orientation{{types.AxisI, 2}, {types.AxisJ, 1}, {types.AxisK, 1}}.Key()
	assert.False(t, ok)
}
