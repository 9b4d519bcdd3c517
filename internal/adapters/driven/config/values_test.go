package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValues_TypedReads(t *testing.T) {
	v := NewValues()
	v.Replace(map[string]any{
		"s":     "text",
		"i64":   int64(7),
		"whole": float64(3),
		"frac":  2.5,
		"f32":   float32(0.25),
		"b":     true,
	})

	assert.Equal(t, "text", v.GetString("s"))
	assert.Equal(t, 7, v.GetInt("i64"))
	assert.Equal(t, 3, v.GetInt("whole"))
	assert.Equal(t, 0, v.GetInt("frac"), "fractional floats are not ints")
	assert.InDelta(t, 0.25, v.GetFloat("f32"), 1e-9)
	assert.InDelta(t, 7.0, v.GetFloat("i64"), 1e-9)

	assert.Equal(t, 0, v.GetInt("s"))
	assert.Equal(t, "", v.GetString("missing"))
	assert.Equal(t, []string{"b", "f32", "frac", "i64", "s", "whole"}, v.Keys())
}

func TestValues_MutateRollsBackOnCommitError(t *testing.T) {
	v := NewValues()
	require.NoError(t, v.Mutate(func(m map[string]any) { m["a"] = 1 }, nil))

	boom := errors.New("disk full")
	err := v.Mutate(func(m map[string]any) {
		m["a"] = 2
		m["b"] = 3
	}, func(map[string]any) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, v.GetInt("a"))
	_, ok := v.Get("b")
	assert.False(t, ok)
}

func TestValues_ReplaceNil(t *testing.T) {
	v := NewValues()
	v.Replace(nil)

	assert.Empty(t, v.Keys())
	require.NoError(t, v.Mutate(func(m map[string]any) { m["x"] = "y" }, nil))
	assert.Equal(t, "y", v.GetString("x"))
}
