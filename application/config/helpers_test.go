package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	herrors "github.com/hvm-interop/hvm-go/domain/errors"
)

func TestGetInt(t *testing.T) {
	params := Params{"int": 3, "int64": int64(4), "float": float64(5), "frac": 1.5, "str": "6"}

	for key, want := range map[string]int{"int": 3, "int64": 4, "float": 5} {
		got, ok := GetInt(params, key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	_, ok := GetInt(params, "frac")
	assert.False(t, ok)
	_, ok = GetInt(params, "str")
	assert.False(t, ok)
	assert.Equal(t, 9, GetIntDefault(params, "missing", 9))
}

func TestMustGetInt(t *testing.T) {
	_, err := MustGetInt(Params{}, "N")

	var cfgErr *herrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "N", cfgErr.Field)
}

func TestParseParams(t *testing.T) {
	params, err := ParseParams([]string{"N=12", "label = big", "Depth= 3"})
	require.NoError(t, err)
	assert.Equal(t, Params{"N": 12, "label": " big", "Depth": 3}, params)

	_, err = ParseParams([]string{"N"})
	assert.ErrorContains(t, err, `expected key=value, got "N"`)

	_, err = ParseParams([]string{"=3"})
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := Params{"N": 1, "Depth": 2}
	out := Merge(base, Params{"N": 3})

	assert.Equal(t, Params{"N": 3, "Depth": 2}, out)
	assert.Equal(t, 1, base["N"])
}
