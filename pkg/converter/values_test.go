// pkg/converter/values_test.go
package converter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	assert.Nil(t, Canonical(nil))

	s := Canonical(42)
	require.NotNil(t, s)
	assert.Equal(t, "42", *s)
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "hello", ToString("hello"))
	assert.Equal(t, "bytes", ToString([]byte("bytes")))
	assert.Equal(t, "4", ToString(4.0))
	assert.Equal(t, "4.5", ToString(4.5))
	assert.Equal(t, "42", ToString(42))
	assert.Equal(t, "true", ToString(true))
	assert.Equal(t, "2024-01-15T00:00:00Z",
		ToString(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, `["a","b"]`, ToString([]string{"a", "b"}))
}

func TestToFloat(t *testing.T) {
	f, err := ToFloat("3.14")
	require.NoError(t, err)
	assert.InDelta(t, 3.14, f, 1e-9)

	f, err = ToFloat(" 5 ")
	require.NoError(t, err)
	assert.Equal(t, 5.0, f)

	f, err = ToFloat(7)
	require.NoError(t, err)
	assert.Equal(t, 7.0, f)

	_, err = ToFloat(nil)
	assert.Error(t, err)
	_, err = ToFloat("")
	assert.Error(t, err)
	_, err = ToFloat("not a number")
	assert.Error(t, err)
}

func TestToInt(t *testing.T) {
	i, err := ToInt("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), i)

	i, err = ToInt(3.9)
	require.NoError(t, err)
	assert.Equal(t, int64(3), i, "float conversion truncates")

	_, err = ToInt("4.5")
	assert.Error(t, err)
	_, err = ToInt(nil)
	assert.Error(t, err)
}

func TestToTime(t *testing.T) {
	for _, input := range []string{
		"2024-01-15",
		"2024-01-15T10:30:00",
		"2024-01-15 10:30:00",
		"01/15/2024",
		"2024/01/15",
		"2024-01-15T10:30:00Z",
	} {
		ts, err := ToTime(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, 2024, ts.Year(), "input %q", input)
		assert.Equal(t, time.January, ts.Month(), "input %q", input)
		assert.Equal(t, 15, ts.Day(), "input %q", input)
	}

	_, err := ToTime("yesterday")
	assert.Error(t, err)
	_, err = ToTime(nil)
	assert.Error(t, err)
}
