package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name string
		code string
	}{
		{"english", "en"},
		{"English", "en"},
		{"  FRENCH ", "fr"},
		{"chinese", "zh"},
		{"mandarin", "zh"},
		{"farsi", "fa"},
		{"tagalog", "fil"},
		{"brazilian portuguese", "pt"},
		{"castellano", "es"},
	}
	for _, tc := range cases {
		code, err := Resolve(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.code, code, tc.name)
	}
}

func TestResolveUnsupported(t *testing.T) {
	_, err := Resolve("klingon")
	require.Error(t, err)
	var ue *UnsupportedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "klingon", ue.Name)
	assert.Contains(t, err.Error(), "available languages:")
	assert.Contains(t, ue.Available, "english")
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, "english", NameOf("en"))
	assert.Equal(t, "swahili", NameOf("sw"))
	assert.Equal(t, "xx", NameOf("xx"))
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i])
	}
}
