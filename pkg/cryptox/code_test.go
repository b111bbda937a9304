package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	t.Parallel()

	t.Run("produces codes of the requested length", func(t *testing.T) {
		for _, n := range []int{1, 8, 32} {
			code, err := GenerateCode(n)
			require.NoError(t, err)
			require.Len(t, code, n)
		}
	})

	t.Run("draws only from the unambiguous alphabet", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			code, err := GenerateCode(DefaultCodeLength)
			require.NoError(t, err)
			for _, c := range code {
				require.Contains(t, CodeAlphabet, string(c))
			}
			require.NotContains(t, code, "0")
			require.NotContains(t, code, "O")
			require.NotContains(t, code, "1")
			require.NotContains(t, code, "I")
			require.NotContains(t, code, "L")
		}
	})

	t.Run("rejects non-positive lengths", func(t *testing.T) {
		_, err := GenerateCode(0)
		require.Error(t, err)
		_, err = GenerateCode(-3)
		require.Error(t, err)
	})

	t.Run("codes are not obviously repeating", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			code, err := GenerateCode(DefaultCodeLength)
			require.NoError(t, err)
			require.False(t, seen[code], "duplicate code %q", code)
			seen[code] = true
		}
	})
}

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ABCD2345", NormalizeCode("  abcd2345\n"))
	require.Equal(t, "ABCD2345", NormalizeCode("ABCD2345"))
	require.Equal(t, "", NormalizeCode("   "))
	require.Equal(t, strings.ToUpper("xyz"), NormalizeCode("xyz"))
}
