package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures Short and Full return non-empty consistent information.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
}

// TestBuildNumberFrom covers extraction of the build component and the two failure modes.
func TestBuildNumberFrom(t *testing.T) {
	t.Parallel()

	got, err := BuildNumberFrom("1.2.3+45")
	require.NoError(t, err)
	require.Equal(t, "45", got)

	_, err = BuildNumberFrom("1.2.3")
	require.ErrorIs(t, err, ErrNoBuildMetadata)

	_, err = BuildNumberFrom("not-a-version")
	require.ErrorIs(t, err, ErrMalformedVersion)
}

// TestBuildNumber ensures the embedded default version carries extractable metadata.
func TestBuildNumber(t *testing.T) {
	t.Parallel()

	got, err := BuildNumber()
	require.NoError(t, err)
	require.NotEmpty(t, got)
}
