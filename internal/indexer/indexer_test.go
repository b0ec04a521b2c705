package indexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterLowSeedersDropsBelowCutoff(t *testing.T) {
	in := []RawResult{
		{RawTitle: "below", Seeders: MinSeeders - 1},
		{RawTitle: "at", Seeders: MinSeeders},
		{RawTitle: "above", Seeders: MinSeeders + 10},
	}

	out := FilterLowSeeders(in)

	require.Len(t, out, 2)
	require.Equal(t, "at", out[0].RawTitle)
	require.Equal(t, "above", out[1].RawTitle)
}

func TestFilterLowSeedersEmptyInput(t *testing.T) {
	require.Empty(t, FilterLowSeeders(nil))
}
