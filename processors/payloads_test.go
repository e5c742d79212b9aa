package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBedSequencesCloneIsIndependent(t *testing.T) {
	original := &BedSequences{Species: "human", Regions: testRegions(2)}

	clone := original.Clone().(*BedSequences)
	clone.Regions[0].Name = "mutated"
	clone.Regions = append(clone.Regions, Region{Chromosome: "chrX"})

	assert.Equal(t, "peaka", original.Regions[0].Name)
	assert.Len(t, original.Regions, 2)
	assert.Equal(t, "human", clone.Species)
}

func TestMotifStatsCloneIsIndependent(t *testing.T) {
	original := &MotifStats{Regions: testRegions(1)}
	original.AddHit(MotifHit{Motif: "M1", Region: "peaka"})

	clone := original.Clone().(*MotifStats)
	clone.AddHit(MotifHit{Motif: "M1", Region: "peakb"})
	clone.HitCount["M2"] = 9

	require.Len(t, original.Hits, 1)
	assert.Equal(t, 1, original.HitCount["M1"])
	assert.Zero(t, original.HitCount["M2"])
}
