// Package processors provides the built-in processor types: BED region
// parsing, motif scanning through an external comparison tool, and BED
// output writing.
package processors

import (
	"github.com/Fabian-RY/rsat-code/processor"
)

// Payload tags produced and consumed by the built-in processors.
const (
	TagBedSequences processor.Tag = "BedSequences"
	TagMotifStats   processor.Tag = "MotifStats"
)

// Region is one genomic interval read from a BED file. Start is 0-based
// inclusive, End exclusive, per the BED convention.
type Region struct {
	Chromosome string
	Start      int
	End        int
	Name       string
	Score      float64
	Strand     string
}

// BedSequences is the payload carrying parsed BED regions between
// components.
type BedSequences struct {
	Species string
	Regions []Region
}

func (b *BedSequences) Tag() processor.Tag {
	return TagBedSequences
}

func (b *BedSequences) Clone() processor.Payload {
	clone := &BedSequences{Species: b.Species}
	if b.Regions != nil {
		clone.Regions = make([]Region, len(b.Regions))
		copy(clone.Regions, b.Regions)
	}
	return clone
}

// MotifHit is one motif match inside a region.
type MotifHit struct {
	Motif  string
	Region string
	Offset int
	Score  float64
}

// MotifStats aggregates motif hits over a whole scan.
type MotifStats struct {
	Regions []Region
	Hits    []MotifHit
	// HitCount counts hits per motif identifier.
	HitCount map[string]int
}

func (m *MotifStats) Tag() processor.Tag {
	return TagMotifStats
}

func (m *MotifStats) Clone() processor.Payload {
	clone := &MotifStats{}
	if m.Regions != nil {
		clone.Regions = make([]Region, len(m.Regions))
		copy(clone.Regions, m.Regions)
	}
	if m.Hits != nil {
		clone.Hits = make([]MotifHit, len(m.Hits))
		copy(clone.Hits, m.Hits)
	}
	if m.HitCount != nil {
		clone.HitCount = make(map[string]int, len(m.HitCount))
		for motif, count := range m.HitCount {
			clone.HitCount[motif] = count
		}
	}
	return clone
}

// AddHit records one hit. Not safe for concurrent use; callers hold their
// own lock.
func (m *MotifStats) AddHit(hit MotifHit) {
	m.Hits = append(m.Hits, hit)
	if m.HitCount == nil {
		m.HitCount = make(map[string]int)
	}
	m.HitCount[hit.Motif]++
}
