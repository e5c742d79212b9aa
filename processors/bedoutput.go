package processors

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Fabian-RY/rsat-code/errors"
	"github.com/Fabian-RY/rsat-code/processor"
)

// BEDOutput is a sink: it writes the regions it receives back out as a BED
// file and, when motif statistics are present, a per-motif hit summary next
// to it.
type BEDOutput struct{}

// NewBEDOutput returns the BED writing processor.
func NewBEDOutput() *BEDOutput {
	return &BEDOutput{}
}

func (p *BEDOutput) Name() string {
	return "BEDOutput"
}

func (p *BEDOutput) InputContract() []processor.Tag {
	return []processor.Tag{TagBedSequences, TagMotifStats}
}

func (p *BEDOutput) OutputContract() []processor.Tag {
	return nil
}

func (p *BEDOutput) RequiredParameters() []string {
	return nil
}

func (p *BEDOutput) Execute(ctx context.Context, inv *processor.Invocation) (processor.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapExecution(err, "output writing interrupted")
	}

	name, ok := inv.Params.String("OutputName")
	if !ok {
		name = "output"
	}
	bedPath := filepath.Join(inv.OutputDir, name+".bed")

	if inv.Resume {
		if _, err := os.Stat(bedPath); err == nil {
			inv.Log.Infow("Reusing existing output", "file", bedPath)
			return nil, nil
		}
	}

	regions, stats := collectOutputs(inv.Inputs)
	if regions == nil && stats == nil {
		return nil, errors.ExecutionErrorf("no payload received to write")
	}

	if regions != nil {
		if err := writeRegions(bedPath, regions); err != nil {
			return nil, err
		}
		inv.Log.Infow("Wrote BED output", "file", bedPath, "regions", len(regions))
	}

	if stats != nil {
		summaryPath := filepath.Join(inv.OutputDir, name+"_motifs.tab")
		if err := writeMotifSummary(summaryPath, stats); err != nil {
			return nil, err
		}
		inv.Log.Infow("Wrote motif summary",
			"file", summaryPath, "motifs", len(stats.HitCount))
	}
	return nil, nil
}

// collectOutputs pulls the regions to write and the optional statistics out
// of the input payloads. MotifStats regions are used when no BedSequences
// payload is present.
func collectOutputs(inputs []processor.Payload) ([]Region, *MotifStats) {
	var regions []Region
	var stats *MotifStats
	for _, input := range inputs {
		switch payload := input.(type) {
		case *BedSequences:
			if regions == nil {
				regions = payload.Regions
			}
		case *MotifStats:
			if stats == nil {
				stats = payload
			}
		}
	}
	if regions == nil && stats != nil {
		regions = stats.Regions
	}
	return regions, stats
}

// writeMotifSummary writes one line per motif: identifier and hit count,
// sorted by identifier so the output is stable.
func writeMotifSummary(path string, stats *MotifStats) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.WrapExecution(err, "unable to write motif summary")
	}

	motifs := make([]string, 0, len(stats.HitCount))
	for motif := range stats.HitCount {
		motifs = append(motifs, motif)
	}
	sort.Strings(motifs)

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "#motif\thits\n")
	for _, motif := range motifs {
		fmt.Fprintf(writer, "%s\t%d\n", motif, stats.HitCount[motif])
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return errors.WrapExecution(err, "unable to write motif summary")
	}
	if err := file.Close(); err != nil {
		return errors.WrapExecution(err, "unable to write motif summary")
	}
	return nil
}
