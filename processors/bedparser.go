package processors

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/Fabian-RY/rsat-code/errors"
	"github.com/Fabian-RY/rsat-code/processor"
)

// BEDParser reads a BED file named by the InputFile parameter and produces a
// BedSequences payload. It is a pure source: it accepts no upstream payload.
type BEDParser struct{}

// NewBEDParser returns the BED parsing processor.
func NewBEDParser() *BEDParser {
	return &BEDParser{}
}

func (p *BEDParser) Name() string {
	return "BEDParser"
}

func (p *BEDParser) InputContract() []processor.Tag {
	return nil
}

func (p *BEDParser) OutputContract() []processor.Tag {
	return []processor.Tag{TagBedSequences}
}

func (p *BEDParser) RequiredParameters() []string {
	return []string{processor.InputFileParam}
}

// Execute parses the input file. Header, comment and malformed lines are
// skipped with a warning; a file yielding no region at all is an execution
// failure.
func (p *BEDParser) Execute(ctx context.Context, inv *processor.Invocation) (processor.Payload, error) {
	path, _ := inv.Params.String(processor.InputFileParam)

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapExecution(err, "unable to open BED input file")
	}
	defer file.Close()

	species, _ := inv.Params.String("Species")
	result := &BedSequences{Species: species}

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapExecution(err, "BED parsing interrupted")
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}

		region, ok := parseBedLine(line)
		if !ok {
			inv.Log.Warnw("Skipping malformed BED line",
				"file", path, "line", lineNo)
			continue
		}
		result.Regions = append(result.Regions, region)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapExecution(err, "unable to read BED input file")
	}

	if len(result.Regions) == 0 {
		return nil, errors.ExecutionErrorf("no region found in BED file %s", path)
	}

	inv.Log.Infow("BED file parsed", "file", path, "regions", len(result.Regions))
	return result, nil
}

// parseBedLine parses one data line: chrom, start, end, then optional name,
// score and strand.
func parseBedLine(line string) (Region, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Region{}, false
	}

	start, err := strconv.Atoi(fields[1])
	if err != nil {
		return Region{}, false
	}
	end, err := strconv.Atoi(fields[2])
	if err != nil {
		return Region{}, false
	}
	if start < 0 || end < start {
		return Region{}, false
	}

	region := Region{Chromosome: fields[0], Start: start, End: end}
	if len(fields) > 3 {
		region.Name = fields[3]
	} else {
		region.Name = fields[0] + ":" + fields[1] + "-" + fields[2]
	}
	if len(fields) > 4 {
		if score, err := strconv.ParseFloat(fields[4], 64); err == nil {
			region.Score = score
		}
	}
	if len(fields) > 5 {
		region.Strand = fields[5]
	}
	return region, true
}
