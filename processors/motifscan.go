package processors

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/Fabian-RY/rsat-code/errors"
	"github.com/Fabian-RY/rsat-code/pool"
	"github.com/Fabian-RY/rsat-code/processor"
)

// maxChunkRegions caps how many regions go into one external tool
// invocation.
const maxChunkRegions = 128

// MotifScan runs the external motif comparison tool over the input regions,
// split into chunks processed by a bounded worker pool. Per-chunk failures
// are logged and skipped; the component fails only when every chunk failed.
type MotifScan struct {
	toolPath         string
	checkDelay       time.Duration
	stabilityRetries int
	stabilityDelay   time.Duration
}

// NewMotifScan returns the motif scanning processor. toolPath is the
// comparison tool binary; checkDelay is the pool liveness poll interval;
// stabilityRetries bounds the result-file stability check.
func NewMotifScan(toolPath string, checkDelay time.Duration, stabilityRetries int) *MotifScan {
	return &MotifScan{
		toolPath:         toolPath,
		checkDelay:       checkDelay,
		stabilityRetries: stabilityRetries,
		stabilityDelay:   time.Second,
	}
}

func (s *MotifScan) Name() string {
	return "MotifScan"
}

func (s *MotifScan) InputContract() []processor.Tag {
	return []processor.Tag{TagBedSequences}
}

func (s *MotifScan) OutputContract() []processor.Tag {
	return []processor.Tag{TagMotifStats}
}

func (s *MotifScan) RequiredParameters() []string {
	return []string{"MotifDatabasePath"}
}

// scanChunk is one unit of pool work: a slice of regions and the file names
// it works through.
type scanChunk struct {
	index   int
	regions []Region
}

func (s *MotifScan) Execute(ctx context.Context, inv *processor.Invocation) (processor.Payload, error) {
	sequences := firstBedSequences(inv.Inputs)
	if sequences == nil {
		return nil, errors.ExecutionErrorf("no BED regions received from predecessors")
	}

	dbPath, _ := inv.Params.String("MotifDatabasePath")

	threads, ok, err := inv.Params.Int("ThreadNumber")
	if err != nil {
		return nil, err
	}
	if !ok || threads < 1 {
		threads = runtime.NumCPU()
	}

	extraArgs, err := commandOptions(inv.Params)
	if err != nil {
		return nil, err
	}

	chunks := splitRegions(sequences.Regions, threads)
	inv.Log.Infow("Starting motif scan",
		"regions", len(sequences.Regions),
		"chunks", len(chunks),
		"threads", threads,
		"database", dbPath)

	stats := &MotifStats{
		Regions:  sequences.Regions,
		HitCount: make(map[string]int),
	}
	var statsMu sync.Mutex
	var failed int

	workers := pool.New(threads, s.checkDelay, inv.Log)
	workers.OnProgress(func(completed, total int) {
		inv.Log.Infow("Motif scan progress", "completed", completed, "total", total)
	})

	workers.Run(chunks, func(item interface{}) {
		chunk := item.(scanChunk)
		hits, err := s.runChunk(ctx, inv, chunk, dbPath, extraArgs)
		if err != nil {
			inv.Log.Errorw("Motif scan chunk failed",
				"chunk", chunk.index, "error", err)
			statsMu.Lock()
			failed++
			statsMu.Unlock()
			return
		}
		statsMu.Lock()
		for _, hit := range hits {
			stats.AddHit(hit)
		}
		statsMu.Unlock()
	})

	if failed == len(chunks) && len(chunks) > 0 {
		return nil, errors.ExecutionErrorf(
			"all %d motif scan chunks failed", len(chunks))
	}
	if failed > 0 {
		inv.Log.Warnw("Motif scan finished with failed chunks",
			"failed", failed, "total", len(chunks))
	}

	inv.Log.Infow("Motif scan finished",
		"hits", len(stats.Hits), "motifs", len(stats.HitCount))
	return stats, nil
}

// runChunk writes the chunk regions to a BED file, invokes the external
// tool, waits for the result file to stabilize and parses it.
func (s *MotifScan) runChunk(ctx context.Context, inv *processor.Invocation,
	chunk scanChunk, dbPath string, extraArgs []string) ([]MotifHit, error) {

	chunkFile := filepath.Join(inv.OutputDir, fmt.Sprintf("chunk_%d.bed", chunk.index))
	resultFile := filepath.Join(inv.OutputDir, fmt.Sprintf("chunk_%d.tab", chunk.index))

	if err := writeRegions(chunkFile, chunk.regions); err != nil {
		return nil, err
	}

	args := []string{"-i", chunkFile, "-db", dbPath, "-o", resultFile}
	args = append(args, extraArgs...)

	cmd := exec.CommandContext(ctx, s.toolPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		err = errors.WrapExecution(err, "motif comparison tool failed")
		return nil, errors.WithDetailf(err, "stderr: %s", strings.TrimSpace(stderr.String()))
	}

	waiter := pool.NewStabilityWaiter(s.stabilityRetries, s.stabilityDelay, inv.Log)
	if err := waiter.WaitStable(resultFile); err != nil {
		return nil, err
	}

	return parseScanResult(resultFile)
}

// firstBedSequences returns the first BedSequences payload among the inputs.
func firstBedSequences(inputs []processor.Payload) *BedSequences {
	for _, input := range inputs {
		if sequences, ok := input.(*BedSequences); ok {
			return sequences
		}
	}
	return nil
}

// commandOptions splits the optional CommandOptions parameter into argv
// tokens, honoring shell quoting.
func commandOptions(params processor.Params) ([]string, error) {
	raw, ok := params.String("CommandOptions")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	args, err := shellquote.Split(raw)
	if err != nil {
		return nil, errors.WrapDefinition(err, "malformed CommandOptions parameter")
	}
	return args, nil
}

// splitRegions partitions regions into chunks sized for the thread count,
// capped at maxChunkRegions per chunk.
func splitRegions(regions []Region, threads int) []interface{} {
	if len(regions) == 0 {
		return nil
	}
	size := (len(regions) + threads - 1) / threads
	if size > maxChunkRegions {
		size = maxChunkRegions
	}
	if size < 1 {
		size = 1
	}

	var chunks []interface{}
	for start, index := 0, 0; start < len(regions); start, index = start+size, index+1 {
		end := start + size
		if end > len(regions) {
			end = len(regions)
		}
		chunks = append(chunks, scanChunk{index: index, regions: regions[start:end]})
	}
	return chunks
}

// writeRegions writes regions as BED lines.
func writeRegions(path string, regions []Region) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.WrapExecution(err, "unable to write chunk BED file")
	}

	writer := bufio.NewWriter(file)
	for _, region := range regions {
		fmt.Fprintf(writer, "%s\t%d\t%d\t%s\t%g\t%s\n",
			region.Chromosome, region.Start, region.End,
			region.Name, region.Score, region.Strand)
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return errors.WrapExecution(err, "unable to write chunk BED file")
	}
	if err := file.Close(); err != nil {
		return errors.WrapExecution(err, "unable to write chunk BED file")
	}
	return nil
}

// parseScanResult reads the tool's tab-separated output: motif, region name,
// offset, score. Malformed lines are an error; the tool's output format is
// fixed.
func parseScanResult(path string) ([]MotifHit, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapExecution(err, "unable to open motif scan result")
	}
	defer file.Close()

	var hits []MotifHit
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			return nil, errors.ExecutionErrorf(
				"malformed motif scan result %s line %d", path, lineNo)
		}
		offset, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, errors.WrapExecution(err, "malformed offset in motif scan result")
		}
		score, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, errors.WrapExecution(err, "malformed score in motif scan result")
		}

		hits = append(hits, MotifHit{
			Motif:  fields[0],
			Region: fields[1],
			Offset: offset,
			Score:  score,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapExecution(err, "unable to read motif scan result")
	}
	return hits, nil
}
