package processors

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fabian-RY/rsat-code/errors"
	"github.com/Fabian-RY/rsat-code/processor"
)

// fakeScanTool emits one hit per input region, named after the region.
const fakeScanTool = `#!/bin/sh
in="$2"
out="$6"
: > "$out"
while IFS="$(printf '\t')" read -r chrom start end name rest; do
	printf 'M1\t%s\t0\t0.9\n' "$name" >> "$out"
done < "$in"
`

func writeTool(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "compare-matrices")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func testRegions(n int) []Region {
	regions := make([]Region, n)
	for i := range regions {
		regions[i] = Region{
			Chromosome: "chr1",
			Start:      i * 100,
			End:        i*100 + 50,
			Name:       "peak" + string(rune('a'+i)),
			Strand:     "+",
		}
	}
	return regions
}

func newMotifScanForTest(toolPath string) *MotifScan {
	scan := NewMotifScan(toolPath, 10*time.Millisecond, 3)
	scan.stabilityDelay = time.Millisecond
	return scan
}

func TestMotifScanCollectsHitsFromAllChunks(t *testing.T) {
	scan := newMotifScanForTest(writeTool(t, fakeScanTool))

	regions := testRegions(5)
	inv := newInvocation(t,
		processor.Params{
			"MotifDatabasePath": "db.tf",
			"ThreadNumber":      "2",
		},
		&BedSequences{Regions: regions})

	payload, err := scan.Execute(context.Background(), inv)
	require.NoError(t, err)

	stats, ok := payload.(*MotifStats)
	require.True(t, ok)
	assert.Len(t, stats.Hits, 5)
	assert.Equal(t, 5, stats.HitCount["M1"])
	assert.Equal(t, regions, stats.Regions)

	// Every region was scanned exactly once, in some order.
	seen := make(map[string]int)
	for _, hit := range stats.Hits {
		seen[hit.Region]++
	}
	for _, region := range regions {
		assert.Equal(t, 1, seen[region.Name], region.Name)
	}
}

func TestMotifScanFailsWhenAllChunksFail(t *testing.T) {
	scan := newMotifScanForTest(writeTool(t, "#!/bin/sh\nexit 1\n"))

	inv := newInvocation(t,
		processor.Params{"MotifDatabasePath": "db.tf", "ThreadNumber": "2"},
		&BedSequences{Regions: testRegions(4)})

	_, err := scan.Execute(context.Background(), inv)
	require.Error(t, err)
	assert.True(t, errors.IsExecutionError(err))
}

func TestMotifScanWithoutInputFails(t *testing.T) {
	scan := newMotifScanForTest("/bin/true")

	inv := newInvocation(t, processor.Params{"MotifDatabasePath": "db.tf"})
	_, err := scan.Execute(context.Background(), inv)
	require.Error(t, err)
	assert.True(t, errors.IsExecutionError(err))
}

func TestMotifScanMalformedThreadNumber(t *testing.T) {
	scan := newMotifScanForTest("/bin/true")

	inv := newInvocation(t,
		processor.Params{"MotifDatabasePath": "db.tf", "ThreadNumber": "many"},
		&BedSequences{Regions: testRegions(1)})

	_, err := scan.Execute(context.Background(), inv)
	require.Error(t, err)
	assert.True(t, errors.IsDefinitionError(err))
}

func TestMotifScanMalformedCommandOptions(t *testing.T) {
	scan := newMotifScanForTest("/bin/true")

	inv := newInvocation(t,
		processor.Params{
			"MotifDatabasePath": "db.tf",
			"CommandOptions":    `-x "unterminated`,
		},
		&BedSequences{Regions: testRegions(1)})

	_, err := scan.Execute(context.Background(), inv)
	require.Error(t, err)
	assert.True(t, errors.IsDefinitionError(err))
}

func TestSplitRegions(t *testing.T) {
	chunks := splitRegions(testRegions(10), 3)
	require.Len(t, chunks, 3)

	total := 0
	for _, item := range chunks {
		chunk := item.(scanChunk)
		total += len(chunk.regions)
	}
	assert.Equal(t, 10, total)

	assert.Nil(t, splitRegions(nil, 3))
}
