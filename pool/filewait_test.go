package pool

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fabian-RY/rsat-code/errors"
)

// fakeFileInfo carries only the size; that is all the waiter samples.
type fakeFileInfo struct {
	os.FileInfo
	size int64
}

func (f fakeFileInfo) Size() int64 { return f.size }

// scriptedStat returns the scripted sizes in order, then repeats the last
// one. A negative size means "file does not exist".
func scriptedStat(sizes []int64) func(string) (os.FileInfo, error) {
	i := 0
	return func(string) (os.FileInfo, error) {
		size := sizes[len(sizes)-1]
		if i < len(sizes) {
			size = sizes[i]
			i++
		}
		if size < 0 {
			return nil, os.ErrNotExist
		}
		return fakeFileInfo{size: size}, nil
	}
}

func newTestWaiter(sizes []int64) *StabilityWaiter {
	w := NewStabilityWaiter(5, time.Microsecond, testLogger())
	w.stat = scriptedStat(sizes)
	return w
}

func TestFileStabilizingOnThirdSampleIsAccepted(t *testing.T) {
	// First sample 10, changes twice, then constant.
	w := newTestWaiter([]int64{10, 20, 30, 30})
	require.NoError(t, w.WaitStable("result.tab"))
}

func TestFileNeverStabilizingIsRejected(t *testing.T) {
	// Strictly growing on every sample: exhausts the 5 size retries.
	w := NewStabilityWaiter(5, time.Microsecond, testLogger())
	var size int64
	w.stat = func(string) (os.FileInfo, error) {
		size++
		return fakeFileInfo{size: size}, nil
	}

	err := w.WaitStable("result.tab")
	require.Error(t, err)
	assert.True(t, errors.IsExecutionError(err))
	assert.Contains(t, err.Error(), "constant size")
}

func TestMissingFileAppearsWithinRetries(t *testing.T) {
	// Absent for two existence polls, then present and stable.
	w := newTestWaiter([]int64{-1, -1, 42, 42, 42})
	require.NoError(t, w.WaitStable("result.tab"))
}

func TestMissingFileExhaustsRetries(t *testing.T) {
	w := newTestWaiter([]int64{-1})

	err := w.WaitStable("result.tab")
	require.Error(t, err)
	assert.True(t, errors.IsExecutionError(err))
	assert.Contains(t, err.Error(), "unable to access result file")
}
