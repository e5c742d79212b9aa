package pool

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// memoryPressureThreshold is the used-memory percentage above which starting
// more chunk handlers is likely to thrash.
const memoryPressureThreshold = 90.0

// warnOnMemoryPressure logs a warning when the pool is started on a machine
// that is already short on memory or with a limit far above the CPU count.
// The pool still runs; the external tools it drives are usually I/O bound.
func warnOnMemoryPressure(log *zap.SugaredLogger, limit int) {
	if limit > runtime.NumCPU()*2 {
		log.Warnw("Chunk handler limit exceeds twice the CPU count",
			"limit", limit, "cpus", runtime.NumCPU())
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return
	}
	if vm.UsedPercent > memoryPressureThreshold {
		log.Warnw("Starting worker pool under memory pressure",
			"used_percent", vm.UsedPercent, "limit", limit)
	}
}
