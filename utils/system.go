package utils

import (
	"fmt"
	"math"
	"runtime"
)

// GetMemUsage reports the Go heap statistics in MiB
func GetMemUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}
	return fmt.Sprintf("heap %v MiB, total alloc %v MiB, sys %v MiB, %v GCs",
		bToMb(m.HeapAlloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC)
}

// FirstNonFinite returns the position of the first NaN or Inf in vals, -1 when all are finite
func FirstNonFinite(vals ...float64) int {
	for n, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return n
		}
	}
	return -1
}
