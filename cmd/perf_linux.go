//go:build linux

package cmd

import (
	perf "github.com/hodgesds/perf-utils"
)

// countCycles runs f under a cpu cycle counter of the calling thread. When
// the counter cannot be opened f still runs and counted is false.
func countCycles(f func() error) (cycles uint64, counted bool, err error) {
	var (
		ran bool
	)
	pv, perr := perf.CPUCycles(func() error {
		ran = true
		err = f()
		return err
	})
	if !ran {
		return 0, false, f()
	}
	if perr != nil || pv == nil {
		return 0, false, err
	}
	return pv.Value, true, err
}
