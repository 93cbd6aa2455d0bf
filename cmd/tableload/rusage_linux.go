//go:build linux

package main

import "golang.org/x/sys/unix"

// peakRSS returns the maximum resident set size of the process in bytes.
func peakRSS() uint64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return uint64(ru.Maxrss) * 1024
}
