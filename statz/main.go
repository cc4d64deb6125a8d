package main

import (
	"fmt"
	"runtime"
	"time"
)

// Copyright © 2021 Matthew R Bonnette. Licensed under a BSD-3-Clause license.

const ints = uint32(5e4)

func main() {
	fmt.Printf("Running Statz over %d samples on %d CPUs!\n\n", ints, runtime.NumCPU())

	t := time.Now()
	monobit()
	avalanche()
	cipherMonobit()

	fmt.Printf("\nFinished in %s on %s/%s.\n", time.Since(t).Truncate(time.Millisecond).String(),
		runtime.GOOS, runtime.GOARCH)
}
