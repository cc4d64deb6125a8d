//go:build windows

package main

import (
	. "golang.org/x/sys/windows"
	"os"
)

/* Runs before the flags are declared so that --no-codes defaults to true on consoles that cannot
render escape codes. */
func init() {
	for _, v := range [2]Handle{
		Handle(os.Stdout.Fd()),
		Handle(os.Stderr.Fd()),
	} {
		var mode uint32
		if err := GetConsoleMode(v, &mode); err != nil {
			pNoCodesDefault = true
			break
		}
		if mode&ENABLE_VIRTUAL_TERMINAL_PROCESSING == 0 {
			if err := SetConsoleMode(v, mode|ENABLE_VIRTUAL_TERMINAL_PROCESSING); err != nil {
				pNoCodesDefault = true
				break
			}
		}
	}
}
