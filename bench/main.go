package main

import (
	. "fmt"
	"github.com/dterei/gotsc"
	"github.com/minio/sha256-simd"
	"github.com/p7r0x7/guomi/sm3"
	"github.com/p7r0x7/guomi/sm4"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"math"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

var sizes = [...]int{64, 512 << 10, 64 << 20}
var bytes, calltime = []byte(nil), gotsc.TSCOverhead()
var block = sm4.NewCipherWords([]uint32{0x01234567, 0x89abcdef, 0xfedcba98, 0x76543210}).Block()

/* Each entry consumes the whole of its input once per call. */
var algs = []struct {
	name string
	run  func(in []byte)
}{
	{"github.com/p7r0x7/guomi/sm3", func(in []byte) { sm3.Sum(in) }},
	{"github.com/p7r0x7/guomi/sm4", func(in []byte) {
		/* No chaining, so every block is transformed in place on its own. */
		for off := 0; off+sm4.BlockSize <= len(in); off += sm4.BlockSize {
			block.Encrypt(in[off:], in[off:])
		}
	}},
	{"github.com/minio/sha256-simd", func(in []byte) { sha256.Sum256(in) }},
	{"github.com/zeebo/blake3", func(in []byte) { blake3.Sum256(in) }},
	{"golang.org/x/crypto/blake2b", func(in []byte) { blake2b.Sum256(in) }},
}

func benchmark(run func([]byte)) func(b *testing.B) {
	return func(b *testing.B) {
		b.SetBytes(int64(len(bytes)))
		b.ResetTimer()
		for i := b.N; i > 0; i-- {
			run(bytes)
		}
	}
}

// clock samples the TSC every 10ms until stop is called, which returns the mean cycles per second
// seen or 0 where no TSC is available.
func clock() (stop func() float64) {
	if calltime == 0 {
		return func() float64 { return 0 }
	}
	hz, polls, mut, done := uint64(0), uint64(0), &sync.Mutex{}, make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			tsc1 := gotsc.BenchStart()
			time.Sleep(time.Millisecond)
			tsc2 := gotsc.BenchEnd()

			mut.Lock()
			hz += (tsc2 - tsc1 - calltime) * 1000
			polls++
			mut.Unlock()

			time.Sleep(time.Millisecond * 9)
		}
	}()
	return func() float64 {
		close(done)
		mut.Lock()
		defer mut.Unlock()
		if polls == 0 {
			return 0
		}
		return float64(hz) / float64(polls)
	}
}

func benchAlg(run func([]byte)) {
	const s = len(sizes)
	throughputs, speeds, usages := make([]float64, s), make([]float64, s), make([]float64, s)

	for i, v := range sizes {
		bytes = make([]byte, v)
		stop := clock()
		r := testing.Benchmark(benchmark(run))
		hz := stop()

		throughputs[i] = float64(r.Bytes*int64(r.N)) / r.T.Seconds() /* B/s */
		speeds[i] = hz / throughputs[i]
		throughputs[i] /= 1e6 /* MB/s */
		usages[i] = float64(r.AllocedBytesPerOp())
	}

	Println("Speed " + fmtFloats(throughputs...) + "   MB/s")
	if calltime > 0 {
		Println("      " + fmtFloats(speeds...) + "   cpb")
	}
	Println("Usage " + fmtFloats(usages...) + "   B/op\n")
}

/* Eight columns per value; fractions keep one fewer decimal for every order of magnitude. */
func fmtFloats(f ...float64) string {
	var sb strings.Builder
	for _, v := range f {
		style, whole := "%8.f", v == math.Trunc(v)
		switch {
		case v > 1e8 || (v < 1e-6 && !whole):
			style = "%8.3g"
		case !whole && v <= 1e6:
			prec := 6
			for limit := 1e1; v > limit; limit *= 10 {
				prec--
			}
			style = "%8." + strconv.Itoa(prec) + "f"
		}
		sb.WriteString("  ")
		sb.WriteString(Sprintf(style, v))
	}
	return sb.String()
}

func main() {
	Printf("Running benchmarks on %d CPUs!\n%s/%s\n\n"+
		"           64B      512K       64M\n",
		runtime.NumCPU(), runtime.GOOS, runtime.GOARCH)
	t := time.Now()

	for _, alg := range algs {
		Println(alg.name)
		benchAlg(alg.run)
	}

	Println("Finished in " + time.Since(t).Truncate(time.Millisecond).String() + ".")
}
