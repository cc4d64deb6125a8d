package main

import (
	"encoding/binary"
	"fmt"
	"github.com/aead/chacha20/chacha"
	"github.com/p7r0x7/guomi/sm3"
	"github.com/p7r0x7/guomi/sm4"
	"math/bits"
)

// Copyright © 2021 Matthew R Bonnette. Licensed under a BSD-3-Clause license.

const digestBits = sm3.Size * 8

var (
	iBytes = make([]byte, 4)
	rBytes []byte
	stream *chacha.Cipher
)

/* A zero key and nonce keep every run of statz comparable with the last. */
func init() {
	var err error
	if stream, err = chacha.NewCipher(make([]byte, chacha.NonceSize), make([]byte, chacha.KeySize), 20); err != nil {
		panic(err)
	}
}

func makeBytes(size int) {
	rBytes = make([]byte, size)
	stream.XORKeyStream(rBytes, rBytes)
}

// meanBias returns how far, on average, each output bit strays from being set in exactly half of
// all outputs, as a percentage of that half.
func meanBias(tally []int32, samples uint32) float64 {
	var total int32
	for i := range tally {
		d := tally[i] - int32(samples>>1)
		if d < 0 {
			d = -d
		}
		total += d
	}
	return (float64(total) / float64(len(tally))) / float64(samples>>1) * 100
}

func count(tally []int32, out []byte) {
	for i, b := range out {
		for j := 7; j >= 0; j-- {
			if b>>j&1 == 1 {
				tally[i*8+7-j]++
			}
		}
	}
}

func monobit() {
	integers, random := make([]int32, digestBits), make([]int32, digestBits)
	for i := ints; i > 0; i-- {
		binary.BigEndian.PutUint32(iBytes, i)
		sum := sm3.Sum(iBytes)
		count(integers, sum[:])
		makeBytes(1024)
		sum = sm3.Sum(rBytes)
		count(random, sum[:])
	}
	fmt.Printf("SM3 integer input Monobit test:  %6.3f%%\n", meanBias(integers, ints))
	fmt.Printf("SM3 random input Monobit test:   %6.3f%%\n", meanBias(random, ints))
}

// avalanche flips one random bit of a random message and reports the mean share of digest bits
// that change, which sits near 50% for a well-mixed compression function.
func avalanche() {
	var flipped uint64
	for i := ints; i > 0; i-- {
		makeBytes(64)
		a := sm3.Sum(rBytes)
		bit := binary.BigEndian.Uint32(rBytes) % (64 * 8)
		rBytes[bit/8] ^= 1 << (bit % 8)
		b := sm3.Sum(rBytes)
		for j := 0; j < sm3.Size; j += 8 {
			flipped += uint64(bits.OnesCount64(binary.BigEndian.Uint64(a[j:]) ^ binary.BigEndian.Uint64(b[j:])))
		}
	}
	fmt.Printf("SM3 single-bit Avalanche test:   %6.3f%%\n",
		float64(flipped)/float64(uint64(ints)*digestBits)*100)
}

/* Counter blocks under one key expose bias in the cipher alone, since blocks are never chained. */
func cipherMonobit() {
	makeBytes(sm4.KeySize)
	key := make([]uint32, sm4.KeySize/4)
	for i := range key {
		key[i] = binary.BigEndian.Uint32(rBytes[i*4:])
	}
	block := sm4.NewCipherWords(key).Block()

	tally, in, out := make([]int32, sm4.BlockSize*8), make([]byte, sm4.BlockSize), make([]byte, sm4.BlockSize)
	for i := ints; i > 0; i-- {
		binary.BigEndian.PutUint32(in[sm4.BlockSize-4:], i)
		block.Encrypt(out, in)
		count(tally, out)
	}
	fmt.Printf("SM4 counter input Monobit test:  %6.3f%%\n", meanBias(tally, ints))
}
