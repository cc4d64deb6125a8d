// Package sm3 implements the SM3 cryptographic hash function (GB/T 32905-2016): a 256-bit
// digest built from a Merkle–Damgård iteration of a 64-round compression function over 512-bit
// blocks.
package sm3

import (
	"encoding/binary"
	"github.com/p7r0x7/guomi/textcodec"
	"math/bits"
	"strconv"
	"strings"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

const (
	// Size is the length of an SM3 digest in bytes.
	Size = 32
	// BlockSize is the length of a message block in bytes.
	BlockSize = 64

	rounds = 64
	t0, t1 = 0x79cc4519, 0x7a879d8a
)

/* The initial state vector. Every digest starts here and the final state is the digest. */
var iv = [8]uint32{
	0x7380166f, 0x4914b2b9, 0x172442d7, 0xda8a0600,
	0xa96f30bc, 0x163138aa, 0xe38dee4d, 0xb0fb0e4e,
}

// Hash digests text and renders it as 64 uppercase hex digits, or as eight space-separated
// groups of eight when pretty is set. Text is read as its two-width code-unit encoding (see
// textcodec.EncodeUnits), which for ASCII is the text's own bytes.
func Hash(text string, pretty bool) string {
	return Format(Sum(textcodec.EncodeUnits(text)), pretty)
}

// Sum returns the SM3 digest of msg.
func Sum(msg []byte) [Size]byte {
	d := digest{}
	d.Reset()
	d.Write(msg)
	return d.checkSum()
}

// Format renders sum as eight uppercase big-endian words.
func Format(sum [Size]byte, pretty bool) string {
	var sb strings.Builder
	sb.Grow(Size*2 + 7)
	for i := 0; i < Size; i += 4 {
		if pretty && i > 0 {
			sb.WriteByte(' ')
		}
		word := strconv.FormatUint(uint64(binary.BigEndian.Uint32(sum[i:])), 16)
		sb.WriteString(strings.Repeat("0", 8-len(word)))
		sb.WriteString(strings.ToUpper(word))
	}
	return sb.String()
}

// compress folds every whole block of p into v.
func compress(v *[8]uint32, p []byte) {
	var w [68]uint32
	for ; len(p) >= BlockSize; p = p[BlockSize:] {

		// Expansion
		for i := 0; i < 16; i++ {
			w[i] = binary.BigEndian.Uint32(p[i*4:])
		}
		for i := 16; i < 68; i++ {
			w[i] = p1(w[i-16]^w[i-9]^bits.RotateLeft32(w[i-3], 15)) ^
				bits.RotateLeft32(w[i-13], 7) ^ w[i-6]
		}

		// Compression
		a, b, c, d, e, f, g, h := v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7]
		for j := 0; j < rounds; j++ {
			a12 := bits.RotateLeft32(a, 12)
			ss1 := bits.RotateLeft32(a12+e+bits.RotateLeft32(tj(j), j%32), 7)
			ss2 := ss1 ^ a12
			tt1 := ff(j, a, b, c) + d + ss2 + (w[j] ^ w[j+4]) /* W'[j] */
			tt2 := gg(j, e, f, g) + h + ss1 + w[j]
			d, c, b, a = c, bits.RotateLeft32(b, 9), a, tt1
			h, g, f, e = g, bits.RotateLeft32(f, 19), e, p0(tt2)
		}

		/* Feedback: the next state is the previous one XORed with the working registers. */
		v[0] ^= a
		v[1] ^= b
		v[2] ^= c
		v[3] ^= d
		v[4] ^= e
		v[5] ^= f
		v[6] ^= g
		v[7] ^= h
	}
}

func tj(j int) uint32 {
	checkRound(j)
	if j < 16 {
		return t0
	}
	return t1
}

func ff(j int, x, y, z uint32) uint32 {
	checkRound(j)
	if j < 16 {
		return x ^ y ^ z
	}
	return x&y | x&z | y&z
}

func gg(j int, x, y, z uint32) uint32 {
	checkRound(j)
	if j < 16 {
		return x ^ y ^ z
	}
	return x&y | ^x&z
}

func p0(x uint32) uint32 { return x ^ bits.RotateLeft32(x, 9) ^ bits.RotateLeft32(x, 17) }

func p1(x uint32) uint32 { return x ^ bits.RotateLeft32(x, 15) ^ bits.RotateLeft32(x, 23) }

/* Rounds are bounded by the compression loop; reaching this panic is a programming error. */
func checkRound(j int) {
	if j < 0 || j >= rounds {
		panic("sm3: index out of range")
	}
}
