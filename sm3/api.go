package sm3

import (
	"encoding/binary"
	"hash"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// This file contains a Go-specific API implementing the standard hash.Hash interface.

type digest struct {
	v      [8]uint32
	carry  [BlockSize]byte
	n      int    /* bytes held in carry */
	length uint64 /* bytes written since Reset */
}

// New returns a hash.Hash computing the SM3 digest of the bytes written to it.
func New() hash.Hash {
	d := &digest{}
	d.Reset()
	return d
}

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return BlockSize }

func (d *digest) Reset() {
	d.v, d.n, d.length = iv, 0, 0
}

func (d *digest) Write(buf []byte) (int, error) {
	count := len(buf)
	d.length += uint64(count)
	if d.n > 0 {
		k := copy(d.carry[d.n:], buf)
		d.n += k
		buf = buf[k:]
		if d.n < BlockSize {
			return count, nil
		}
		compress(&d.v, d.carry[:])
		d.n = 0
	}

	if whole := len(buf) &^ (BlockSize - 1); whole > 0 {
		compress(&d.v, buf[:whole])
		buf = buf[whole:]
	}
	if len(buf) > 0 {
		d.n = copy(d.carry[:], buf)
	}
	return count, nil
}

// Sum appends the digest to buf without disturbing the running state.
func (d *digest) Sum(buf []byte) []byte {
	dup := *d
	sum := dup.checkSum()
	return append(buf, sum[:]...)
}

/* Padding is a single 1 bit, zeroes up to 448 mod 512 bits, then the 64-bit message length. */
func (d *digest) checkSum() [Size]byte {
	var tail [BlockSize + 8]byte
	bitLength := d.length << 3
	tail[0] = 0x80
	pad := 56 - int(d.length%BlockSize)
	if pad <= 0 {
		pad += BlockSize
	}
	binary.BigEndian.PutUint64(tail[pad:], bitLength)
	d.Write(tail[:pad+8])

	var out [Size]byte
	for i, word := range d.v {
		binary.BigEndian.PutUint32(out[i*4:], word)
	}
	return out
}
