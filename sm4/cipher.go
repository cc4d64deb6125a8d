package sm4

import (
	"crypto/cipher"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"github.com/p7r0x7/guomi/textcodec"
	"go.uber.org/zap"
	"strings"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// This file contains the text- and word-oriented API over the SM4 transform.

var (
	// ErrCiphertextLength reports ciphertext hex that is not a whole number of blocks.
	ErrCiphertextLength = errors.New("sm4: ciphertext length not a multiple of 32 hex digits")
	// ErrCiphertextHex reports ciphertext containing a non-hex character.
	ErrCiphertextHex = errors.New("sm4: ciphertext not hex")
)

// Cipher holds an expanded SM4 key. It is immutable once built, so one Cipher may serve any
// number of goroutines.
type Cipher struct {
	schedule [rounds + 4]uint32
}

// NewCipher derives a key from the UTF-8 form of key. Only the first 16 bytes are used; shorter
// keys are zero-filled.
func NewCipher(key string) (*Cipher, error) {
	b, err := textcodec.AppendUTF8(make([]byte, 0, KeySize), []rune(key))
	if err != nil {
		return nil, err
	}
	if len(b) > KeySize {
		zap.L().Debug("sm4 key material truncated", zap.String("component", "sm4"),
			zap.Int("bytes", len(b)), zap.Int("kept", KeySize))
	}
	var raw [KeySize]byte
	copy(raw[:], b)
	return NewCipherWords(toWords(raw[:])), nil
}

// NewCipherWords builds a Cipher from up to four key words; missing words are zero and extra
// words are ignored.
func NewCipherWords(key []uint32) *Cipher {
	var mk [4]uint32
	copy(mk[:], key)
	return &Cipher{schedule: expandKey(mk)}
}

// Encrypt encrypts the UTF-8 form of plaintext, zero-padded to whole blocks, and returns
// uppercase hex of 32 digits per block. Empty plaintext encrypts to "".
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	b, err := textcodec.AppendUTF8(nil, []rune(plaintext))
	if err != nil {
		return "", err
	}
	return c.EncryptWords(toWords(b)), nil
}

// EncryptWords encrypts words, zero-padded to a multiple of four, block by block.
func (c *Cipher) EncryptWords(words []uint32) string {
	out := make([]byte, (len(words)+3)/4*BlockSize)
	for i := 0; i < len(out); i += BlockSize {
		var in [4]uint32
		copy(in[:], words[i/4:])
		putBlock(out[i:], crypt(&c.schedule, in, false))
	}
	return strings.ToUpper(hex.EncodeToString(out))
}

// DecryptWords reverses EncryptWords, padding included.
func (c *Cipher) DecryptWords(ciphertext string) ([]uint32, error) {
	if len(ciphertext)%(BlockSize*2) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrCiphertextLength, len(ciphertext))
	}
	b, err := hex.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCiphertextHex, err)
	}
	words := make([]uint32, 0, len(b)/4)
	for i := 0; i < len(b); i += BlockSize {
		out := crypt(&c.schedule, getBlock(b[i:]), true)
		words = append(words, out[:]...)
	}
	return words, nil
}

// Decrypt reverses Encrypt. Trailing NUL characters are taken as padding and removed, so
// plaintext that itself ends in NUL does not survive the round trip.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	words, err := c.DecryptWords(ciphertext)
	if err != nil {
		return "", err
	}
	b := make([]byte, len(words)*4)
	for i, w := range words {
		binary.BigEndian.PutUint32(b[i*4:], w)
	}
	text, err := textcodec.DecodeBytes(b)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(text, "\x00"), nil
}

// Block exposes the raw 16-byte transform of c as a cipher.Block.
func (c *Cipher) Block() cipher.Block { return block{c} }

type block struct{ c *Cipher }

func (b block) BlockSize() int { return BlockSize }

func (b block) Encrypt(dst, src []byte) {
	checkBlock(dst, src)
	putBlock(dst, crypt(&b.c.schedule, getBlock(src), false))
}

func (b block) Decrypt(dst, src []byte) {
	checkBlock(dst, src)
	putBlock(dst, crypt(&b.c.schedule, getBlock(src), true))
}

/* src is read completely before dst is written, so overlapping buffers are fine. */
func checkBlock(dst, src []byte) {
	if len(src) < BlockSize {
		panic("sm4: input not full block")
	}
	if len(dst) < BlockSize {
		panic("sm4: output not full block")
	}
}

/* toWords reads big-endian words from b, zero-filling the last one. */
func toWords(b []byte) []uint32 {
	words := make([]uint32, (len(b)+3)/4)
	for i, v := range b {
		words[i/4] |= uint32(v) << (24 - 8*(i%4))
	}
	return words
}

func getBlock(b []byte) [4]uint32 {
	return [4]uint32{
		binary.BigEndian.Uint32(b[0:]), binary.BigEndian.Uint32(b[4:]),
		binary.BigEndian.Uint32(b[8:]), binary.BigEndian.Uint32(b[12:])}
}

func putBlock(b []byte, x [4]uint32) {
	binary.BigEndian.PutUint32(b[0:], x[0])
	binary.BigEndian.PutUint32(b[4:], x[1])
	binary.BigEndian.PutUint32(b[8:], x[2])
	binary.BigEndian.PutUint32(b[12:], x[3])
}
