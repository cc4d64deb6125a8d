// Package textcodec converts between Go text and the two byte-level representations the SM3 and
// SM4 implementations consume: uppercase UTF-8 hex and the two-width code-unit bit string.
package textcodec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"strings"
	"unicode/utf16"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

const maxRune = 0x10ffff

var (
	// ErrEncodingRange reports a code point that UTF-8 cannot represent.
	ErrEncodingRange = errors.New("textcodec: code point exceeds utf-8 range")
	// ErrMalformed reports hex or UTF-8 input that cannot be decoded.
	ErrMalformed = errors.New("textcodec: malformed utf-8 input")
)

// AppendUTF8 appends the UTF-8 form of runes to dst. Each code point is classified by the
// 0x7f, 0x7ff, 0xffff and 0x10ffff boundaries into its 1- to 4-byte pattern.
func AppendUTF8(dst []byte, runes []rune) ([]byte, error) {
	for i, r := range runes {
		switch c := uint32(r); {
		case c <= 0x7f:
			dst = append(dst, byte(c))
		case c <= 0x7ff:
			dst = append(dst, 0xc0|byte(c>>6), 0x80|byte(c&0x3f))
		case c <= 0xffff:
			dst = append(dst, 0xe0|byte(c>>12), 0x80|byte(c>>6&0x3f), 0x80|byte(c&0x3f))
		case c <= maxRune:
			dst = append(dst, 0xf0|byte(c>>18), 0x80|byte(c>>12&0x3f),
				0x80|byte(c>>6&0x3f), 0x80|byte(c&0x3f))
		default:
			return dst, fmt.Errorf("%w: U+%X at index %d", ErrEncodingRange, c, i)
		}
	}
	return dst, nil
}

// EncodeRunes renders runes as uppercase UTF-8 hex.
func EncodeRunes(runes []rune) (string, error) {
	buf, err := AppendUTF8(make([]byte, 0, len(runes)*4), runes)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// EncodeUTF8 renders text as uppercase UTF-8 hex. Invalid bytes in text are read as U+FFFD, so
// the only failing input is one built from raw code points; see EncodeRunes.
func EncodeUTF8(text string) (string, error) {
	return EncodeRunes([]rune(text))
}

// DecodeBytes reassembles text from UTF-8 bytes. Sequence length is chosen by the 0, 110, 1110
// and 11110 leading-bit patterns. Surrogate halves have no UTF-8 form and are rejected.
func DecodeBytes(b []byte) (string, error) {
	runes := make([]rune, 0, len(b))
	for i := 0; i < len(b); {
		var n int
		var r rune
		switch lead := b[i]; {
		case lead&0x80 == 0:
			n, r = 1, rune(lead)
		case lead&0xe0 == 0xc0:
			n, r = 2, rune(lead&0x1f)
		case lead&0xf0 == 0xe0:
			n, r = 3, rune(lead&0x0f)
		case lead&0xf8 == 0xf0:
			n, r = 4, rune(lead&0x07)
		default:
			return "", fmt.Errorf("%w: leading byte %02X at offset %d", ErrMalformed, lead, i)
		}
		if i+n > len(b) {
			return "", fmt.Errorf("%w: truncated sequence at offset %d", ErrMalformed, i)
		}
		for k, c := range b[i+1 : i+n] {
			if c&0xc0 != 0x80 {
				return "", fmt.Errorf("%w: continuation byte %02X at offset %d", ErrMalformed, c, i+1+k)
			}
			r = r<<6 | rune(c&0x3f)
		}
		if r > maxRune || (r >= 0xd800 && r <= 0xdfff) {
			return "", fmt.Errorf("%w: U+%X at offset %d", ErrMalformed, r, i)
		}
		runes = append(runes, r)
		i += n
	}
	return string(runes), nil
}

// DecodeUTF8 is the inverse of EncodeUTF8; hex digits of either case are accepted.
func DecodeUTF8(hexs string) (string, error) {
	if len(hexs)&1 != 0 {
		return "", fmt.Errorf("%w: odd hex length %d", ErrMalformed, len(hexs))
	}
	b, err := hex.DecodeString(hexs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return DecodeBytes(b)
}

// ToUTF8 is EncodeUTF8 with the failure folded into an empty result and a logged warning.
func ToUTF8(text string) string {
	s, err := EncodeUTF8(text)
	if err != nil {
		logger().Warn("text not encodable as utf-8", zap.Error(err))
		return ""
	}
	return s
}

// FromUTF8 is DecodeUTF8 with the failure folded into an empty result and a logged warning.
func FromUTF8(hexs string) string {
	s, err := DecodeUTF8(hexs)
	if err != nil {
		logger().Warn("hex not decodable as utf-8", zap.Int("length", len(hexs)), zap.Error(err))
		return ""
	}
	return s
}

// EncodeUnits packs text as UTF-16 code units, one byte each unless some unit exceeds 0xff, in
// which case every unit takes two big-endian bytes. This is not UTF-8 nor strictly UTF-16.
func EncodeUnits(text string) []byte {
	units, wide := utf16.Encode([]rune(text)), false
	for _, u := range units {
		if u > 0xff {
			wide = true
			break
		}
	}
	if !wide {
		out := make([]byte, len(units))
		for i, u := range units {
			out[i] = byte(u)
		}
		return out
	}
	out := make([]byte, len(units)*2)
	for i, u := range units {
		out[i*2], out[i*2+1] = byte(u>>8), byte(u)
	}
	return out
}

// EncodeBits is EncodeUnits written out as a string of '0' and '1'.
func EncodeBits(text string) string {
	units := EncodeUnits(text)
	var sb strings.Builder
	sb.Grow(len(units) * 8)
	for _, b := range units {
		fmt.Fprintf(&sb, "%08b", b)
	}
	return sb.String()
}

func logger() *zap.Logger { return zap.L().With(zap.String("component", "textcodec")) }
