package textcodec

import (
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"strings"
	"testing"
)

func TestEncodeUTF8(t *testing.T) {
	for _, tc := range []struct {
		text, hex string
	}{
		{"", ""},
		{"abc", "616263"},
		{"\x7f", "7F"},
		{"\u0080", "C280"},
		{"é", "C3A9"},
		{"\u07ff", "DFBF"},
		{"\u0800", "E0A080"},
		{"中文", "E4B8ADE69687"},
		{"\uffff", "EFBFBF"},
		{"\U00010000", "F0908080"},
		{"😀", "F09F9880"},
		{"\U0010ffff", "F48FBFBF"},
	} {
		got, err := EncodeUTF8(tc.text)
		require.NoError(t, err)
		require.Equal(t, tc.hex, got, "text %q", tc.text)
	}
}

func TestEncodeRunesOutOfRange(t *testing.T) {
	_, err := EncodeRunes([]rune{'a', 0x110000})
	require.ErrorIs(t, err, ErrEncodingRange)
	require.Contains(t, err.Error(), "index 1")

	_, err = EncodeRunes([]rune{-1})
	require.ErrorIs(t, err, ErrEncodingRange)
}

func TestDecodeUTF8(t *testing.T) {
	got, err := DecodeUTF8("E4B8ADe69687F09F9880")
	require.NoError(t, err)
	require.Equal(t, "中文😀", got)

	got, err = DecodeUTF8("")
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestDecodeUTF8Malformed(t *testing.T) {
	for _, in := range []string{
		"616",      /* odd length */
		"6G",       /* not hex */
		"80",       /* bare continuation byte */
		"F8808080", /* five-byte lead */
		"E4B8",     /* truncated */
		"C341",     /* bad continuation */
		"F4908080", /* above U+10FFFF */
		"EDA080",   /* surrogate U+D800 */
		"EDBFBF",   /* surrogate U+DFFF */
	} {
		_, err := DecodeUTF8(in)
		require.ErrorIs(t, err, ErrMalformed, "input %q", in)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, text := range []string{
		"", "hello, world", "Grüße", "日本語のテキスト", "mixed 𝄞 clef and ascii", strings.Repeat("ü", 300),
	} {
		enc, err := EncodeUTF8(text)
		require.NoError(t, err)
		dec, err := DecodeUTF8(enc)
		require.NoError(t, err)
		require.Equal(t, text, dec)
	}
}

func TestSentinelsLog(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	defer zap.ReplaceGlobals(zap.New(core))()

	require.Equal(t, "", FromUTF8("ABC"))
	require.Equal(t, "616263", ToUTF8("abc"))
	require.Equal(t, "abc", FromUTF8("616263"))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "textcodec", entries[0].ContextMap()["component"])
	require.Equal(t, int64(3), entries[0].ContextMap()["length"])
}

func TestEncodeBits(t *testing.T) {
	require.Equal(t, "", EncodeBits(""))
	require.Equal(t, "011000010110001001100011", EncodeBits("abc"))
	/* é fits a byte, so the narrow width is kept. */
	require.Equal(t, "11101001", EncodeBits("é"))
	/* One wide unit widens every unit. */
	require.Equal(t, "0000000001100001"+"0100111000101101", EncodeBits("a中"))
}

func TestEncodeUnits(t *testing.T) {
	require.Equal(t, []byte("abc"), EncodeUnits("abc"))
	require.Equal(t, []byte{0x00, 0x61, 0x4e, 0x2d}, EncodeUnits("a中"))
	/* Supplementary characters become surrogate pairs. */
	require.Equal(t, []byte{0xd8, 0x3d, 0xde, 0x00}, EncodeUnits("😀"))
}
