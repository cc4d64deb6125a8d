package main

import (
	"github.com/p7r0x7/guomi/sm3"
	"github.com/p7r0x7/guomi/sm4"
	. "github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

/* Flags are package state; every test puts back what it touched. */
func withFlags(t *testing.T, str, b64, pretty, enc, dec bool) {
	saved := []bool{pString, pBase64, pPretty, pEncrypt, pDecrypt}
	pString, pBase64, pPretty, pEncrypt, pDecrypt = str, b64, pretty, enc, dec
	t.Cleanup(func() {
		pString, pBase64, pPretty, pEncrypt, pDecrypt = saved[0], saved[1], saved[2], saved[3], saved[4]
	})
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDigestString(t *testing.T) {
	withFlags(t, true, false, false, false, false)
	out, err := digest("abc")
	require.NoError(t, err)
	require.Equal(t, "66C7F0F462EEEDD9D1F2D46BDC10E4E24167C4875CF2F7A2297DA02B8F4BA8E0", out)

	pPretty = true
	out, err = digest("abc")
	require.NoError(t, err)
	require.Equal(t, sm3.Hash("abc", true), out)

	pBase64 = true
	out, err = digest("abc")
	require.NoError(t, err)
	require.Equal(t, "Zsfw9GLu7dnR8tRr3BDk4kFnxIdc8veiKX2gK49LqOA=", out)
}

func TestDigestFile(t *testing.T) {
	withFlags(t, false, false, false, false, false)
	out, err := digest(writeFile(t, "abc.txt", "abc"))
	require.NoError(t, err)
	require.Equal(t, sm3.Hash("abc", false), out)

	_, err = digest(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestTransformString(t *testing.T) {
	c, err := sm4.NewCipher("gmsum test key")
	require.NoError(t, err)

	withFlags(t, true, false, false, true, false)
	enc, err := transform(c, "plain text")
	require.NoError(t, err)

	pEncrypt, pDecrypt = false, true
	dec, err := transform(c, enc)
	require.NoError(t, err)
	require.Equal(t, "plain text", dec)
}

func TestTransformFile(t *testing.T) {
	c, err := sm4.NewCipher("gmsum test key")
	require.NoError(t, err)
	want, err := c.Encrypt("file contents")
	require.NoError(t, err)

	withFlags(t, false, false, false, true, false)
	enc, err := transform(c, writeFile(t, "plain.txt", "file contents"))
	require.NoError(t, err)
	require.Equal(t, want, enc)

	/* Hex read back from a file may end in a newline. */
	pEncrypt, pDecrypt = false, true
	dec, err := transform(c, writeFile(t, "cipher.txt", enc+"\n"))
	require.NoError(t, err)
	require.Equal(t, "file contents", dec)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(writeFile(t, "gmsum.yaml", "key: secret\noutput: base64\npretty: true\n"))
	require.NoError(t, err)
	require.Equal(t, configuration{Key: "secret", Output: "base64", Pretty: true}, cfg)

	savedKey, savedB64, savedPretty := pKey, pBase64, pPretty
	defer func() { pKey, pBase64, pPretty = savedKey, savedB64, savedPretty }()
	cfg.apply()
	require.Equal(t, "secret", pKey)
	require.True(t, pBase64)
	require.True(t, pPretty)
}

func TestLoadConfigRejects(t *testing.T) {
	for _, content := range []string{
		"colour: red\n",
		"output: binary\n",
		"pretty: [1, 2]\n",
	} {
		_, err := loadConfig(writeFile(t, "gmsum.yaml", content))
		require.Error(t, err, "content %q", content)
	}
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

/* run executes the whole program against args on a freshly declared flag set. */
func run(t *testing.T, args ...string) int {
	savedArgs, savedFlags := os.Args, CommandLine
	t.Cleanup(func() {
		os.Args, CommandLine = savedArgs, savedFlags
		yell, purp, und, zero = "\033[33m", "\033[35m", "\033[4m", "\033[0m"
	})

	pKey, pConfig = "", ""
	pHelp, pBase64, pDecrypt, pEncrypt, pNoCodes, pPretty = false, false, false, false, false, false
	pQuiet, pStrict, pString, pTime, pDebug = false, false, false, false, false
	star, warnings = "", 0
	yell, purp, und, zero = "\033[33m", "\033[35m", "\033[4m", "\033[0m"

	os.Args = append([]string{"gmsum"}, args...)
	CommandLine = NewFlagSet("gmsum", ContinueOnError)
	declareFlags()
	return program()
}

func TestProgramExitCodes(t *testing.T) {
	plain := writeFile(t, "plain.txt", "abc")
	badConfig := writeFile(t, "bad.yaml", "output: binary\n")
	keyConfig := writeFile(t, "key.yaml", "key: from file\n")
	missing := filepath.Join(t.TempDir(), "missing")

	for _, tc := range []struct {
		name string
		args []string
		want int
	}{
		{"no arguments prints help", nil, success},
		{"digest string", []string{"-s", "abc"}, success},
		{"digest file", []string{plain}, success},
		{"missing file", []string{plain, missing}, failure},
		{"encrypt and decrypt", []string{"-e", "-d", "-k", "k", "x"}, invalid},
		{"encrypt without key", []string{"-e", "-s", "hello"}, invalid},
		{"decrypt without key", []string{"-d", "-s", "00"}, invalid},
		{"encrypt with key", []string{"-e", "-k", "k", "-s", "hello"}, success},
		{"key from config", []string{"-c", keyConfig, "-e", "-s", "hello"}, success},
		{"unusable config", []string{"-c", badConfig, "-s", "abc"}, invalid},
		{"absent config", []string{"-c", missing, "-s", "abc"}, invalid},
		{"bad ciphertext", []string{"-d", "-k", "k", "-s", "ABC"}, failure},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, run(t, tc.args...))
		})
	}
}

func TestProgramCountsWarnings(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	require.Equal(t, failure, run(t, "--quiet", missing, missing+"2", writeFile(t, "ok.txt", "ok")))
	require.Equal(t, 2, warnings)
}

func TestProgramFlagsOverrideConfig(t *testing.T) {
	cfg := writeFile(t, "gmsum.yaml", "output: base64\npretty: true\n")
	require.Equal(t, success, run(t, "-c", cfg, "--base64=false", "-s", "abc"))
	require.False(t, pBase64)
	require.True(t, pPretty)
}

func TestProgramConfigNoCodesStripsUsage(t *testing.T) {
	cfg := writeFile(t, "gmsum.yaml", "noCodes: true\n")
	require.Equal(t, success, run(t, "-c", cfg, "-h"))
	CommandLine.VisitAll(func(f *Flag) {
		require.False(t, strings.Contains(f.Usage, "\033"), "flag %s", f.Name)
	})
}
