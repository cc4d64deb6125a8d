package main

import (
	"encoding/base64"
	. "fmt"
	"github.com/p7r0x7/guomi/sm3"
	"github.com/p7r0x7/guomi/sm4"
	"github.com/p7r0x7/guomi/textcodec"
	"github.com/p7r0x7/vainpath"
	. "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"io"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"time"
	"unicode/utf8"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

const n = "\n"
const success, failure, invalid = 0, 1, 2

var warnings = 0

func main() { os.Exit(program()) }

// help prints a usage menu. To consistently correctly render this menu in most terminal windows,
// its content should be no wider than 80 columns.
func help() {
	origin, err := os.Executable()
	if err != nil {
		origin = "gmsum" /* Default binary name */
	} else {
		origin = filepath.Base(origin)
	}
	name := vainpath.Trim(origin, "…", 12)
	spaces := strings.Repeat(" ", utf8.RuneCountInString(name)+3)
	Fprint(os.Stderr, yell, "SM3 digests and SM4 encryption for files and text.", zero, n+n+
		"Usage:"+n+
		"  ", name, " [-h]"+n,
		spaces, "[-bpt] [-c FILE] [--quiet|no-codes] [--strict] -|PATH..."+n,
		spaces, "[-bpt] [-c FILE] [--quiet|no-codes] [--strict] -s STRING..."+n,
		spaces, "-e|-d -k KEY [-st] [-c FILE] [--quiet|no-codes] [--strict] ARG..."+n+n+
			"Options:"+n)
	PrintDefaults()
	name = vainpath.Trim(origin, "…", 15)
	Fprint(os.Stderr, n+"Order of arguments placed after `", name, "` does not matter unless `--` is"+
		n+"specified, signaling the end of parsed flags. Long-form flag equivalents are"+n+
		"above. `-` is treated as a reference to ", os.Stdin.Name(), " on this platform."+n)
}

// This program is a command-line interface for the sm3 and sm4 packages: It hashes, encrypts or
// decrypts an unlimited number of files or strings as required by the command-line operator.
func program() int {
	Parse()
	pStrict = pStrict || pDebug
	if pNoCodes {
		noCodes()
	}

	log := newLogger()
	defer log.Sync()
	defer zap.ReplaceGlobals(log)()

	if pDebug {
		if cf, err := os.Create("cpu.prof"); err == nil {
			_ = pprof.StartCPUProfile(cf)
			defer pprof.StopCPUProfile()
		}
	}

	if pConfig != "" {
		cfg, err := loadConfig(pConfig)
		if err != nil {
			log.Error("unusable configuration", zap.String("path", pConfig), zap.Error(err))
			return invalid
		}
		cfg.apply()
	}

	if pHelp || NArg() == 0 {
		help()
		return success
	} else if pEncrypt && pDecrypt {
		Fprint(os.Stderr, purp, "--encrypt and --decrypt cannot be combined.", zero, n)
		return invalid
	} else if (pEncrypt || pDecrypt) && pKey == "" {
		Fprint(os.Stderr, purp, "--encrypt and --decrypt require a --key.", zero, n)
		return invalid
	}

	var c *sm4.Cipher
	if pEncrypt || pDecrypt {
		var err error
		if c, err = sm4.NewCipher(pKey); err != nil {
			log.Error("unusable key", zap.Error(err))
			return invalid
		}
		star = "(*)"
	}

	for _, target := range Args() {
		start, delta := time.Now(), ""

		var out string
		var err error
		if c != nil {
			out, err = transform(c, target)
		} else {
			out, err = digest(target)
		}
		if err != nil {
			warn(target, err)
			continue
		}

		if pTime {
			d := time.Since(start)
			if d.Microseconds() > 99 {
				d = d.Truncate(10 * time.Microsecond)
			}
			delta = " (" + d.String() + ")"
		}

		if pQuiet {
			Println(out)
		} else if pString {
			Print(star, yell, out, zero, `  "`, target, `"`, zero, delta, n)
		} else if pNoCodes {
			Print(star, out, `  `, filepath.Clean(target), delta, n)
		} else {
			Print(star, yell, out, zero, `  `, und, vainpath.Simplify(target), zero, delta, n)
		}
	}

	if !pQuiet {
		if warnings == 1 {
			Fprint(os.Stderr, "1 ", purp, "target could not be processed.", zero, n)
		} else if warnings > 1 {
			Fprint(os.Stderr, warnings, " ", purp, "targets could not be processed.", zero, n)
		}
	}
	if warnings > 0 {
		return failure
	}
	return success
}

// digest returns the SM3 digest of target: the target itself when --string is set, otherwise
// the bytes of the file it names.
func digest(target string) (string, error) {
	if pString && !pBase64 {
		return sm3.Hash(target, pPretty), nil
	}

	var sum [sm3.Size]byte
	if pString {
		sum = sm3.Sum(textcodec.EncodeUnits(target))
	} else {
		r, err := open(target)
		if err != nil {
			return "", err
		}
		h := sm3.New()
		_, err = io.Copy(h, r)
		go r.Close()
		if err != nil {
			return "", err
		}
		copy(sum[:], h.Sum(nil))
	}

	if pBase64 {
		return base64.StdEncoding.EncodeToString(sum[:]), nil
	}
	return sm3.Format(sum, pPretty), nil
}

// transform encrypts or decrypts target, or the contents of the file it names.
func transform(c *sm4.Cipher, target string) (string, error) {
	text := target
	if !pString {
		r, err := open(target)
		if err != nil {
			return "", err
		}
		b, err := io.ReadAll(r)
		go r.Close()
		if err != nil {
			return "", err
		}
		text = string(b)
	}

	if pEncrypt {
		if !utf8.ValidString(text) {
			zap.L().Warn("input is not valid UTF-8; invalid bytes are encrypted as U+FFFD",
				zap.String("target", target))
		}
		return c.Encrypt(text)
	}
	return c.Decrypt(strings.TrimSpace(text))
}

func open(target string) (io.ReadCloser, error) {
	if target == "-" || target == os.Stdin.Name() {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(target)
}

func newLogger() *zap.Logger {
	if pDebug {
		if log, err := zap.NewDevelopment(); err == nil {
			return log
		}
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if pQuiet {
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func warn(target string, err error) {
	if pStrict {
		panic(err)
	}
	if !pQuiet {
		zap.L().Warn("skipping target", zap.String("target", target), zap.Error(err))
	}
	warnings++
}
