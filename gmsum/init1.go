package main

import (
	. "github.com/spf13/pflag"
	"os"
	"strings"
)

var pKey, pConfig, pNoCodesDefault = "", "", false
var pHelp, pBase64, pDecrypt, pEncrypt, pNoCodes, pPretty, pQuiet, pStrict, pString, pTime, pDebug bool
var star, yell, purp, und, zero = "", "\033[33m", "\033[35m", "\033[4m", "\033[0m"

func init() { declareFlags() }

/* Declares every flag on CommandLine, reading os.Args first for the options that decide how the
usage strings themselves are rendered. */
func declareFlags() {
	pNoCodes = pNoCodesDefault
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--no-codes=false":
			pNoCodes = false
		case "--quiet", "--quiet=true":
			pNoCodes, pQuiet = true, true
		case "--no-codes", "--no-codes=true":
			pNoCodes = true
		}
	}
	if pNoCodes {
		noCodes()
	}

	BoolVarP(&pHelp, "help", "h", false,
		purp+"print this help menu"+zero+n)

	BoolVarP(&pBase64, "base64", "b", false,
		purp+"render digests in base64"+zero+" (default hex)")

	StringVarP(&pConfig, "config", "c", "",
		purp+"read defaults from a YAML file; flags still win"+zero)

	BoolVar(&pDebug, "debug", false, "")
	CommandLine.MarkHidden("debug")

	BoolVarP(&pDecrypt, "decrypt", "d", false,
		purp+"decrypt hex arguments with SM4 and print the text"+zero)

	BoolVarP(&pEncrypt, "encrypt", "e", false,
		purp+"encrypt arguments with SM4 and print hex"+zero)

	StringVarP(&pKey, "key", "k", "",
		purp+"SM4 key as text; bytes past the 16th are ignored"+zero)

	Bool("no-codes", pNoCodesDefault,
		purp+"print to console w/o formatting codes or simplified"+zero+
			n+purp+"filepaths"+zero)

	BoolVarP(&pPretty, "pretty", "p", false,
		purp+"split hex digests into eight space-separated words"+zero)

	Bool("quiet", false,
		purp+"suppress non-breaking errors and print ONLY results"+zero+
			n+"(enables --no-codes)")

	BoolVar(&pStrict, "strict", false,
		purp+"cause gmsum to panic on any error"+zero)

	BoolVarP(&pString, "string", "s", false,
		purp+"process arguments instead as text"+zero)

	BoolVarP(&pTime, "time", "t", false,
		purp+"print time taken to read and process each target"+zero)

	/* Order flags alphabetically except for help, which is hoisted to the top. */
	CommandLine.SortFlags = false
}

/* Usage strings already declared keep their codes unless they are stripped here too. */
func noCodes() {
	if zero != "" {
		r := strings.NewReplacer(yell, "", purp, "", und, "", zero, "")
		CommandLine.VisitAll(func(f *Flag) { f.Usage = r.Replace(f.Usage) })
	}
	yell, purp, und, zero = "", "", "", ""
}
