package platform

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ParseResult is the outcome of one marker parsing strategy.
type ParseResult struct {
	Value int
	OK    bool
}

// Parsed returns a successful result.
func Parsed(v int) ParseResult {
	return ParseResult{Value: v, OK: true}
}

// ParseFailed is the result of a strategy that found nothing usable.
var ParseFailed = ParseResult{}

// MarkerParser extracts the L4T major release from the first line of
// /etc/nv_tegra_release.
type MarkerParser func(line string) ParseResult

// markerParsers are tried in order; the first positive value wins.
var markerParsers = []MarkerParser{
	parseReleasePattern,
	parseReleaseFields,
	parseFirstDigits,
}

var releasePattern = regexp.MustCompile(`(?:^|[^A-Za-z])R(\d+)`)

// ParseL4TMajor runs the parser chain over an NFKC-normalized line.
//
// A typical line is:
//
//	# R36 (release), REVISION: 4.3, GCID: 38968081, BOARD: generic, EABI: aarch64
func ParseL4TMajor(line string) ParseResult {
	line = norm.NFKC.String(strings.TrimSpace(line))
	if line == "" {
		return ParseFailed
	}
	for _, parse := range markerParsers {
		if r := parse(line); r.OK && r.Value > 0 {
			return r
		}
	}
	return ParseFailed
}

// parseReleasePattern matches the "R<major>" token.
func parseReleasePattern(line string) ParseResult {
	m := releasePattern.FindStringSubmatch(line)
	if m == nil {
		return ParseFailed
	}
	return atoiResult(m[1])
}

// parseReleaseFields splits on the marker's delimiters and looks for an
// "R<major>" or "release <major>" field.
func parseReleaseFields(line string) ParseResult {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == '#' || r == ',' || r == '(' || r == ')' || r == ':' || unicode.IsSpace(r)
	})

	for i, f := range fields {
		if len(f) > 1 && (f[0] == 'R' || f[0] == 'r') {
			if r := atoiResult(f[1:]); r.OK {
				return r
			}
		}
		if strings.EqualFold(f, "release") && i+1 < len(fields) {
			if r := atoiResult(strings.TrimPrefix(strings.ToUpper(fields[i+1]), "R")); r.OK {
				return r
			}
		}
	}
	return ParseFailed
}

// parseFirstDigits returns the first run of ASCII digits in the line.
func parseFirstDigits(line string) ParseResult {
	start := strings.IndexFunc(line, isASCIIDigit)
	if start < 0 {
		return ParseFailed
	}
	end := start
	for end < len(line) && isASCIIDigit(rune(line[end])) {
		end++
	}
	return atoiResult(line[start:end])
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func atoiResult(s string) ParseResult {
	if s == "" {
		return ParseFailed
	}
	for _, r := range s {
		if !isASCIIDigit(r) {
			return ParseFailed
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return ParseFailed
	}
	return Parsed(v)
}
