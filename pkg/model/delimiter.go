package model

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"

	"github.com/csimplestring/go-csv/detector"
)

const sniffSize = 64 << 10

var allowedDelimiters = map[rune]bool{',': true, '\t': true, ';': true}

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file. Only comma, tab and
// semicolon are considered, and a candidate must occur in the header line.
// Without a usable candidate the most frequent of them in the header wins,
// and comma is the final fallback.
func DetermineDelimiter(r io.Reader) rune {
	sample, _ := io.ReadAll(io.LimitReader(r, sniffSize))
	header := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		header = sample[:i]
	}

	best, bestCount := ',', 0
	d := detector.New()
	for _, candidate := range d.DetectDelimiter(bytes.NewReader(sample), '"') {
		if len(candidate) == 0 {
			continue
		}
		delim := rune(candidate[0])
		if !allowedDelimiters[delim] {
			continue
		}
		if n := bytes.Count(header, []byte{byte(delim)}); n > bestCount {
			best, bestCount = delim, n
		}
	}
	if bestCount > 0 {
		return best
	}

	for _, delim := range []rune{',', '\t', ';'} {
		if n := bytes.Count(header, []byte{byte(delim)}); n > bestCount {
			best, bestCount = delim, n
		}
	}
	return best
}

// sniff wraps r in a buffered reader and inspects its head to pick the
// delimiter, without consuming anything.
func sniff(r io.Reader) (*bufio.Reader, rune) {
	br := bufio.NewReaderSize(r, sniffSize)
	sample, _ := br.Peek(sniffSize)
	return br, DetermineDelimiter(bytes.NewReader(sample))
}

func newCSVReader(r io.Reader, delim rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.ReuseRecord = false
	return cr
}
