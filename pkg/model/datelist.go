package model

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrMalformedDates marks a date-list cell that cannot be decoded. Rows
// carrying it are dropped under the SkipAndContinue policy.
var ErrMalformedDates = errors.New("malformed date list")

// SkipAndContinue is the recovery policy for malformed input: the offending
// row (or token) is left out and processing carries on with the next one.
const SkipAndContinue = "skip-and-continue"

// ParseDateList decodes a textual list of ordinal day numbers such as
// "[737791, 737791, 737800]". Brackets, parentheses or braces are accepted,
// as are integral floats ("737791.0"). Any bad element fails the whole list.
func ParseDateList(raw string) ([]time.Time, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return nil, errors.Wrap(ErrMalformedDates, "empty cell")
	}

	if open, ok := closers[body[0]]; ok {
		if len(body) < 2 || body[len(body)-1] != open {
			return nil, errors.Wrapf(ErrMalformedDates, "unbalanced %q", raw)
		}
		body = strings.TrimSpace(body[1 : len(body)-1])
	}
	if body == "" {
		return nil, nil
	}

	parts := strings.Split(body, ",")
	dates := make([]time.Time, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" && i == len(parts)-1 && i > 0 {
			// trailing comma, e.g. "(737791,)"
			break
		}

		n, err := parseOrdinal(part)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedDates, "element %d %q", i, part)
		}
		d, err := FromOrdinal(n)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedDates, "element %d: %v", i, err)
		}
		dates = append(dates, d)
	}

	return dates, nil
}

var closers = map[byte]byte{'[': ']', '(': ')', '{': '}'}

func parseOrdinal(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, errors.Newf("not an ordinal: %s", s)
	}
	return int(math.Trunc(f)), nil
}
