package ranking

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Payload keys.
const (
	KeyToSort    = "toSort"
	KeyDPriority = "dPriority"
	KeyPPriority = "pPriority"
	KeyRPriority = "rPriority"

	KeyDay   = "d"
	KeyPrice = "p"
	KeyRank  = "r"
)

// Only days 01..15 of June 2015 are accepted. The pattern is a prefix match.
var dayPattern = regexp.MustCompile(`^([0-9]{2}):06:2015`)

// Validate checks a decoded payload and returns the typed request.
// Checks run in a fixed order and the first failure is returned as a
// *ValidationError; nothing is accumulated.
func Validate(raw any) (*Request, error) {
	data, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrInvalidData()
	}

	toSort, ok := data[KeyToSort]
	if !ok {
		return nil, missingRequired(KeyToSort)
	}

	var w WeightSet
	for _, p := range []struct {
		key string
		dst *int
	}{
		{KeyDPriority, &w.Day},
		{KeyPPriority, &w.Price},
		{KeyRPriority, &w.Rank},
	} {
		v, ok := data[p.key]
		if !ok {
			return nil, missingRequired(p.key)
		}
		n, ok := toInt(v)
		if !ok {
			return nil, invalid(CodeInvalidPriority, "Priorities must be integers")
		}
		*p.dst = n
	}

	if err := w.Validate(); err != nil {
		return nil, invalid(CodeNegativePriority, "Priorities must be >= 0")
	}

	items, ok := toSort.([]any)
	if !ok {
		return nil, invalidRecords()
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		rec, err := validateRecord(item)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return &Request{Records: records, Weights: w}, nil
}

func validateRecord(item any) (Record, error) {
	fields, ok := item.(map[string]any)
	if !ok {
		return Record{}, invalidRecords()
	}

	d, ok := fields[KeyDay]
	if !ok {
		return Record{}, missingRecordKey(KeyDay)
	}
	rawP, ok := fields[KeyPrice]
	if !ok {
		return Record{}, missingRecordKey(KeyPrice)
	}
	p, ok := toInt(rawP)
	if !ok {
		return Record{}, invalidInteger()
	}
	rawR, ok := fields[KeyRank]
	if !ok {
		return Record{}, missingRecordKey(KeyRank)
	}
	r, ok := toInt(rawR)
	if !ok {
		return Record{}, invalidInteger()
	}

	day, err := parseDay(d)
	if err != nil {
		return Record{}, err
	}
	if p < PriceDomain.Lo || p > PriceDomain.Hi {
		return Record{}, invalid(CodePriceOutOfRange, `value of "p" must be between 100 and 250`)
	}
	if r < RankDomain.Lo || r > RankDomain.Hi {
		return Record{}, invalid(CodeRankOutOfRange, `value of "r" must be 1 or 2`)
	}

	return Record{Fields: fields, Day: day, Price: p, Rank: r}, nil
}

// parseDay extracts the day number from a "DD:06:2015" code.
func parseDay(v any) (int, error) {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	m := dayPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, invalid(CodeInvalidDay, `invalid value for "d":`+s)
	}
	day, _ := strconv.Atoi(m[1])
	if day < DayDomain.Lo || day > DayDomain.Hi {
		return 0, invalid(CodeDayOutOfRange, `"d" must be between "01:06:2015" and "15:06:2015"`)
	}
	return day, nil
}

// toInt converts a decoded JSON value to an integer. Non-integral numbers
// are truncated toward zero, numeric strings are parsed and booleans map to
// 1 and 0. Everything else is rejected.
func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		f, err := t.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		return truncate(f)
	case float64:
		return truncate(t)
	case int:
		return t, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		return int(n), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// truncate drops the fractional part, saturating at the int64 limits so that
// oversized values still fail the range checks instead of wrapping.
func truncate(f float64) (int, bool) {
	switch {
	case math.IsNaN(f):
		return 0, false
	case f >= math.MaxInt64:
		return math.MaxInt64, true
	case f <= math.MinInt64:
		return math.MinInt64, true
	}
	return int(math.Trunc(f)), true
}

func missingRequired(key string) *ValidationError {
	return invalid(CodeMissingKey, "required key not found:"+key)
}

func missingRecordKey(key string) *ValidationError {
	return invalid(CodeMissingRecordKey, "key not found:"+key)
}

func invalidRecords() *ValidationError {
	return invalid(CodeInvalidRecords, `"toSort" must be a list of objects`)
}

func invalidInteger() *ValidationError {
	return invalid(CodeInvalidInteger, `"p" and "r" must be integers`)
}
