package db

import (
	"errors"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

// ErrNotObject is returned by DecodeRecord for input that is not a single
// JSON object.
var ErrNotObject = errors.New("record is not a JSON object")

// DecodeRecord reads exactly one JSON object from r. Integer literals that fit
// an int64 decode as int64 so large identifiers survive storage unchanged;
// other numbers decode as float64.
func DecodeRecord(r io.Reader) (Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotObject
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, ErrNotObject
	}

	for k, v := range record {
		record[k] = fromNumber(v)
	}
	return Record(record), nil
}

func fromNumber(v any) any {
	switch val := v.(type) {
	case json.Number:
		s := val.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, err := val.Int64(); err == nil {
				return n
			}
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		// Out of float64 range; keep the literal.
		return s
	case map[string]any:
		for k, e := range val {
			val[k] = fromNumber(e)
		}
		return val
	case []any:
		for i, e := range val {
			val[i] = fromNumber(e)
		}
		return val
	default:
		return v
	}
}
