package ranking

import (
	"bytes"
	"encoding/json"
	"io"
)

// Record is one item to rank. Fields is the caller's object exactly as
// decoded; Day, Price and Rank are the parsed attributes used for scoring.
type Record struct {
	Fields map[string]any
	Day    int
	Price  int
	Rank   int
}

// MarshalJSON writes the caller's original object, passthrough fields included.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields)
}

// Request is a validated ranking request.
type Request struct {
	Records []Record
	Weights WeightSet
}

// Decode parses a JSON payload into the untyped value Validate expects.
// Numbers are kept as json.Number so passthrough values are written back
// with their original literal.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, ErrInvalidData()
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrInvalidData()
	}
	return v, nil
}
