package identity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
)

// MaxDecodeDepth bounds how many times a JSON column is re-decoded while it
// still holds a JSON-encoded string. Legacy rows are double or triple encoded.
const MaxDecodeDepth = 4

// DecodeSpec decodes a creative spec column into a plain value. Empty input and
// JSON null both yield nil. Numbers come back as json.Number so ids keep their
// exact textual form.
func DecodeSpec(raw []byte) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	v, err := decodeOnce(raw)
	if err != nil {
		return nil, err
	}
	for i := 1; ; i++ {
		s, ok := v.(string)
		if !ok {
			return v, nil
		}
		if i >= MaxDecodeDepth {
			return nil, ads.NewError(ads.CodeMalformed, "identity.DecodeSpec",
				fmt.Sprintf("still a string after %d decodes", MaxDecodeDepth), ads.ErrMalformedSpec)
		}
		if s == "" {
			return nil, nil
		}
		if v, err = decodeOnce([]byte(s)); err != nil {
			return nil, err
		}
	}
}

func decodeOnce(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, ads.NewError(ads.CodeMalformed, "identity.DecodeSpec", err.Error(), ads.ErrMalformedSpec)
	}
	if dec.More() {
		return nil, ads.NewError(ads.CodeMalformed, "identity.DecodeSpec", "trailing data after JSON value", ads.ErrMalformedSpec)
	}
	return v, nil
}

// SpecEqual compares two spec columns by decoded value, so whitespace, key
// order and extra encoding layers never count as a change.
func SpecEqual(a, b []byte) (bool, error) {
	va, err := DecodeSpec(a)
	if err != nil {
		return false, err
	}
	vb, err := DecodeSpec(b)
	if err != nil {
		return false, err
	}
	return valuesEqual(va, vb), nil
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, ok := bv[k]
			if !ok || !valuesEqual(x, y) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case json.Number:
		bv, ok := b.(json.Number)
		if !ok {
			return false
		}
		if av == bv {
			return true
		}
		// 1.0 and 1 decode to the same Python value.
		fa, errA := av.Float64()
		fb, errB := bv.Float64()
		return errA == nil && errB == nil && fa == fb
	default:
		return a == b
	}
}
