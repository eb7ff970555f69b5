package identity

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// CreativeContentHash derives the id of a creative that arrives without one.
// It hashes the canonical form the legacy ingestion used (sorted keys, ", "
// and ": " separators, non-ASCII left verbatim) so previously derived ids stay
// stable.
func CreativeContentHash(fields map[string]any) (string, error) {
	var sb strings.Builder
	if err := writeCanonical(&sb, fields); err != nil {
		return "", err
	}
	sum := md5.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:]), nil
}

// TextAssetID is md5("{platformAdID}_{text}_{textType}").
func TextAssetID(platformAdID, text, textType string) string {
	sum := md5.Sum([]byte(platformAdID + "_" + text + "_" + textType))
	return hex.EncodeToString(sum[:])
}

// CanonicalJSON exposes the canonical encoding, mostly for tests and debugging.
func CanonicalJSON(v any) (string, error) {
	var sb strings.Builder
	if err := writeCanonical(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeCanonical(sb *strings.Builder, v any) error {
	switch t := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		if t {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case string:
		writeString(sb, t)
	case json.Number:
		return writeNumber(sb, t)
	case int:
		sb.WriteString(strconv.Itoa(t))
	case int64:
		sb.WriteString(strconv.FormatInt(t, 10))
	case uint:
		sb.WriteString(strconv.FormatUint(uint64(t), 10))
	case uint64:
		sb.WriteString(strconv.FormatUint(t, 10))
	case float64:
		return writeFloat(sb, t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeString(sb, k)
			sb.WriteString(": ")
			if err := writeCanonical(sb, t[k]); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	case []any:
		sb.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := writeCanonical(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case []string:
		items := make([]any, len(t))
		for i := range t {
			items[i] = t[i]
		}
		return writeCanonical(sb, items)
	default:
		return fmt.Errorf("canonical json: unsupported type %T", v)
	}
	return nil
}

// writeNumber re-formats a decoded number the way the legacy decoder did:
// literals with a fraction or exponent become floats, the rest stay exact
// integers.
func writeNumber(sb *strings.Builder, n json.Number) error {
	lit := n.String()
	if strings.ContainsAny(lit, ".eE") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return fmt.Errorf("canonical json: number %q: %w", lit, err)
		}
		return writeFloat(sb, f)
	}
	i, ok := new(big.Int).SetString(lit, 10)
	if !ok {
		return fmt.Errorf("canonical json: number %q is not an integer", lit)
	}
	sb.WriteString(i.String())
	return nil
}

// writeFloat prints the shortest round-trip digits, positional while the
// decimal point sits within 16 digits (always with a fractional part),
// otherwise as d[.ddd]e+XX.
func writeFloat(sb *strings.Builder, f float64) error {
	switch {
	case math.IsNaN(f):
		sb.WriteString("NaN")
		return nil
	case math.IsInf(f, 1):
		sb.WriteString("Infinity")
		return nil
	case math.IsInf(f, -1):
		sb.WriteString("-Infinity")
		return nil
	}
	// d.dddde±XX
	e := strconv.FormatFloat(f, 'e', -1, 64)
	if e[0] == '-' {
		sb.WriteByte('-')
		e = e[1:]
	}
	mant, exp, _ := strings.Cut(e, "e")
	x, err := strconv.Atoi(exp)
	if err != nil {
		return fmt.Errorf("canonical json: float %v: %w", f, err)
	}
	digits := strings.Replace(mant, ".", "", 1)
	decpt := x + 1
	switch {
	case decpt <= -4 || decpt > 16:
		sb.WriteString(digits[:1])
		if len(digits) > 1 {
			sb.WriteByte('.')
			sb.WriteString(digits[1:])
		}
		sign := byte('+')
		if x < 0 {
			sign, x = '-', -x
		}
		sb.WriteByte('e')
		sb.WriteByte(sign)
		if x < 10 {
			sb.WriteByte('0')
		}
		sb.WriteString(strconv.Itoa(x))
	case decpt <= 0:
		sb.WriteString("0.")
		sb.WriteString(strings.Repeat("0", -decpt))
		sb.WriteString(digits)
	case decpt >= len(digits):
		sb.WriteString(digits)
		sb.WriteString(strings.Repeat("0", decpt-len(digits)))
		sb.WriteString(".0")
	default:
		sb.WriteString(digits[:decpt])
		sb.WriteByte('.')
		sb.WriteString(digits[decpt:])
	}
	return nil
}

// writeString escapes like a non-ASCII-preserving encoder: quotes, backslashes
// and C0 control characters only.
func writeString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '"':
			sb.WriteString(`\"`)
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r == '\b':
			sb.WriteString(`\b`)
		case r == '\f':
			sb.WriteString(`\f`)
		case r < 0x20:
			fmt.Fprintf(sb, `\u%04x`, r)
		default:
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	sb.WriteByte('"')
}
