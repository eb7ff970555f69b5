package ads

import "encoding/json"

type Status int

const (
	StatusUnknown Status = -1
	StatusOK      Status = 0
	StatusWarning Status = 1
	StatusFailed  Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// ColorHex is the dashboard swatch for a status.
func (s Status) ColorHex() string {
	switch s {
	case StatusOK:
		return "#00FF00"
	case StatusWarning:
		return "#FFFF00"
	case StatusFailed:
		return "#FF0000"
	default:
		return "#bcbcbc"
	}
}

// Worse returns whichever of s and other is less healthy.
func (s Status) Worse(other Status) Status {
	rank := func(v Status) int {
		switch v {
		case StatusFailed:
			return 3
		case StatusWarning:
			return 2
		case StatusOK:
			return 1
		default:
			return 0
		}
	}
	if rank(other) > rank(s) {
		return other
	}
	return s
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
