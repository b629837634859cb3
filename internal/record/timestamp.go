package record

import (
	"fmt"
	"time"
)

// Timestamp is a stored point in time as handed over by persistence. Depending on
// the driver path it holds either a native time or an already formatted string.
type Timestamp struct {
	at   time.Time
	text string
	kind uint8
}

const (
	timestampMissing uint8 = iota
	timestampTime
	timestampText
)

// At wraps a native time value.
func At(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{at: t, kind: timestampTime}
}

// Literal wraps a timestamp that is already serialized.
func Literal(s string) Timestamp {
	if s == "" {
		return Timestamp{}
	}
	return Timestamp{text: s, kind: timestampText}
}

// IsZero reports whether no value was stored.
func (t Timestamp) IsZero() bool {
	return t.kind == timestampMissing
}

// Time returns the native value when the timestamp holds one.
func (t Timestamp) Time() (time.Time, bool) {
	return t.at, t.kind == timestampTime
}

// Literal returns the serialized value when the timestamp holds one.
func (t Timestamp) Literal() (string, bool) {
	return t.text, t.kind == timestampText
}

// Scan implements sql.Scanner so pgx can decode timestamptz, timestamp and text
// columns directly into a Timestamp.
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Timestamp{}
	case time.Time:
		*t = At(v)
	case string:
		*t = Literal(v)
	case []byte:
		*t = Literal(string(v))
	default:
		return fmt.Errorf("record: cannot scan %T into Timestamp", src)
	}
	return nil
}
