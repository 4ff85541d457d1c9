package api

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// number accepts a JSON number or a numeric string. Forms post both. Decoding
// never fails; an unusable value is reported by ok.
type number struct {
	value float64
	set   bool
	valid bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = number{}
		return nil
	}
	n.set = true

	s := string(b)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(s, 64)
	n.valid = err == nil && !math.IsNaN(v) && !math.IsInf(v, 0)
	n.value = v
	return nil
}

func (n number) float() (float64, bool) {
	return n.value, n.set && n.valid
}

// integer reports the value as an int when it has no fractional part.
func (n number) integer() (int, bool) {
	if !n.set || !n.valid || n.value != math.Trunc(n.value) || math.Abs(n.value) > math.MaxInt32 {
		return 0, false
	}
	return int(n.value), true
}

// flag accepts true/false or their string forms.
type flag bool

func (f *flag) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := strconv.ParseBool(s)
	*f = flag(err == nil && v)
	return nil
}
