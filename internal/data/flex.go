package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexString decodes a JSON string or number into its textual form.
// Providers disagree on whether large integers are quoted.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = FlexString(n.String())
	return nil
}

// FlexInt decodes a JSON number or a numeric string into an int64
type FlexInt int64

func (i *FlexInt) UnmarshalJSON(b []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s == "" {
		*i = 0
		return nil
	}

	v, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(s), 64)
		if ferr != nil || f != float64(int64(f)) {
			return fmt.Errorf("invalid integer %q", string(s))
		}
		v = int64(f)
	}
	*i = FlexInt(v)
	return nil
}
