package models

import (
	"encoding/base64"
	"encoding/json"
	"unicode/utf8"
)

// MarshalJSON renders Raw as text when it is valid UTF-8 and as base64 otherwise, so operators
// can read the payload that was rejected.
func (d DeadLetter) MarshalJSON() ([]byte, error) {
	type plain DeadLetter
	out := struct {
		plain
		Raw         string `json:"raw"`
		RawEncoding string `json:"rawEncoding"`
	}{plain: plain(d)}

	if utf8.Valid(d.Raw) {
		out.Raw = string(d.Raw)
		out.RawEncoding = "text"
	} else {
		out.Raw = base64.StdEncoding.EncodeToString(d.Raw)
		out.RawEncoding = "base64"
	}
	return json.Marshal(out)
}

func (d *DeadLetter) UnmarshalJSON(data []byte) error {
	type plain DeadLetter
	in := struct {
		*plain
		Raw         string `json:"raw"`
		RawEncoding string `json:"rawEncoding"`
	}{plain: (*plain)(d)}

	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.RawEncoding == "base64" {
		raw, err := base64.StdEncoding.DecodeString(in.Raw)
		if err != nil {
			return err
		}
		d.Raw = raw
		return nil
	}
	d.Raw = []byte(in.Raw)
	return nil
}
