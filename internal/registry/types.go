package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// HeaderUserID carries the caller identity on every request.
const HeaderUserID = "X-User-ID"

// Caller identifies who an outbound request is made on behalf of.
type Caller struct {
	UserID string
}

// ClientRecord is a client as persisted by the record-keeping API.
type ClientRecord struct {
	ID        RecordID  `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt Timestamp `json:"created_at"`
}

// Draft is an unsaved client entered through the form.
type Draft struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Missing returns the JSON names of required fields that are blank.
func (d Draft) Missing() []string {
	var out []string
	if strings.TrimSpace(d.FullName) == "" {
		out = append(out, "full_name")
	}
	if strings.TrimSpace(d.Email) == "" {
		out = append(out, "email")
	}
	if strings.TrimSpace(d.Phone) == "" {
		out = append(out, "phone")
	}
	return out
}

// IsZero reports whether every field is empty.
func (d Draft) IsZero() bool {
	return d == Draft{}
}

// RecordID is the opaque server-assigned identifier. Servers that use
// numeric keys are accepted and kept in their decimal text form.
type RecordID string

func (id *RecordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// Timestamp accepts the ISO-8601 shapes commonly produced by API backends,
// including offsets-free forms, which are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses s using the accepted ISO-8601 layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
