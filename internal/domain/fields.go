package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FieldValue holds either free text or a list of selections. A value decoded
// from a JSON array is a list even when the array is empty.
type FieldValue struct {
	Text  string
	Items []string
	list  bool
}

func TextValue(s string) FieldValue {
	return FieldValue{Text: s}
}

func ListValue(items ...string) FieldValue {
	if items == nil {
		items = []string{}
	}
	return FieldValue{Items: items, list: true}
}

func (v FieldValue) IsList() bool {
	return v.list || v.Items != nil
}

// IsEmpty treats whitespace-only text and lists without a non-blank entry as empty.
func (v FieldValue) IsEmpty() bool {
	if v.IsList() {
		for _, item := range v.Items {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(v.Text) == ""
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.IsList() {
		items := v.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.Text)
}

func (v *FieldValue) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*v = ListValue(items...)
		return nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		*v = FieldValue{}
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	*v = TextValue(s)
	return nil
}

func (v FieldValue) clone() FieldValue {
	if !v.IsList() {
		return v
	}
	items := make([]string, len(v.Items))
	copy(items, v.Items)
	return FieldValue{Items: items, list: true}
}

// Fields maps field names to values collected by the wizard.
type Fields map[string]FieldValue

func (f Fields) Text(name string) string {
	return strings.TrimSpace(f[name].Text)
}

// Items returns the non-blank entries of a list field, trimmed.
func (f Fields) Items(name string) []string {
	var out []string
	for _, item := range f[name].Items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v.clone()
	}
	return out
}
