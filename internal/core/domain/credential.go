package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// FormField is a single form value the uploader must echo back unmodified
type FormField struct {
	Name  string
	Value string
}

// FormFields keeps form fields in the order the issuer produced them
type FormFields []FormField

// FormFieldsFromMap builds FormFields from a map, sorted by name
func FormFieldsFromMap(m map[string]string) FormFields {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make(FormFields, 0, len(names))
	for _, name := range names {
		fields = append(fields, FormField{Name: name, Value: m[name]})
	}
	return fields
}

// Get returns the value of the first field with that name
func (f FormFields) Get(name string) (string, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

// MarshalJSON encodes fields as a JSON object, keeping their order
func (f FormFields) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of string values, keeping document order
func (f *FormFields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("form fields must be a JSON object")
	}

	fields := FormFields{}
	for dec.More() {
		nameTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := nameTok.(string)
		if !ok {
			return fmt.Errorf("form field name must be a string")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("form field %q: %w", name, err)
		}
		fields = append(fields, FormField{Name: name, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = fields
	return nil
}

// CredentialConstraints are enforced by the storage backend at upload time
type CredentialConstraints struct {
	MaxBytes         int64
	AllowedKeyPrefix string
}

// UploadCredential is a scoped, single-use authorization for one direct upload.
// It is never persisted.
type UploadCredential struct {
	EndpointURL string
	Fields      FormFields
	Key         string
	ExpiresAt   time.Time
	Constraints CredentialConstraints
}

// Expired reports whether the credential lifetime is over at now
func (c UploadCredential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
