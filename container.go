package groupsig

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
)

// Container is a serializable piece of scheme state: keys and signatures.
// Encodings are canonical, so byte equality is value equality.
type Container interface {
	Scheme() string
	Kind() Kind
	Fields() []string
	MarshalBinary() ([]byte, error)
	UnmarshalBinary(data []byte) error
}

// ToB64 returns the base64 encoding of the container's canonical bytes.
func ToB64(c Container) (string, error) {
	raw, err := c.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("marshaling %s %s: %w", c.Scheme(), c.Kind(), err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// SetB64 decodes a base64 container encoding into c. On any error c is left
// untouched.
func SetB64(c Container, s string) error {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return &DecodingError{Field: "base64", Err: err}
	}
	return c.UnmarshalBinary(raw)
}

// Equal reports whether two containers have identical canonical encodings.
func Equal(a, b Container) bool {
	ra, err := a.MarshalBinary()
	if err != nil {
		return false
	}
	rb, err := b.MarshalBinary()
	if err != nil {
		return false
	}
	return bytes.Equal(ra, rb)
}

// Info returns a short human-readable description of the container: its
// scheme, kind and field names.
func Info(c Container) string {
	return fmt.Sprintf("%s %s: %s", c.Scheme(), c.Kind(), strings.Join(c.Fields(), ", "))
}
