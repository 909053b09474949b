package groupsig

import "fmt"

// ConfigurationError reports a registry lookup that cannot be satisfied,
// either because the scheme name is unknown or because the scheme does not
// define a container of the requested kind.
type ConfigurationError struct {
	Name string
	Kind Kind
}

func (e *ConfigurationError) Error() string {
	if e.Kind == 0 {
		return fmt.Sprintf("unknown scheme %q", e.Name)
	}
	return fmt.Sprintf("scheme %q has no %s container", e.Name, e.Kind)
}

// DecodingError reports a malformed container or proof encoding. Field names
// the first offending field.
type DecodingError struct {
	Field string
	Err   error
}

func (e *DecodingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decoding field %q", e.Field)
	}
	return fmt.Sprintf("decoding field %q: %s", e.Field, e.Err)
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}

// IncompleteKeyError reports an attempt to sign with a member key whose join
// protocol has not finished.
type IncompleteKeyError struct {
	Scheme string
}

func (e *IncompleteKeyError) Error() string {
	return fmt.Sprintf("%s: member key join not complete", e.Scheme)
}

// ProtocolStateError reports a join message applied out of sequence.
type ProtocolStateError struct {
	Scheme string
	Phase  int
}

func (e *ProtocolStateError) Error() string {
	return fmt.Sprintf("%s: join phase %d not expected", e.Scheme, e.Phase)
}

// SchemeMismatchError reports a container used with a scheme other than the
// one it was produced by.
type SchemeMismatchError struct {
	Want string
	Got  string
}

func (e *SchemeMismatchError) Error() string {
	return fmt.Sprintf("scheme mismatch: want %s, got %s", e.Want, e.Got)
}
