package groupsig

import (
	"encoding/base64"
	"sort"
	"strings"
	"sync"
)

// Registration describes a scheme to the registry. Scheme packages call
// Register from init; construction must perform no cryptography.
type Registration struct {
	ID         SchemeID
	New        func() (Scheme, error)
	Containers map[Kind]func() Container
}

var (
	regMu    sync.RWMutex
	byName   = map[string]*Registration{}
	byID     = map[SchemeID]*Registration{}
	regNames []string
)

// Register makes a scheme available under name (case-insensitive). It
// panics on duplicate names or IDs, which indicate a programming error.
func Register(name string, reg Registration) {
	regMu.Lock()
	defer regMu.Unlock()
	key := strings.ToLower(name)
	if _, ok := byName[key]; ok {
		panic("groupsig: scheme " + key + " registered twice")
	}
	if _, ok := byID[reg.ID]; ok {
		panic("groupsig: scheme id of " + key + " registered twice")
	}
	r := reg
	byName[key] = &r
	byID[reg.ID] = &r
	regNames = append(regNames, key)
	sort.Strings(regNames)
}

func lookup(name string) (*Registration, error) {
	regMu.RLock()
	defer regMu.RUnlock()
	reg, ok := byName[strings.ToLower(name)]
	if !ok {
		return nil, &ConfigurationError{Name: name}
	}
	return reg, nil
}

// Group returns a fresh scheme instance for name.
func Group(name string) (Scheme, error) {
	reg, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return reg.New()
}

// Key returns an empty key container of the given kind for name.
func Key(name string, kind Kind) (Container, error) {
	switch kind {
	case KindGroupKey, KindManagerKey, KindMemberKey, KindBlindKey:
	default:
		return nil, &ConfigurationError{Name: name, Kind: kind}
	}
	return NewContainer(name, kind)
}

// Signature returns an empty signature container for name.
func Signature(name string) (Container, error) {
	return NewContainer(name, KindSignature)
}

// NewContainer returns an empty container of any kind for name.
func NewContainer(name string, kind Kind) (Container, error) {
	reg, err := lookup(name)
	if err != nil {
		return nil, err
	}
	ctor, ok := reg.Containers[kind]
	if !ok {
		return nil, &ConfigurationError{Name: name, Kind: kind}
	}
	return ctor(), nil
}

// FromB64 decodes a base64 container encoding, resolving the concrete
// container type from the two-byte header.
func FromB64(s string) (Container, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &DecodingError{Field: "base64", Err: err}
	}
	if len(raw) < 2 {
		return nil, &DecodingError{Field: "header"}
	}
	id, kind := SchemeID(raw[0]), Kind(raw[1])
	regMu.RLock()
	reg, ok := byID[id]
	regMu.RUnlock()
	if !ok {
		return nil, &ConfigurationError{Name: id.String()}
	}
	ctor, ok := reg.Containers[kind]
	if !ok {
		return nil, &ConfigurationError{Name: id.String(), Kind: kind}
	}
	c := ctor()
	if err := c.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return c, nil
}

// Schemes returns the sorted names of all registered schemes.
func Schemes() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, len(regNames))
	copy(out, regNames)
	return out
}
