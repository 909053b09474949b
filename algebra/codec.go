package algebra

import (
	"bytes"
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
)

// maxFieldLen bounds length-prefixed fields and scalar vectors so corrupt
// inputs cannot trigger huge allocations.
const maxFieldLen = 1 << 16

// Writer builds the canonical byte encoding of a container: a two-byte
// header (scheme id, container kind) followed by fixed-order field
// encodings.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter(id groupsig.SchemeID, kind groupsig.Kind) *Writer {
	var w Writer
	w.buf.WriteByte(byte(id))
	w.buf.WriteByte(byte(kind))
	return &w
}

// NewRawWriter builds a headerless encoding, used for protocol messages and
// proofs embedded in other encodings.
func NewRawWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Element(e Element) {
	w.buf.Write(e.Bytes())
}

func (w *Writer) Fr(e fr.Element) {
	b := e.Bytes()
	w.buf.Write(b[:])
}

func (w *Writer) Frs(es []fr.Element) {
	w.Uint32(uint32(len(es)))
	for i := range es {
		w.Fr(es[i])
	}
}

func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

func (w *Writer) Uint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) Int64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

func (w *Writer) VarBytes(b []byte) {
	w.Uint32(uint32(len(b)))
	w.buf.Write(b)
}

// Raw appends bytes verbatim, e.g. an embedded proof encoding that ends the
// payload and carries its own framing.
func (w *Writer) Raw(b []byte) {
	w.buf.Write(b)
}

func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Reader decodes the canonical encoding field by field, reporting the first
// offending field by name.
type Reader struct {
	data []byte
	off  int
}

// NewReader checks the two-byte header against the expected scheme and kind
// before exposing the payload.
func NewReader(data []byte, id groupsig.SchemeID, kind groupsig.Kind) (*Reader, error) {
	if len(data) < 2 {
		return nil, &groupsig.DecodingError{Field: "header"}
	}
	if data[0] != byte(id) {
		return nil, &groupsig.SchemeMismatchError{
			Want: id.String(),
			Got:  groupsig.SchemeID(data[0]).String(),
		}
	}
	if data[1] != byte(kind) {
		return nil, &groupsig.DecodingError{Field: "kind"}
	}
	return &Reader{data: data, off: 2}, nil
}

func NewRawReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) take(field string, n int) ([]byte, error) {
	if n < 0 || len(r.data)-r.off < n {
		return nil, &groupsig.DecodingError{Field: field}
	}
	out := r.data[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *Reader) Element(field string, e Element) error {
	var size int
	switch e.(type) {
	case *G1:
		size = G1Bytes
	case *G2:
		size = G2Bytes
	case *GT:
		size = GTBytes
	default:
		return &groupsig.DecodingError{Field: field}
	}
	raw, err := r.take(field, size)
	if err != nil {
		return err
	}
	if err := e.SetBytes(raw); err != nil {
		return &groupsig.DecodingError{Field: field, Err: err}
	}
	return nil
}

func (r *Reader) Fr(field string, e *fr.Element) error {
	raw, err := r.take(field, FrBytes)
	if err != nil {
		return err
	}
	if err := e.SetBytesCanonical(raw); err != nil {
		return &groupsig.DecodingError{Field: field, Err: err}
	}
	return nil
}

func (r *Reader) Frs(field string) ([]fr.Element, error) {
	n, err := r.Uint32(field)
	if err != nil {
		return nil, err
	}
	if n > maxFieldLen {
		return nil, &groupsig.DecodingError{Field: field}
	}
	out := make([]fr.Element, n)
	for i := range out {
		if err := r.Fr(field, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Reader) Byte(field string) (byte, error) {
	raw, err := r.take(field, 1)
	if err != nil {
		return 0, err
	}
	return raw[0], nil
}

func (r *Reader) Uint32(field string) (uint32, error) {
	raw, err := r.take(field, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(raw), nil
}

func (r *Reader) Int64(field string) (int64, error) {
	raw, err := r.take(field, 8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(raw)), nil
}

func (r *Reader) VarBytes(field string) ([]byte, error) {
	n, err := r.Uint32(field)
	if err != nil {
		return nil, err
	}
	if n > maxFieldLen {
		return nil, &groupsig.DecodingError{Field: field}
	}
	raw, err := r.take(field, int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, raw)
	return out, nil
}

// Raw consumes exactly n bytes, e.g. a fixed-size digest or PRF output.
func (r *Reader) Raw(field string, n int) ([]byte, error) {
	raw, err := r.take(field, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, raw)
	return out, nil
}

// Rest consumes and returns all remaining bytes.
func (r *Reader) Rest() []byte {
	out := r.data[r.off:]
	r.off = len(r.data)
	return out
}

// Close rejects trailing bytes after the last expected field.
func (r *Reader) Close() error {
	if r.off != len(r.data) {
		return &groupsig.DecodingError{Field: "trailing"}
	}
	return nil
}
