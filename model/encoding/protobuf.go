// Package encoding holds the minimal protobuf wire encoding needed to talk to Cosmos SDK
// chains: building transactions and ABCI query requests, and reading query responses.
//
// Fields are written in the order they are added, so callers add them in field number order
// to produce the canonical encoding that signatures are computed over.
package encoding

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message builds a protobuf encoded message. Scalar fields holding their zero value are
// omitted, as proto3 does.
type Message struct {
	buf []byte
}

func NewMessage() *Message {
	return &Message{}
}

// String appends a string field.
func (m *Message) String(num protowire.Number, s string) *Message {
	if s == "" {
		return m
	}
	m.buf = protowire.AppendTag(m.buf, num, protowire.BytesType)
	m.buf = protowire.AppendString(m.buf, s)
	return m
}

// Bytes appends a bytes field.
func (m *Message) Bytes(num protowire.Number, b []byte) *Message {
	if len(b) == 0 {
		return m
	}
	m.buf = protowire.AppendTag(m.buf, num, protowire.BytesType)
	m.buf = protowire.AppendBytes(m.buf, b)
	return m
}

// Uint64 appends a varint field.
func (m *Message) Uint64(num protowire.Number, v uint64) *Message {
	if v == 0 {
		return m
	}
	m.buf = protowire.AppendTag(m.buf, num, protowire.VarintType)
	m.buf = protowire.AppendVarint(m.buf, v)
	return m
}

// Int64 appends a varint encoded int64 field.
func (m *Message) Int64(num protowire.Number, v int64) *Message {
	return m.Uint64(num, uint64(v))
}

// Embedded appends a nested message. Unlike scalars, a set but empty message is written.
func (m *Message) Embedded(num protowire.Number, sub *Message) *Message {
	m.buf = protowire.AppendTag(m.buf, num, protowire.BytesType)
	m.buf = protowire.AppendBytes(m.buf, sub.Encode())
	return m
}

// Any appends a google.protobuf.Any wrapping value.
func (m *Message) Any(num protowire.Number, typeURL string, value *Message) *Message {
	return m.Embedded(num, NewMessage().String(1, typeURL).Bytes(2, value.Encode()))
}

// Encode returns the encoded message.
func (m *Message) Encode() []byte {
	if m.buf == nil {
		return []byte{}
	}
	return m.buf
}

// Fields is a decoded protobuf message: the raw values of every field by field number,
// in the order they appeared.
type Fields map[protowire.Number][]Field

// Field is a single decoded value. Varint fields populate Varint, length delimited fields
// populate Bytes.
type Field struct {
	Type   protowire.Type
	Varint uint64
	Bytes  []byte
}

// Decode splits a protobuf message into its fields. Fixed width values are kept as varints.
func Decode(b []byte) (Fields, error) {
	fields := make(Fields)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("invalid field tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		var f Field
		f.Type = typ
		switch typ {
		case protowire.VarintType:
			f.Varint, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.Varint = uint64(v)
		case protowire.Fixed64Type:
			f.Varint, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.Bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid value of field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
		fields[num] = append(fields[num], f)
	}
	return fields, nil
}

func (f Fields) last(num protowire.Number) (Field, bool) {
	values := f[num]
	if len(values) == 0 {
		return Field{}, false
	}
	return values[len(values)-1], true
}

// Uint64 returns the varint field num, or zero if absent.
func (f Fields) Uint64(num protowire.Number) uint64 {
	v, _ := f.last(num)
	return v.Varint
}

// Bytes returns the length delimited field num, or nil if absent.
func (f Fields) Bytes(num protowire.Number) []byte {
	v, _ := f.last(num)
	return v.Bytes
}

// String returns the string field num, or the empty string if absent.
func (f Fields) String(num protowire.Number) string {
	return string(f.Bytes(num))
}

// Has returns true if field num is present.
func (f Fields) Has(num protowire.Number) bool {
	_, ok := f.last(num)
	return ok
}

// Embedded decodes the nested message field num. An absent field decodes as an empty message.
func (f Fields) Embedded(num protowire.Number) (Fields, error) {
	return Decode(f.Bytes(num))
}

// Any decodes the google.protobuf.Any field num into its type URL and value.
func (f Fields) Any(num protowire.Number) (string, []byte, error) {
	wrapped, err := f.Embedded(num)
	if err != nil {
		return "", nil, err
	}
	return wrapped.String(1), wrapped.Bytes(2), nil
}
