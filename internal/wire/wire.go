// Package wire frames cached payloads before they reach a provider.
//
// Entry layout: magic(4) "PGCE" followed by protobuf-wire fields
//
//	1: format version (varint)
//	2: stored-at, unix nanoseconds (varint)
//	3: payload (bytes)
//
// Unknown fields are skipped so newer writers stay readable.
package wire

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	version uint64 = 1

	fieldVersion  protowire.Number = 1
	fieldStoredAt protowire.Number = 2
	fieldPayload  protowire.Number = 3
)

var (
	ErrCorrupt = errors.New("pagecache: corrupt entry")
	magic4     = [...]byte{'P', 'G', 'C', 'E'}
)

// Entry is a decoded envelope.
type Entry struct {
	StoredAt time.Time
	Payload  []byte
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames payload with the current format version and storedAt.
func Encode(payload []byte, storedAt time.Time) []byte {
	b := make([]byte, 0, 4+2+10+2+10+len(payload)+protowire.SizeVarint(uint64(len(payload))))
	b = append(b, magic4[:]...)
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, version)
	b = protowire.AppendTag(b, fieldStoredAt, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(storedAt.UnixNano()))
	b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
	b = protowire.AppendBytes(b, payload)
	return b
}

// Decode validates the envelope and returns its fields. The returned payload
// aliases b.
func Decode(b []byte) (Entry, error) {
	if !hasMagic(b) {
		return Entry{}, ErrCorrupt
	}
	b = b[4:]

	var (
		e          Entry
		ver        uint64
		sawPayload bool
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Entry{}, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Entry{}, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
			}
			ver = v
			b = b[n:]
		case num == fieldStoredAt && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Entry{}, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
			}
			e.StoredAt = time.Unix(0, int64(v))
			b = b[n:]
		case num == fieldPayload && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Entry{}, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
			}
			e.Payload = v
			sawPayload = true
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Entry{}, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if ver != version || !sawPayload {
		return Entry{}, ErrCorrupt
	}
	return e, nil
}
