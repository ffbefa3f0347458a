// Package codec converts cached values to and from the bytes a provider stores.
// Codecs must be safe for concurrent use and must round-trip: Decode(Encode(v))
// equals v for every value the codec accepts.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
