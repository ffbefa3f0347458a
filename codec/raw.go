package codec

// String converts between Go strings and their UTF-8 bytes without validation.
// The version marker is stored with it.
type String struct{}

var _ Codec[string] = String{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
