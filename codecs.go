package pagecache

import (
	"fmt"
	"strings"

	c "github.com/unkn0wn-root/pagecache/codec"
)

// CodecByName returns the Result codec registered under name:
// "json" (also ""), "cbor" or "msgpack". Matching is case-insensitive.
func CodecByName(name string) (c.Codec[Result], error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return c.JSON[Result]{}, nil
	case "cbor":
		return c.NewCBOR[Result](true)
	case "msgpack":
		return c.Msgpack[Result]{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}
