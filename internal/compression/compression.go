// Package compression decompresses message payloads read off the wire.
// Only the NONE codec is implemented directly; ZLIB/LZ4/ZSTD are modeled
// as an injected Provider so the wire codec owns the actual algorithms --
// core/sub only ever consumes RawMessage-shaped payloads already stripped
// of framing, never the compression libraries themselves.
package compression

import (
	"fmt"

	"github.com/relaybroker/broker-client-go/pkg/api"
)

// Provider decompresses a payload encoded with codec, given the
// uncompressed size advertised in the message's metadata.
type Provider interface {
	Decompress(codec api.CompressionType, compressed []byte, uncompressedSize int) ([]byte, error)
}

// NoopProvider only understands CompressionType_NONE. It's the default
// for deployments that don't need ZLIB/LZ4/ZSTD support, and the one
// codec this module implements inline.
type NoopProvider struct{}

func (NoopProvider) Decompress(codec api.CompressionType, compressed []byte, uncompressedSize int) ([]byte, error) {
	if codec != api.CompressionType_NONE {
		return nil, fmt.Errorf("compression: codec %v not supported by NoopProvider", codec)
	}
	return compressed, nil
}
