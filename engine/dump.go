package engine

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Binary chunk format: a 4-byte signature, a version byte, then the
// canonical-CBOR encoding of the Chunk.
var dumpSignature = []byte("\x1bCvl")

const dumpVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("engine: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Dump serializes a chunk to the binary format accepted by Load and
// Undump.
func Dump(c *Chunk) ([]byte, error) {
	body, err := cborEncMode.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("engine: dump chunk: %w", err)
	}
	out := make([]byte, 0, len(dumpSignature)+1+len(body))
	out = append(out, dumpSignature...)
	out = append(out, dumpVersion)
	return append(out, body...), nil
}

// Undump deserializes a binary chunk, rejecting unknown signatures and
// versions.
func Undump(data []byte) (*Chunk, error) {
	if !isDump(data) {
		return nil, fmt.Errorf("engine: not a binary chunk")
	}
	if data[len(dumpSignature)] != dumpVersion {
		return nil, fmt.Errorf("engine: unsupported chunk version %d", data[len(dumpSignature)])
	}
	var c Chunk
	if err := cbor.Unmarshal(data[len(dumpSignature)+1:], &c); err != nil {
		return nil, fmt.Errorf("engine: undump chunk: %w", err)
	}
	return &c, nil
}

func isDump(data []byte) bool {
	return len(data) > len(dumpSignature)+1 && bytes.HasPrefix(data, dumpSignature)
}

// Assemble compiles textual chunk source without loading it, for use by
// ahead-of-time tooling that dumps chunks to disk.
func Assemble(src, name string) (*Chunk, error) {
	return assemble(src, name)
}
