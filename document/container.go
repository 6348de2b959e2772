package document

import (
	"encoding/base64"
	"encoding/binary"
	"log"
	"strings"

	"github.com/pkg/errors"
)

const (
	CONTAINER_MAGIC      = 0x46546C67 // "glTF"
	CONTAINER_CHUNK_JSON = 0x4E4F534A // "JSON"
	CONTAINER_CHUNK_BIN  = 0x004E4942 // "BIN\0"

	// buffer name reserved for a container's embedded body
	EMBEDDED_BUFFER = "binary_glTF"
)

func IsContainer(data []byte) bool {
	return len(data) >= 12 && binary.LittleEndian.Uint32(data) == CONTAINER_MAGIC
}

// SplitContainer splits a binary single-file document into its JSON
// descriptor chunk and embedded binary body. The body is absent in
// json-only containers.
func SplitContainer(data []byte) (jsonChunk []byte, body []byte, err error) {
	if len(data) < 12 {
		return nil, nil, errors.New("Container header truncated")
	}
	if binary.LittleEndian.Uint32(data) != CONTAINER_MAGIC {
		return nil, nil, errors.New("Wrong container magic")
	}
	if version := binary.LittleEndian.Uint32(data[4:]); version != 1 && version != 2 {
		log.Printf("Unexpected container version %v", version)
	}
	total := binary.LittleEndian.Uint32(data[8:])
	if total > uint32(len(data)) {
		return nil, nil, errors.Errorf("Container declares %v bytes, have only %v", total, len(data))
	}

	for off := uint32(12); off+8 <= total; {
		chunkLen := binary.LittleEndian.Uint32(data[off:])
		chunkType := binary.LittleEndian.Uint32(data[off+4:])
		off += 8
		if off+chunkLen > total {
			return nil, nil, errors.Errorf("Chunk 0x%.8x exceeds container bounds", chunkType)
		}
		chunk := data[off : off+chunkLen]
		off += chunkLen

		switch chunkType {
		case CONTAINER_CHUNK_JSON:
			jsonChunk = chunk
		case CONTAINER_CHUNK_BIN:
			body = chunk
		default:
			log.Printf("Skipping unknown container chunk 0x%.8x (%v bytes)", chunkType, chunkLen)
		}
	}

	if jsonChunk == nil {
		return nil, nil, errors.New("Container has no json chunk")
	}
	return jsonChunk, body, nil
}

// DecodeDataURI decodes an inline base64 data uri. The bool reports
// whether the uri is a data uri at all, so callers can fall back to a
// transport fetch when it is not.
func DecodeDataURI(uri string) ([]byte, bool, error) {
	const prefix = "data:"
	if !strings.HasPrefix(uri, prefix) {
		return nil, false, nil
	}
	idx := strings.Index(uri, ",")
	if idx < 0 {
		return nil, true, errors.New("Malformed data uri")
	}
	meta, payload := uri[len(prefix):idx], uri[idx+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, true, errors.Errorf("Unsupported data uri encoding %q", meta)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, true, errors.Wrapf(err, "Failed to decode base64 payload")
	}
	return data, true, nil
}
