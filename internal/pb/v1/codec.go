package lockv1

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype of LockService messages.
const CodecName = "json"

// codec marshals LockService messages as JSON.
type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}

	return data, nil
}

func (codec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %T: %w", v, err)
	}

	return nil
}

func (codec) Name() string {
	return CodecName
}

func init() { //nolint:gochecknoinits // Codecs must be registered before any server or client starts.
	encoding.RegisterCodec(codec{})
}
