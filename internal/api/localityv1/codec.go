package localityv1

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

var _ connect.Codec = JSONCodec{}

// JSONCodec marshals plain Go structs with encoding/json. It replaces the
// protobuf JSON codec registered under the same name.
type JSONCodec struct{}

func (JSONCodec) Name() string {
	return "json"
}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	return data, nil
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", v, err)
	}
	return nil
}

// WithJSON returns the option that installs JSONCodec on a client or handler.
func WithJSON() connect.Option {
	return connect.WithCodec(JSONCodec{})
}
