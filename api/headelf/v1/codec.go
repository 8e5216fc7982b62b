package headelfv1

import (
	"encoding/json"
	"fmt"
)

// Codec marshals service messages as JSON. It satisfies
// google.golang.org/grpc/encoding.Codec.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec: %w", err)
	}
	return data, nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec: %w", err)
	}
	return nil
}

func (Codec) Name() string { return "json" }
