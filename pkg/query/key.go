package query

import (
	"encoding/json"
	"fmt"
)

// Key identifies a cache entry. Two keys are equal only when both the
// operation and the encoded parameters match, so operations never share
// entries even with identical parameters.
type Key struct {
	Operation string
	Params    string
}

// NewKey encodes params as JSON. Struct fields keep their declaration order
// and map keys are sorted, so equal parameters always produce equal keys.
func NewKey(operation string, params any) (Key, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return Key{}, fmt.Errorf("query: encode params of %s: %w", operation, err)
	}
	return Key{Operation: operation, Params: string(b)}, nil
}

func (k Key) String() string {
	return k.Operation + " " + k.Params
}
