package query

import (
	"encoding/json"
	"fmt"
)

// Key identifies a cached query: a resource kind plus its serialized
// filter parameters.
type Key struct {
	Kind   string
	Params string
}

// NewKey serializes params deterministically. Structs keep field order and
// maps are encoded with sorted keys, so equal filters give equal keys.
func NewKey(kind string, params any) Key {
	if params == nil {
		return Key{Kind: kind}
	}
	b, err := json.Marshal(params)
	if err != nil {
		return Key{Kind: kind, Params: fmt.Sprintf("%#v", params)}
	}
	return Key{Kind: kind, Params: string(b)}
}

func (k Key) String() string {
	if k.Params == "" {
		return k.Kind
	}
	return k.Kind + "|" + k.Params
}
