// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"encoding/json"
)

// JSONCodec is a JSON-based codec
type JSONCodec struct{}

func (JSONCodec) Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) Name() string { return "json" }

// defaultCodec is used when no codec is specified
var defaultCodec Codec = JSONCodec{}

// BinaryCodec passes bytes through unchanged and falls back to JSON for
// anything else.
type BinaryCodec struct{}

func (BinaryCodec) Encode(v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case *[]byte:
		return *b, nil
	}
	return json.Marshal(v)
}

func (BinaryCodec) Decode(data []byte, v interface{}) error {
	if b, ok := v.(*[]byte); ok {
		*b = data
		return nil
	}
	return json.Unmarshal(data, v)
}

func (BinaryCodec) Name() string { return "binary" }

// Binary is a codec that passes bytes through unchanged
var Binary Codec = BinaryCodec{}

func codecOrDefault(c Codec) Codec {
	if c == nil {
		return defaultCodec
	}
	return c
}

// encodeArgs encodes args, leaving a nil payload for nil args
func encodeArgs(c Codec, args interface{}) ([]byte, error) {
	if args == nil {
		return nil, nil
	}
	return codecOrDefault(c).Encode(args)
}

// decodeReply decodes data into reply unless there is nothing to decode
func decodeReply(c Codec, data []byte, reply interface{}) error {
	if reply == nil || len(data) == 0 {
		return nil
	}
	return codecOrDefault(c).Decode(data, reply)
}
