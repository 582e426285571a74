package handler

import "encoding/json"

// jsonCodec carries plain Go structs over connect's JSON content type. The filing RPCs have
// no protobuf schema, so connect's default protojson codec cannot serve them.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}
