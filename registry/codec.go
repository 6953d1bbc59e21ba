package registry

// Encoder is the minimal write side of a component operation: anything
// that can encode a Go value into the current wire format. *json.Encoder
// and *yaml.Encoder both satisfy it without adapters.
type Encoder interface {
	Encode(v any) error
}

// Decoder is the minimal read side of a component operation. *json.Decoder
// and a yaml.Node-backed decoder both satisfy it.
type Decoder interface {
	Decode(v any) error
}
