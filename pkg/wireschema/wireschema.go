// Package wireschema generates a JSON Schema for the wire protocol's
// frame catalog (pkg/wire), served by cmd/server's /schema endpoint so a
// client can validate or codegen against the exact shape this server
// emits, without hand-maintaining a second copy of the catalog.
package wireschema

import (
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/chicogong/realtime-duplex/pkg/wire"
)

var (
	once   sync.Once
	schema *jsonschema.Schema
)

// FrameSchema reflects wire.Frame into a JSON Schema document, computed
// once and cached since the shape never changes at runtime.
func FrameSchema() *jsonschema.Schema {
	once.Do(func() {
		reflector := jsonschema.Reflector{DoNotReference: true}
		schema = reflector.Reflect(&wire.Frame{})
	})
	return schema
}

// InboundAudioFrameSchema reflects wire.InboundAudioFrame, documenting the
// decoded shape of the binary frame (the wire layout itself is fixed
// bytes, not JSON, but this still gives client authors the field/flag
// semantics in one machine-readable place).
func InboundAudioFrameSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	return reflector.Reflect(&wire.InboundAudioFrame{})
}

// ClientMessageSchema reflects wire.ClientMessage, the command envelope.
func ClientMessageSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	return reflector.Reflect(&wire.ClientMessage{})
}
