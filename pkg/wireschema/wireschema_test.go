package wireschema

import "testing"

func TestFrameSchema_IsCachedAndNonNil(t *testing.T) {
	first := FrameSchema()
	if first == nil {
		t.Fatal("expected a non-nil schema")
	}
	second := FrameSchema()
	if first != second {
		t.Error("expected FrameSchema to return the cached instance on repeat calls")
	}
}

func TestClientMessageSchema_ReflectsCommandField(t *testing.T) {
	schema := ClientMessageSchema()
	if schema.Properties == nil {
		t.Fatal("expected reflected properties")
	}
	if _, ok := schema.Properties.Get("command"); !ok {
		t.Error("expected a command property in the reflected schema")
	}
}

func TestInboundAudioFrameSchema_ReflectsFields(t *testing.T) {
	schema := InboundAudioFrameSchema()
	if schema.Properties == nil {
		t.Fatal("expected reflected properties")
	}
	if _, ok := schema.Properties.Get("PCM"); !ok {
		t.Error("expected a PCM property in the reflected schema")
	}
}
