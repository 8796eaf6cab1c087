package formula

import (
	"encoding/json"
	"testing"
)

func TestKind_TextRoundTrip(t *testing.T) {
	for kind := range kindNames {
		raw, err := json.Marshal(kind)
		if err != nil {
			t.Fatalf("marshal %v: %v", kind, err)
		}
		var decoded Kind
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if decoded != kind {
			t.Fatalf("round trip changed %v into %v", kind, decoded)
		}
	}

	var k Kind
	if err := k.UnmarshalText([]byte("widget")); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
