package codec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCommand_RoundTripBothFormats(t *testing.T) {
	in := Command{
		Op:    OpClaim,
		ReqID: "r1",
		Claim: map[string]string{"AS": "p1", "2S": "p3"},
	}
	for _, f := range []Format{FormatBinary, FormatJSON} {
		raw, err := EncodeCommand(in, f)
		if err != nil {
			t.Fatalf("format %d: encode err: %v", f, err)
		}
		out, err := DecodeCommand(raw, f)
		if err != nil {
			t.Fatalf("format %d: decode err: %v", f, err)
		}
		if diff := cmp.Diff(in, out); diff != "" {
			t.Fatalf("format %d: command mismatch (-want +got):\n%s", f, diff)
		}
	}
}

func TestDecodeCommand_RejectsGarbage(t *testing.T) {
	if _, err := DecodeCommand([]byte("not json"), FormatJSON); err == nil {
		t.Fatalf("expected error for garbage text frame")
	}
	if _, err := DecodeCommand([]byte(`{"card":"AS"}`), FormatJSON); err == nil {
		t.Fatalf("expected error for command without op")
	}
}

func TestEnvelope_PayloadUsesJSONShape(t *testing.T) {
	type turn struct {
		Player string `json:"player"`
		Count  int    `json:"count"`
	}
	env := NewEnvelope("g1", 4, "turn", turn{Player: "p2", Count: 3})
	raw, err := Encode(env, FormatBinary)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	got, err := DecodeEnvelope(raw, FormatBinary)
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if got.GameID != "g1" || got.Seq != 4 || got.Kind != "turn" || got.TsMs != env.TsMs {
		t.Fatalf("unexpected header: %+v", got)
	}
	payload, ok := got.Payload.(map[string]any)
	if !ok {
		t.Fatalf("payload type = %T, want map", got.Payload)
	}
	if payload["player"] != "p2" || payload["count"] != float64(3) {
		t.Fatalf("unexpected payload: %v", payload)
	}
}
