package connection

import (
	"encoding/json"
	"strings"
	"testing"
)

// The client protocol double-encodes data: the envelope's data field is
// a JSON string that itself contains JSON.
func TestEnvelopeDoubleEncoding(t *testing.T) {
	e, err := NewEnvelope(TypeTurn, RespTurn{CurrentPlayer: "p1-uuid"})
	if err != nil {
		t.Fatal(err)
	}

	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"data":"{\"currentPlayer\":\"p1-uuid\"}"`) {
		t.Fatalf("data must be a JSON string containing JSON, got %s", raw)
	}

	var decoded Envelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	var turn RespTurn
	if err := decoded.DecodePayload(&turn); err != nil {
		t.Fatal(err)
	}
	if turn.CurrentPlayer != "p1-uuid" {
		t.Fatalf("round trip lost the payload: %+v", turn)
	}
}
