package replay

import (
	"encoding/base64"
	"fmt"

	"literature-lite/internal/codec"
	"literature-lite/internal/notify"
)

// WireTape carries every event as a base64 binary envelope, the same frames
// a live client receives.
type WireTape struct {
	TapeVersion int         `json:"tapeVersion"`
	GameID      string      `json:"gameId"`
	Events      []WireEvent `json:"events"`
}

type WireEvent struct {
	Type        string `json:"type"`
	Seq         uint64 `json:"seq"`
	EnvelopeB64 string `json:"envelopeB64"`
}

func ToWire(tape *Tape) (*WireTape, error) {
	if tape == nil {
		return nil, nil
	}
	out := &WireTape{
		TapeVersion: tape.TapeVersion,
		GameID:      tape.Final.ID,
		Events:      make([]WireEvent, 0, len(tape.Events)),
	}
	for _, e := range tape.Events {
		seq := uint64(e.Move.Seq)
		env := codec.Envelope{
			GameID:  tape.Final.ID,
			Seq:     seq,
			Kind:    string(notify.KindMove),
			TsMs:    e.Move.At.UnixMilli(),
			Payload: e,
		}
		raw, err := codec.Encode(env, codec.FormatBinary)
		if err != nil {
			return nil, fmt.Errorf("replay: encode step %d: %w", e.Step, err)
		}
		out.Events = append(out.Events, WireEvent{
			Type:        string(notify.KindMove),
			Seq:         seq,
			EnvelopeB64: base64.StdEncoding.EncodeToString(raw),
		})
	}
	return out, nil
}
