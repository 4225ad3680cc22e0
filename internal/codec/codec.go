package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Format selects the wire encoding of a frame.
type Format int

const (
	FormatBinary Format = iota + 1 // protobuf Struct, used on websocket binary frames
	FormatJSON                     // protojson, used on websocket text frames and NATS
)

// Envelope is one server → client frame.
type Envelope struct {
	GameID  string `json:"gameId"`
	Seq     uint64 `json:"seq"`
	Kind    string `json:"kind"`
	TsMs    int64  `json:"tsMs"`
	Payload any    `json:"payload,omitempty"`
}

// NewEnvelope stamps the envelope with the current time.
func NewEnvelope(gameID string, seq uint64, kind string, payload any) Envelope {
	return Envelope{
		GameID:  gameID,
		Seq:     seq,
		Kind:    kind,
		TsMs:    time.Now().UnixMilli(),
		Payload: payload,
	}
}

// Encode serializes env in the requested format.
func Encode(env Envelope, f Format) ([]byte, error) {
	msg, err := toStruct(env)
	if err != nil {
		return nil, fmt.Errorf("codec: %s envelope: %w", env.Kind, err)
	}
	return marshal(msg, f)
}

// DecodeEnvelope is the client side of Encode. Payload comes back as
// generic JSON values (map[string]any, []any, float64...).
func DecodeEnvelope(data []byte, f Format) (Envelope, error) {
	var env Envelope
	if err := unmarshalInto(data, f, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// Op names a client command.
type Op string

const (
	OpView     Op = "view"
	OpBots     Op = "bots"
	OpTeams    Op = "teams"
	OpStart    Op = "start"
	OpAsk      Op = "ask"
	OpClaim    Op = "claim"
	OpTransfer Op = "transfer"
)

// Command is one client → server frame. Fields not used by Op are ignored.
type Command struct {
	Op     Op                  `json:"op"`
	ReqID  string              `json:"reqId,omitempty"`
	Target string              `json:"target,omitempty"`
	Card   string              `json:"card,omitempty"`
	Claim  map[string]string   `json:"claim,omitempty"`
	Teams  map[string][]string `json:"teams,omitempty"`
}

func EncodeCommand(cmd Command, f Format) ([]byte, error) {
	msg, err := toStruct(cmd)
	if err != nil {
		return nil, fmt.Errorf("codec: %s command: %w", cmd.Op, err)
	}
	return marshal(msg, f)
}

func DecodeCommand(data []byte, f Format) (Command, error) {
	var cmd Command
	if err := unmarshalInto(data, f, &cmd); err != nil {
		return Command{}, err
	}
	if cmd.Op == "" {
		return Command{}, fmt.Errorf("codec: command without op")
	}
	return cmd, nil
}

// toStruct goes through encoding/json so the domain types' own text
// marshalers (cards, statuses) decide how they look on the wire.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return structpb.NewStruct(generic)
}

func marshal(msg *structpb.Struct, f Format) ([]byte, error) {
	switch f {
	case FormatBinary:
		return proto.Marshal(msg)
	case FormatJSON:
		return protojson.MarshalOptions{EmitUnpopulated: true}.Marshal(msg)
	}
	return nil, fmt.Errorf("codec: unknown format %d", f)
}

func unmarshalInto(data []byte, f Format, out any) error {
	var msg structpb.Struct
	var err error
	switch f {
	case FormatBinary:
		err = proto.Unmarshal(data, &msg)
	case FormatJSON:
		err = protojson.Unmarshal(data, &msg)
	default:
		return fmt.Errorf("codec: unknown format %d", f)
	}
	if err != nil {
		return fmt.Errorf("codec: invalid frame: %w", err)
	}
	raw, err := json.Marshal(msg.AsMap())
	if err != nil {
		return fmt.Errorf("codec: invalid frame: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("codec: invalid frame: %w", err)
	}
	return nil
}
