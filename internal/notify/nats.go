package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"literature-lite/internal/codec"
	"literature-lite/internal/log"
)

var ErrNotConnected = errors.New("notify: nats not connected")

// NATS publishes protojson envelopes on per-game subjects:
// <prefix>.<gameID>.all for game-wide events and
// <prefix>.<gameID>.player.<playerID> for private ones.
type NATS struct {
	conn   *nats.Conn
	prefix string
}

func NewNATS(url, prefix string) (*NATS, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	if prefix == "" {
		prefix = "literature"
	}
	log.Info("[Notify] connecting to nats %s", url)
	conn, err := nats.Connect(url,
		nats.Name("literature-server"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("[Notify] nats disconnected: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &NATS{conn: conn, prefix: prefix}, nil
}

func (n *NATS) IsConnected() bool {
	return n.conn != nil && n.conn.IsConnected()
}

func (n *NATS) Publish(_ context.Context, msg Notification) error {
	if !n.IsConnected() {
		return ErrNotConnected
	}
	data, err := codec.Encode(codec.NewEnvelope(msg.GameID, msg.Seq, string(msg.Kind), msg.Payload), codec.FormatJSON)
	if err != nil {
		return err
	}
	for _, subject := range Subjects(n.prefix, msg) {
		if err := n.conn.Publish(subject, data); err != nil {
			return fmt.Errorf("nats publish %s: %w", subject, err)
		}
	}
	return nil
}

func (n *NATS) Close() error {
	if n.conn == nil {
		return nil
	}
	err := n.conn.Drain()
	log.Info("[Notify] nats connection closed")
	return err
}

// Subjects lists where a notification is published.
func Subjects(prefix string, msg Notification) []string {
	if !msg.Private() {
		return []string{fmt.Sprintf("%s.%s.all", prefix, msg.GameID)}
	}
	out := make([]string, 0, len(msg.Recipients))
	for _, id := range msg.Recipients {
		out = append(out, fmt.Sprintf("%s.%s.player.%s", prefix, msg.GameID, id))
	}
	return out
}
