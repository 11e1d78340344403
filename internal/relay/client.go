// Package relay speaks the event log's websocket protocol: REQ/EOSE
// subscriptions for fetching record batches and EVENT/OK for
// publishing. Transport only; no raffle semantics live here.
package relay

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ChadFarrow/5050-sub001/internal/logger"
	"github.com/ChadFarrow/5050-sub001/internal/metrics"
	"github.com/ChadFarrow/5050-sub001/internal/protocol"
)

var ErrRejected = errors.New("relay rejected event")

// Client is a single-relay connection. Operations are sequential: the
// tracker runs one fetch or publish at a time per relay, so there is
// no concurrent reader to coordinate with.
type Client struct {
	url  string
	conn *websocket.Conn
}

// Dial connects to one relay.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{url: url, conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) URL() string {
	return c.url
}

func newSubID() string {
	var b [8]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func (c *Client) deadlineFrom(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		return dl
	}
	return time.Now().Add(30 * time.Second)
}

func (c *Client) send(payload ...any) error {
	return c.conn.WriteJSON(payload)
}

func (c *Client) read(ctx context.Context) ([]json.RawMessage, error) {
	if err := c.conn.SetReadDeadline(c.deadlineFrom(ctx)); err != nil {
		return nil, err
	}
	var frame []json.RawMessage
	if err := c.conn.ReadJSON(&frame); err != nil {
		return nil, err
	}
	if len(frame) == 0 {
		return nil, errors.New("empty relay frame")
	}
	return frame, nil
}

func label(frame []json.RawMessage) string {
	var s string
	_ = json.Unmarshal(frame[0], &s)
	return s
}

// Fetch runs one subscription to completion: events are collected
// until the relay signals end-of-stored-events or the context runs
// out. Events failing id or signature verification are dropped here so
// nothing unauthenticated ever reaches the ledger.
func (c *Client) Fetch(ctx context.Context, filters ...Filter) ([]protocol.Event, error) {
	subID := newSubID()

	req := make([]any, 0, len(filters)+2)
	req = append(req, "REQ", subID)
	for _, f := range filters {
		req = append(req, f)
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("send REQ to %s: %w", c.url, err)
	}

	var batch []protocol.Event
	for {
		frame, err := c.read(ctx)
		if err != nil {
			return batch, fmt.Errorf("read from %s: %w", c.url, err)
		}

		switch label(frame) {
		case "EVENT":
			if len(frame) < 3 {
				continue
			}
			var sub string
			if json.Unmarshal(frame[1], &sub) != nil || sub != subID {
				continue
			}
			var ev protocol.Event
			if err := json.Unmarshal(frame[2], &ev); err != nil {
				logger.Debug("relay: undecodable event... skip", zap.String("relay", c.url), zap.Error(err))
				continue
			}
			if err := protocol.VerifyEvent(&ev); err != nil {
				logger.Debug("relay: unauthenticated event... skip",
					zap.String("relay", c.url), zap.String("id", ev.ID), zap.Error(err))
				continue
			}
			metrics.EventsFetched.WithLabelValues(fmt.Sprint(ev.Kind)).Inc()
			batch = append(batch, ev)

		case "EOSE":
			_ = c.send("CLOSE", subID)
			return batch, nil

		case "CLOSED":
			return batch, fmt.Errorf("relay %s closed subscription", c.url)

		case "NOTICE":
			if len(frame) > 1 {
				var msg string
				_ = json.Unmarshal(frame[1], &msg)
				logger.Debug("relay notice", zap.String("relay", c.url), zap.String("message", msg))
			}
		}
	}
}

// Publish sends one signed event and waits for the relay's verdict.
func (c *Client) Publish(ctx context.Context, ev *protocol.Event) error {
	if err := c.send("EVENT", ev); err != nil {
		return fmt.Errorf("send EVENT to %s: %w", c.url, err)
	}

	for {
		frame, err := c.read(ctx)
		if err != nil {
			return fmt.Errorf("await OK from %s: %w", c.url, err)
		}
		if label(frame) != "OK" || len(frame) < 3 {
			continue
		}

		var id string
		if json.Unmarshal(frame[1], &id) != nil || id != ev.ID {
			continue
		}
		var accepted bool
		_ = json.Unmarshal(frame[2], &accepted)
		if !accepted {
			reason := ""
			if len(frame) > 3 {
				_ = json.Unmarshal(frame[3], &reason)
			}
			return fmt.Errorf("%w: %s", ErrRejected, reason)
		}
		return nil
	}
}
