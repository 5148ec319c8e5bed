// Package broadcast fans server-initiated events out to every live client
// connection. Membership is self-healing: a channel whose write fails is
// dropped from the registry, and delivery to the remaining channels is never
// aborted by one failure. Best effort, at most once per registered channel.
package broadcast

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tunegrid/jukebox/internal/metrics"
)

// Channel is one registered client output stream. Writes are serialized with
// a per-channel mutex so a broadcast line never interleaves with a response
// line on the same connection.
type Channel struct {
	mu sync.Mutex
	w  io.Writer
}

func NewChannel(w io.Writer) *Channel {
	return &Channel{w: w}
}

// WriteLine writes p followed by a newline as a single serialized operation.
func (c *Channel) WriteLine(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.Write(p); err != nil {
		return err
	}
	_, err := c.w.Write([]byte{'\n'})
	return err
}

// Event is the envelope pushed to clients outside any request/response pair.
type Event struct {
	Event string `json:"event"`
	Song  any    `json:"song,omitempty"`
}

// Registry tracks the currently connected output channels.
type Registry struct {
	mu       sync.Mutex
	channels map[*Channel]struct{}
	log      zerolog.Logger
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		channels: make(map[*Channel]struct{}),
		log:      log,
	}
}

// Register adds a channel for the duration of its connection.
func (r *Registry) Register(ch *Channel) {
	r.mu.Lock()
	r.channels[ch] = struct{}{}
	r.mu.Unlock()
	metrics.ConnectionsActive.Inc()
}

// Unregister removes a channel. Safe to call for a channel already evicted by
// a failed delivery.
func (r *Registry) Unregister(ch *Channel) {
	r.mu.Lock()
	_, present := r.channels[ch]
	delete(r.channels, ch)
	r.mu.Unlock()
	if present {
		metrics.ConnectionsActive.Dec()
	}
}

// Count returns the number of registered channels.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}

// Broadcast serializes the event once and writes it to every registered
// channel. Channels that fail to accept the write are evicted.
func (r *Registry) Broadcast(ev Event) {
	line, err := json.Marshal(ev)
	if err != nil {
		r.log.Error().Err(err).Str("event", ev.Event).Msg("failed to encode broadcast event")
		return
	}

	r.mu.Lock()
	targets := make([]*Channel, 0, len(r.channels))
	for ch := range r.channels {
		targets = append(targets, ch)
	}
	r.mu.Unlock()

	var failed []*Channel
	for _, ch := range targets {
		if err := ch.WriteLine(line); err != nil {
			failed = append(failed, ch)
		}
	}
	for _, ch := range failed {
		r.Unregister(ch)
		metrics.BroadcastEvictionsTotal.Inc()
	}

	metrics.BroadcastsTotal.WithLabelValues(ev.Event).Inc()
	r.log.Debug().Str("event", ev.Event).Int("delivered", len(targets)-len(failed)).Int("evicted", len(failed)).Msg("event broadcast")
}
