// Package notify publishes change hints so interested consumers (dashboards,
// ingestion workers) can refresh without polling. Hints are best effort;
// nothing in the console depends on them being delivered.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// Notifier emits a hint that rows in table changed for the given client.
type Notifier interface {
	TableChanged(ctx context.Context, table, clientID string) error
	Close() error
}

// NATSNotifier publishes hints on console.changes.<table>.<client_id>.
type NATSNotifier struct {
	nc *nats.Conn
}

func Connect(url string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("notify: nats connect: %w", err)
	}
	return &NATSNotifier{nc: nc}, nil
}

func (n *NATSNotifier) TableChanged(ctx context.Context, table, clientID string) error {
	subject := fmt.Sprintf("console.changes.%s.%s", table, clientID)
	if err := n.nc.Publish(subject, nil); err != nil {
		return fmt.Errorf("notify: publish %s: %w", subject, err)
	}
	return nil
}

func (n *NATSNotifier) Close() error {
	n.nc.Close()
	return nil
}

// Noop drops every hint. Used when NATS is not configured.
type Noop struct{}

func (Noop) TableChanged(ctx context.Context, table, clientID string) error { return nil }
func (Noop) Close() error                                                   { return nil }

// Recorder captures hints in memory for tests.
type Recorder struct {
	mu    sync.Mutex
	Hints []string
}

func (r *Recorder) TableChanged(ctx context.Context, table, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Hints = append(r.Hints, table+"/"+clientID)
	return nil
}

func (r *Recorder) Close() error { return nil }
