// Package live turns campaign writes into full-snapshot feeds. Every write
// NOTIFYs the campaigns_changed channel; the broker reloads the record set
// for each watched status and fans it out to subscribers. A subscription is
// a channel of snapshots plus a cancel func; dropping the cancel func's
// request context ends the stream.
package live

import (
	"context"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"campusfund/internal/domain"
)

// Channel is the Postgres NOTIFY channel campaign writes publish on.
const Channel = "campaigns_changed"

// Listener is the subset of pq.Listener the broker needs; tests substitute
// a fake.
type Listener interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// NewPQListener builds a reconnecting Postgres listener for the broker.
// pq.Listener re-establishes the connection itself, which is what makes the
// subscription restartable.
func NewPQListener(databaseURL string, logger zerolog.Logger) *pq.Listener {
	return pq.NewListener(databaseURL, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Error().Err(err).Int("event", int(ev)).Msg("live listener event")
		}
	})
}

// Snapshot is one feed delivery: the full record set for the watched
// status, or the error that interrupted the feed. Subscribers that receive
// an error should end their stream and resubscribe.
type Snapshot struct {
	Items []domain.Campaign
	Err   error
}

type subscriber struct {
	status domain.CampaignStatus
	ch     chan Snapshot
}

// Broker owns the listener loop and the subscriber set.
type Broker struct {
	source   domain.CampaignReader
	listener Listener
	logger   zerolog.Logger
	limit    int

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

// NewBroker wires a broker to its snapshot source and notification listener.
func NewBroker(source domain.CampaignReader, listener Listener, logger zerolog.Logger) *Broker {
	return &Broker{
		source:   source,
		listener: listener,
		logger:   logger,
		limit:    200,
		subs:     make(map[*subscriber]struct{}),
	}
}

// Run consumes notifications until ctx is cancelled. The periodic ping keeps
// the listener's connection honest during quiet stretches.
func (b *Broker) Run(ctx context.Context) error {
	if err := b.listener.Listen(Channel); err != nil {
		return err
	}
	defer b.listener.Close()

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ping.C:
			if err := b.listener.Ping(); err != nil {
				b.logger.Error().Err(err).Msg("live listener ping failed")
			}
		case n := <-b.listener.NotificationChannel():
			// A nil notification signals a reconnect; refresh either way so
			// subscribers never miss writes that happened while unplugged.
			_ = n
			b.refresh(ctx)
		}
	}
}

// Subscribe registers a watcher for one status. The initial snapshot is
// delivered immediately; cancel releases the subscription.
func (b *Broker) Subscribe(ctx context.Context, status domain.CampaignStatus) (<-chan Snapshot, func(), error) {
	items, err := b.source.ListByStatus(ctx, status, b.limit)
	if err != nil {
		return nil, nil, err
	}

	sub := &subscriber{status: status, ch: make(chan Snapshot, 1)}
	sub.ch <- Snapshot{Items: items}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
	}
	return sub.ch, cancel, nil
}

// refresh reloads one snapshot per distinct watched status and fans it out.
// A subscriber that has not drained its previous snapshot gets the newer one
// instead; intermediate states are droppable because each message is a full
// snapshot.
func (b *Broker) refresh(ctx context.Context) {
	b.mu.Lock()
	byStatus := make(map[domain.CampaignStatus][]*subscriber)
	for sub := range b.subs {
		byStatus[sub.status] = append(byStatus[sub.status], sub)
	}
	b.mu.Unlock()

	for status, subs := range byStatus {
		items, err := b.source.ListByStatus(ctx, status, b.limit)
		if err != nil {
			b.logger.Error().Err(err).Str("status", string(status)).Msg("live snapshot reload failed")
		}
		// A failed reload is delivered as an error snapshot so subscribers
		// can end their streams instead of stalling on a stale view.
		snapshot := Snapshot{Items: items, Err: err}
		for _, sub := range subs {
			select {
			case sub.ch <- snapshot:
			default:
				select {
				case <-sub.ch:
				default:
				}
				sub.ch <- snapshot
			}
		}
	}
}
