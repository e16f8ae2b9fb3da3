// Package notifier pushes bid-set changes to observers of a listing. Each
// delivery is a full replacement snapshot of the listing's bids, never a
// delta, so consumers can rebuild their view from any single event.
package notifier

import (
	"sync"

	"github.com/catireiro/backend/internal/model"
)

// Notifier is the subscription contract the services publish into and the
// stream handler consumes from.
type Notifier interface {
	Subscribe(listingID string, onChange func(bids []model.Bid)) *Subscription
	Unsubscribe(sub *Subscription)
	Publish(listingID string, bids []model.Bid)
}

// Subscription is a handle to one observer of one listing.
type Subscription struct {
	listingID string
	onChange  func(bids []model.Bid)
}

// Hub is an in-process Notifier. Callbacks run on the publisher's goroutine
// and must not block; the stream handler hands snapshots off to a buffered
// channel.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(listingID string, onChange func(bids []model.Bid)) *Subscription {
	sub := &Subscription{listingID: listingID, onChange: onChange}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[listingID] == nil {
		h.subs[listingID] = make(map[*Subscription]struct{})
	}
	h.subs[listingID][sub] = struct{}{}
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.listingID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.listingID)
		}
	}
}

func (h *Hub) Publish(listingID string, bids []model.Bid) {
	h.mu.RLock()
	targets := make([]*Subscription, 0, len(h.subs[listingID]))
	for sub := range h.subs[listingID] {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()
	for _, sub := range targets {
		sub.onChange(bids)
	}
}
