// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package notify

import (
	"sync"

	"github.com/MKhiriev/go-bill-keeper/internal/logger"
	"github.com/MKhiriev/go-bill-keeper/models"
)

const defaultBufferSize = 16

// Subscription receives the updates of one bill.
type Subscription struct {
	id     uint64
	billID string
	ch     chan models.BillUpdatedEvent
	once   sync.Once
}

// C is closed when the subscription ends, including when the hub drops a
// subscriber that fell behind.
func (s *Subscription) C() <-chan models.BillUpdatedEvent {
	return s.ch
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

// Hub fans bill updates out to subscribers.
type Hub struct {
	mu         sync.RWMutex
	subs       map[string]map[uint64]*Subscription
	nextID     uint64
	bufferSize int
	logger     *logger.Logger
}

// NewHub returns a hub whose subscribers buffer up to bufferSize events.
func NewHub(bufferSize int, log *logger.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Hub{
		subs:       make(map[string]map[uint64]*Subscription),
		bufferSize: bufferSize,
		logger:     log,
	}
}

// Subscribe registers a subscriber for billID.
func (h *Hub) Subscribe(billID string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		billID: billID,
		ch:     make(chan models.BillUpdatedEvent, h.bufferSize),
	}
	if h.subs[billID] == nil {
		h.subs[billID] = make(map[uint64]*Subscription)
	}
	h.subs[billID][sub.id] = sub

	return sub
}

// Unsubscribe removes sub and closes its channel. It is safe to call more
// than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	h.remove(sub)
	h.mu.Unlock()
}

// NotifyBillUpdated delivers the event to every subscriber of the bill.
// Subscribers with a full buffer are dropped.
func (h *Hub) NotifyBillUpdated(billID string, version int64, actorID string) {
	event := models.BillUpdatedEvent{BillID: billID, Version: version, ActorID: actorID}

	var slow []*Subscription
	h.mu.RLock()
	for _, sub := range h.subs[billID] {
		select {
		case sub.ch <- event:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}

	h.mu.Lock()
	for _, sub := range slow {
		h.remove(sub)
	}
	h.mu.Unlock()

	h.logger.Warn().Str("func", "Hub.NotifyBillUpdated").
		Str("bill_id", billID).
		Int("dropped", len(slow)).
		Msg("dropped slow subscribers")
}

// Count returns the number of subscribers of billID.
func (h *Hub) Count(billID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[billID])
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, subs := range h.subs {
		for _, sub := range subs {
			sub.close()
		}
	}
	h.subs = make(map[string]map[uint64]*Subscription)
}

func (h *Hub) remove(sub *Subscription) {
	if subs, ok := h.subs[sub.billID]; ok {
		delete(subs, sub.id)
		if len(subs) == 0 {
			delete(h.subs, sub.billID)
		}
	}
	sub.close()
}
