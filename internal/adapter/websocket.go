package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-bill-keeper/models"
)

// SubscribeBillEvents implements [ServerAdapter]. It dials
// GET /bills/{id}/events and decodes one [models.BillUpdatedEvent] per
// message.
func (h *httpServerAdapter) SubscribeBillEvents(ctx context.Context, billID string) (<-chan models.BillUpdatedEvent, error) {
	endpoint := websocketURL(h.baseURL) + "/bills/" + url.PathEscape(billID) + "/events"

	header := http.Header{}
	if token := h.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	if h.clientID != "" {
		header.Set(headerClientID, h.clientID)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return nil, fmt.Errorf("subscribe to bill events: http %d: %w", resp.StatusCode, statusError(resp.StatusCode))
		}
		return nil, mapTransportError(ctx, "subscribe to bill events", err)
	}

	events := make(chan models.BillUpdatedEvent)
	done := make(chan struct{})

	// closing the connection unblocks the reader when ctx ends
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.Close()
	}()

	go func() {
		defer close(events)
		defer close(done)
		for {
			var event models.BillUpdatedEvent
			if err := conn.ReadJSON(&event); err != nil {
				if ctx.Err() == nil {
					h.logger.Debug().Err(err).Str("func", "httpServerAdapter.SubscribeBillEvents").
						Str("bill_id", billID).Msg("event stream ended")
				}
				return
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

func websocketURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	default:
		return baseURL
	}
}

func statusError(code int) error {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= http.StatusInternalServerError:
		return ErrServer
	default:
		return ErrValidation
	}
}
