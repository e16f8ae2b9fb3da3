package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/catireiro/backend/internal/model"
	"github.com/catireiro/backend/internal/notifier"
	"github.com/catireiro/backend/internal/service"
)

// StreamHandler serves the per-listing bid stream over WebSocket. Every frame
// is a full replacement snapshot of the listing's bids; clients rebuild their
// view from the latest frame and never apply deltas.
type StreamHandler struct {
	bids     service.BidService
	listings service.ListingService
	hub      notifier.Notifier
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewStreamHandler(bids service.BidService, listings service.ListingService, hub notifier.Notifier, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		bids:     bids,
		listings: listings,
		hub:      hub,
		logger:   logger,
		upgrader: websocket.Upgrader{
			// The REST layer already does CORS; the stream carries only
			// seller-redacted public data.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *StreamHandler) Stream(c echo.Context) error {
	listingID := c.Param("id")
	ctx := c.Request().Context()

	if _, err := h.listings.Get(ctx, listingID); err != nil {
		return writeServiceError(c, err)
	}
	// Fetch the initial snapshot before upgrading so a store failure is a
	// plain HTTP error rather than a stream that never delivers anything.
	initial, err := h.bids.ListByListing(ctx, listingID)
	if err != nil {
		return writeServiceError(c, err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Slow consumers skip intermediate snapshots instead of backpressuring
	// the publisher; only the latest state matters.
	snapshots := make(chan []model.Bid, 1)
	sub := h.hub.Subscribe(listingID, func(bids []model.Bid) {
		for {
			select {
			case snapshots <- bids:
				return
			default:
				select {
				case <-snapshots:
				default:
				}
			}
		}
	})
	defer h.hub.Unsubscribe(sub)

	if err := h.writeSnapshot(conn, initial); err != nil {
		return nil
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return nil
		case <-ctx.Done():
			return nil
		case bids := <-snapshots:
			if err := h.writeSnapshot(conn, bids); err != nil {
				return nil
			}
		}
	}
}

func (h *StreamHandler) writeSnapshot(conn *websocket.Conn, bids []model.Bid) error {
	resp := BidListResponse{Bids: make([]BidResponse, 0, len(bids))}
	for i := range bids {
		resp.Bids = append(resp.Bids, toBidResponse(&bids[i], false))
	}
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Debug("bid stream write failed", zap.Error(err))
		return err
	}
	return nil
}
