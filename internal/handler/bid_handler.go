package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/catireiro/backend/internal/model"
	"github.com/catireiro/backend/internal/money"
	"github.com/catireiro/backend/internal/service"
)

type BidHandler struct {
	bids     service.BidService
	listings service.ListingService
}

func NewBidHandler(bids service.BidService, listings service.ListingService) *BidHandler {
	return &BidHandler{bids: bids, listings: listings}
}

type BidResponse struct {
	ID        string  `json:"id"`
	ListingID string  `json:"listingId"`
	BuyerUID  string  `json:"buyerUid"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note,omitempty"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
}

type BidListResponse struct {
	Bids []BidResponse `json:"bids"`
}

type PlaceBidRequest struct {
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

type AcceptBidRequest struct {
	BidID string `json:"bidId"`
}

type AcceptBidResponse struct {
	Listing ListingResponse `json:"listing"`
	Bid     BidResponse     `json:"bid"`
	Handoff service.Handoff `json:"handoff"`
}

func (h *BidHandler) Place(c echo.Context) error {
	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	bid, err := h.bids.Place(c.Request().Context(), c.Param("id"), currentUID(c), money.FromFloat(req.Amount), req.Note)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toBidResponse(bid, true))
}

// ListByListing returns the listing's bids ordered by amount. Bid notes are
// addressed to the seller and are stripped for everyone else.
func (h *BidHandler) ListByListing(c echo.Context) error {
	listingID := c.Param("id")
	listing, err := h.listings.Get(c.Request().Context(), listingID)
	if err != nil {
		return writeServiceError(c, err)
	}
	bids, err := h.bids.ListByListing(c.Request().Context(), listingID)
	if err != nil {
		return writeServiceError(c, err)
	}
	isSeller := currentUID(c) == listing.SellerUID
	resp := BidListResponse{Bids: make([]BidResponse, 0, len(bids))}
	for i := range bids {
		resp.Bids = append(resp.Bids, toBidResponse(&bids[i], isSeller))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BidHandler) ListMine(c echo.Context) error {
	bids, err := h.bids.ListByBuyer(c.Request().Context(), currentUID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := BidListResponse{Bids: make([]BidResponse, 0, len(bids))}
	for i := range bids {
		resp.Bids = append(resp.Bids, toBidResponse(&bids[i], true))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BidHandler) Accept(c echo.Context) error {
	var req AcceptBidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.BidID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "bidId is required"))
	}
	res, err := h.bids.Accept(c.Request().Context(), c.Param("id"), req.BidID, currentUID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, AcceptBidResponse{
		Listing: toListingResponse(res.Listing),
		Bid:     toBidResponse(res.Bid, true),
		Handoff: res.Handoff,
	})
}

func toBidResponse(b *model.Bid, includeNote bool) BidResponse {
	resp := BidResponse{
		ID:        b.ID,
		ListingID: b.ListingID,
		BuyerUID:  b.BuyerUID,
		Amount:    b.Amount.Float(),
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
	if includeNote {
		resp.Note = b.Note
	}
	return resp
}
