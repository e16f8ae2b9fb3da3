package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/catireiro/backend/internal/model"
	"github.com/catireiro/backend/internal/money"
	"github.com/catireiro/backend/internal/service"
)

type ListingHandler struct {
	svc service.ListingService
}

func NewListingHandler(svc service.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

type ListingResponse struct {
	ID            string  `json:"id"`
	SellerUID     string  `json:"sellerUid"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Category      string  `json:"category"`
	UrgencyReason string  `json:"urgencyReason,omitempty"`
	MinimumPrice  float64 `json:"minimumPrice"`
	DurationDays  int     `json:"durationDays"`
	Deadline      string  `json:"deadline"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

type ListingListResponse struct {
	Listings []ListingResponse `json:"listings"`
	Total    int64             `json:"total"`
}

type CreateListingRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	UrgencyReason string  `json:"urgencyReason"`
	MinimumPrice  float64 `json:"minimumPrice"`
	DurationDays  int     `json:"durationDays"`
}

type UpdateListingRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	UrgencyReason string `json:"urgencyReason"`
}

func (h *ListingHandler) Create(c echo.Context) error {
	var req CreateListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	listing, err := h.svc.Create(c.Request().Context(), currentUID(c), service.CreateListingInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      model.Category(req.Category),
		UrgencyReason: req.UrgencyReason,
		MinimumPrice:  money.FromFloat(req.MinimumPrice),
		DurationDays:  req.DurationDays,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toListingResponse(listing))
}

func (h *ListingHandler) Get(c echo.Context) error {
	listing, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toListingResponse(listing))
}

func (h *ListingHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	category := model.Category(c.QueryParam("category"))
	listings, total, err := h.svc.List(c.Request().Context(), category, limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := ListingListResponse{
		Listings: make([]ListingResponse, 0, len(listings)),
		Total:    total,
	}
	for i := range listings {
		resp.Listings = append(resp.Listings, toListingResponse(&listings[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) ListMine(c echo.Context) error {
	listings, err := h.svc.ListBySeller(c.Request().Context(), currentUID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := ListingListResponse{
		Listings: make([]ListingResponse, 0, len(listings)),
		Total:    int64(len(listings)),
	}
	for i := range listings {
		resp.Listings = append(resp.Listings, toListingResponse(&listings[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) Update(c echo.Context) error {
	var req UpdateListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	listing, err := h.svc.Update(c.Request().Context(), c.Param("id"), currentUID(c), service.UpdateListingInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      model.Category(req.Category),
		UrgencyReason: req.UrgencyReason,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toListingResponse(listing))
}

func toListingResponse(l *model.Listing) ListingResponse {
	return ListingResponse{
		ID:            l.ID,
		SellerUID:     l.SellerUID,
		Title:         l.Title,
		Description:   l.Description,
		Category:      string(l.Category),
		UrgencyReason: l.UrgencyReason,
		MinimumPrice:  l.MinimumPrice.Float(),
		DurationDays:  l.DurationDays,
		Deadline:      l.Deadline.Format(time.RFC3339),
		Status:        string(l.Status),
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     l.UpdatedAt.Format(time.RFC3339),
	}
}
