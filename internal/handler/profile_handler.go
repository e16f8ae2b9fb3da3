package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/catireiro/backend/internal/model"
	"github.com/catireiro/backend/internal/repository"
)

// ProfileHandler reads and bootstraps account profiles. The bidding core only
// ever reads them; the upsert exists for signup.
type ProfileHandler struct {
	repo repository.ProfileRepository
}

func NewProfileHandler(repo repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{repo: repo}
}

// PublicProfileResponse omits the WhatsApp handle; the contact is revealed
// only through the handoff after an accepted bid.
type PublicProfileResponse struct {
	UserUID    string  `json:"userUid"`
	FullName   string  `json:"fullName"`
	City       string  `json:"city,omitempty"`
	Reputation float64 `json:"reputation"`
}

type UpsertProfileRequest struct {
	FullName string `json:"fullName"`
	WhatsApp string `json:"whatsapp"`
	City     string `json:"city"`
}

func (h *ProfileHandler) GetPublic(c echo.Context) error {
	p, err := h.repo.FindByUID(c.Request().Context(), c.Param("uid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "profile not found"))
		}
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("transient", "store unavailable, try again"))
	}
	return c.JSON(http.StatusOK, PublicProfileResponse{
		UserUID:    p.UserUID,
		FullName:   p.FullName,
		City:       p.City,
		Reputation: p.Reputation,
	})
}

func (h *ProfileHandler) UpsertMine(c echo.Context) error {
	var req UpsertProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" || len(fullName) > 120 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid name"))
	}
	whatsapp := strings.TrimSpace(req.WhatsApp)
	if countDigits(whatsapp) < 10 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "whatsapp must include area code and number"))
	}
	p := &model.Profile{
		UserUID:  currentUID(c),
		FullName: fullName,
		WhatsApp: whatsapp,
		City:     strings.TrimSpace(req.City),
	}
	if err := h.repo.Upsert(c.Request().Context(), p); err != nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("transient", "store unavailable, try again"))
	}
	return c.JSON(http.StatusOK, PublicProfileResponse{
		UserUID:    p.UserUID,
		FullName:   p.FullName,
		City:       p.City,
		Reputation: p.Reputation,
	})
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
