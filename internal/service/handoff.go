package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/catireiro/backend/internal/model"
)

// Handoff carries everything the seller needs to continue the deal on
// WhatsApp after accepting a bid. This is the only wire-level output the
// bidding core produces.
type Handoff struct {
	WhatsAppURL     string  `json:"whatsappUrl"`
	Message         string  `json:"message"`
	BuyerName       string  `json:"buyerName"`
	BuyerCity       string  `json:"buyerCity,omitempty"`
	BuyerReputation float64 `json:"buyerReputation"`
}

// BuildHandoff templates the WhatsApp deep link for the accepted bid's buyer.
// The stored handle may contain formatting ("(34) 99888-7766"); only its
// digits go into the link, prefixed with the country calling code.
func BuildHandoff(countryCode string, buyer *model.Profile, listingTitle string) Handoff {
	msg := fmt.Sprintf("Olá, vi seu lance no O Catireiro e aceitei sua oferta pelo %s!", listingTitle)

	name := buyer.FullName
	if name == "" {
		name = "Comprador"
	}

	return Handoff{
		WhatsAppURL:     fmt.Sprintf("https://api.whatsapp.com/send?phone=%s%s&text=%s", countryCode, digitsOnly(buyer.WhatsApp), url.QueryEscape(msg)),
		Message:         msg,
		BuyerName:       name,
		BuyerCity:       buyer.City,
		BuyerReputation: buyer.Reputation,
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
