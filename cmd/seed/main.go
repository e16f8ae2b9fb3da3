// Seeds a handful of listings, profiles and bids for local development.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/catireiro/backend/internal/config"
	"github.com/catireiro/backend/internal/db"
	"github.com/catireiro/backend/internal/model"
	"github.com/catireiro/backend/internal/money"
	"github.com/catireiro/backend/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := conn.AutoMigrate(&model.Listing{}, &model.Bid{}, &model.Profile{}); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	ctx := context.Background()
	profiles := repository.NewProfileRepository(conn)
	listings := repository.NewListingRepository(conn)
	bids := repository.NewBidRepository(conn)

	sellers := []model.Profile{
		{UserUID: "seed-seller-1", FullName: "João Pereira", WhatsApp: "(11) 98877-6655", City: "São Paulo, SP"},
		{UserUID: "seed-seller-2", FullName: "Marina Costa", WhatsApp: "(31) 99666-5544", City: "Belo Horizonte, MG"},
		{UserUID: "seed-buyer-1", FullName: "Carlos Lima", WhatsApp: "(41) 98555-4433", City: "Curitiba, PR"},
	}
	for i := range sellers {
		if err := profiles.Upsert(ctx, &sellers[i]); err != nil {
			log.Fatalf("seed profile: %v", err)
		}
	}

	now := time.Now()
	samples := []model.Listing{
		{
			ID:            uuid.NewString(),
			SellerUID:     "seed-seller-1",
			Title:         "iPhone 15 Pro Max 256GB - Preciso vender hoje",
			Description:   "Aparelho impecável, com nota fiscal e caixa.",
			Category:      model.CategoryPhones,
			UrgencyReason: "Mudança para o exterior",
			MinimumPrice:  money.FromFloat(4500),
			DurationDays:  2,
			Deadline:      now.AddDate(0, 0, 2),
			Status:        model.ListingStatusActive,
		},
		{
			ID:            uuid.NewString(),
			SellerUID:     "seed-seller-2",
			Title:         "Honda Civic 2020 Touring - Quitação urgente",
			Description:   "Único dono, revisões em dia.",
			Category:      model.CategoryCars,
			UrgencyReason: "Preciso quitar financiamento",
			MinimumPrice:  money.FromFloat(95000),
			DurationDays:  1,
			Deadline:      now.AddDate(0, 0, 1),
			Status:        model.ListingStatusActive,
		},
		{
			ID:           uuid.NewString(),
			SellerUID:    "seed-seller-2",
			Title:        "Yamaha MT-07 2023 - Só 5 mil km rodados",
			Category:     model.CategoryMotorcycles,
			MinimumPrice: money.FromFloat(38000),
			DurationDays: 5,
			Deadline:     now.AddDate(0, 0, 5),
			Status:       model.ListingStatusActive,
		},
	}
	for i := range samples {
		if err := listings.Create(ctx, &samples[i]); err != nil {
			log.Fatalf("seed listing: %v", err)
		}
	}

	if _, err := bids.CreateChecked(ctx, &model.Bid{
		ID:        uuid.NewString(),
		ListingID: samples[0].ID,
		BuyerUID:  "seed-buyer-1",
		Amount:    money.FromFloat(5200),
		Note:      "Posso buscar hoje à noite.",
		Status:    model.BidStatusPending,
	}); err != nil {
		log.Fatalf("seed bid: %v", err)
	}

	log.Printf("seeded %d profiles, %d listings", len(sellers), len(samples))
}
