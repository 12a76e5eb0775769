// Seeds a development database with a small catalog: channel plans,
// marketplace services, videos and a couple of promo codes. Idempotent
// in spirit: it refuses to run when plans already exist.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"inet-marketplace/internal/config"
	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/repository"
	pg "inet-marketplace/internal/infra/db/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planRepo := pg.NewPlanRepo(pool)
	serviceRepo := pg.NewServiceRepo(pool)
	videoRepo := pg.NewVideoRepo(pool)
	promoRepo := pg.NewPromoRepo(pool)

	existing, err := planRepo.List(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d plans already present, nothing to do\n", len(existing))
		return
	}

	plans := []struct {
		name     string
		duration string
		price    int64
	}{
		{"Wiki Moja", "weekly", 3000},
		{"Mwezi Mzima", "monthly", 10000},
		{"Mwaka Mzima", "yearly", 90000},
	}
	for i, s := range plans {
		p, err := model.NewChannelPlan(uuid.NewString(), s.name, s.duration, s.price)
		if err != nil {
			log.Fatalf("plan %q: %v", s.name, err)
		}
		p.SortOrder = i
		if err := planRepo.Save(ctx, repository.NoTX, p); err != nil {
			log.Fatalf("save plan %q: %v", s.name, err)
		}
		fmt.Printf("plan: %s (%d days, TZS %d)\n", p.Name, p.DurationDays, p.Price)
	}

	services := []struct {
		name     string
		category string
		price    int64
		duration string
	}{
		{"Netflix Premium Account", "streaming", 25000, "1 month"},
		{"Spotify Family Slot", "streaming", 12000, "1 month"},
		{"IPTV Bundle", "tv", 15000, "1 month"},
	}
	for _, s := range services {
		svc := &model.Service{
			ID:        uuid.NewString(),
			Name:      s.name,
			Category:  s.category,
			Price:     s.price,
			Currency:  model.CurrencyTZS,
			Duration:  s.duration,
			IsActive:  true,
			CreatedAt: time.Now(),
		}
		if err := serviceRepo.Save(ctx, repository.NoTX, svc); err != nil {
			log.Fatalf("save service %q: %v", s.name, err)
		}
		fmt.Printf("service: %s (TZS %d)\n", svc.Name, svc.Price)
	}

	videos := []struct {
		title    string
		category string
		price    int64
	}{
		{"Bongo Movie: Usiku wa Manane", "movies", 2000},
		{"Comedy Special", "comedy", 1500},
		{"Weekly Highlights", "sports", 0},
	}
	for i, v := range videos {
		vid := &model.Video{
			ID:        uuid.NewString(),
			Title:     v.title,
			Category:  v.category,
			Price:     v.price,
			VideoURL:  fmt.Sprintf("https://cdn.example.com/videos/%d.mp4", i+1),
			IsActive:  true,
			SortOrder: i,
			CreatedAt: time.Now(),
		}
		if err := videoRepo.Save(ctx, repository.NoTX, vid); err != nil {
			log.Fatalf("save video %q: %v", v.title, err)
		}
		fmt.Printf("video: %s (TZS %d)\n", vid.Title, vid.Price)
	}

	discount, err := model.NewPromoCode(uuid.NewString(), "KARIBU20", model.PromoTypeDiscount)
	if err != nil {
		log.Fatalf("promo: %v", err)
	}
	discount.Description = "20% welcome discount"
	discount.DiscountPercent = 20
	discount.MaxUses = 100
	if err := promoRepo.Save(ctx, repository.NoTX, discount); err != nil {
		log.Fatalf("save promo: %v", err)
	}

	free, err := model.NewPromoCode(uuid.NewString(), "WIKIBURE", model.PromoTypeFreeAccess)
	if err != nil {
		log.Fatalf("promo: %v", err)
	}
	free.Description = "One free week of channel access"
	free.FreeAccessDays = 7
	free.MaxUses = 50
	if err := promoRepo.Save(ctx, repository.NoTX, free); err != nil {
		log.Fatalf("save promo: %v", err)
	}
	fmt.Println("promos: KARIBU20, WIKIBURE")

	fmt.Println("seeding complete")
}
