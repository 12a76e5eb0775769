package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"inet-marketplace/internal/domain"
	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/repository"
)

// Compile-time check
var _ CatalogUseCase = (*catalogUC)(nil)

// PlanInput carries admin-facing plan fields. Nil pointers on update mean
// "no change".
type PlanInput struct {
	Name         string
	Description  string
	DurationType string
	Price        *int64
	IsActive     *bool
	SortOrder    *int
}

// VideoListing is a video decorated with the caller's access state. The
// video URL is withheld for paid videos the user has not unlocked.
type VideoListing struct {
	model.Video
	Purchased bool
}

type CatalogUseCase interface {
	// Plans
	ListActivePlans(ctx context.Context) ([]*model.ChannelPlan, error)
	ListAllPlans(ctx context.Context) ([]*model.ChannelPlan, error)
	CreatePlan(ctx context.Context, in PlanInput) (*model.ChannelPlan, error)
	UpdatePlan(ctx context.Context, id string, in PlanInput) (*model.ChannelPlan, error)
	DeletePlan(ctx context.Context, id string) error

	// Services
	ListServices(ctx context.Context) ([]*model.Service, error)

	// Videos
	ListVideos(ctx context.Context, userID, category string) ([]*VideoListing, error)
	RecordView(ctx context.Context, videoID string) error
}

type catalogUC struct {
	plans    repository.ChannelPlanRepository
	services repository.ServiceRepository
	videos   repository.VideoRepository
	intents  repository.PurchaseIntentRepository
	log      *zerolog.Logger
}

func NewCatalogUseCase(
	plans repository.ChannelPlanRepository,
	services repository.ServiceRepository,
	videos repository.VideoRepository,
	intents repository.PurchaseIntentRepository,
	logger *zerolog.Logger,
) *catalogUC {
	return &catalogUC{plans: plans, services: services, videos: videos, intents: intents, log: logger}
}

func (u *catalogUC) ListActivePlans(ctx context.Context) ([]*model.ChannelPlan, error) {
	return u.plans.ListActive(ctx, repository.NoTX)
}

func (u *catalogUC) ListAllPlans(ctx context.Context) ([]*model.ChannelPlan, error) {
	return u.plans.List(ctx, repository.NoTX)
}

func (u *catalogUC) CreatePlan(ctx context.Context, in PlanInput) (*model.ChannelPlan, error) {
	var price int64
	if in.Price != nil {
		price = *in.Price
	}
	plan, err := model.NewChannelPlan(uuid.NewString(), in.Name, in.DurationType, price)
	if err != nil {
		return nil, err
	}
	plan.Description = in.Description
	if in.IsActive != nil {
		plan.IsActive = *in.IsActive
	}
	if in.SortOrder != nil {
		plan.SortOrder = *in.SortOrder
	}
	if err := u.plans.Save(ctx, repository.NoTX, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (u *catalogUC) UpdatePlan(ctx context.Context, id string, in PlanInput) (*model.ChannelPlan, error) {
	plan, err := u.plans.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		plan.Name = in.Name
	}
	if in.Description != "" {
		plan.Description = in.Description
	}
	if in.DurationType != "" {
		plan.DurationType = in.DurationType
		plan.DurationDays = model.DurationDaysFor(in.DurationType)
	}
	if in.Price != nil {
		plan.Price = *in.Price
	}
	if in.IsActive != nil {
		plan.IsActive = *in.IsActive
	}
	if in.SortOrder != nil {
		plan.SortOrder = *in.SortOrder
	}
	if err := u.plans.Save(ctx, repository.NoTX, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (u *catalogUC) DeletePlan(ctx context.Context, id string) error {
	return u.plans.Delete(ctx, repository.NoTX, id)
}

func (u *catalogUC) ListServices(ctx context.Context) ([]*model.Service, error) {
	return u.services.ListActive(ctx, repository.NoTX)
}

// ListVideos marks each paid video with the caller's unlock state and
// strips the video URL from locked ones. Free videos are always playable.
func (u *catalogUC) ListVideos(ctx context.Context, userID, category string) ([]*VideoListing, error) {
	videos, err := u.videos.ListActive(ctx, repository.NoTX, category)
	if err != nil {
		return nil, err
	}

	out := make([]*VideoListing, 0, len(videos))
	for _, v := range videos {
		l := &VideoListing{Video: *v, Purchased: !v.IsPaid()}
		if v.IsPaid() && userID != "" {
			_, err := u.intents.FindCompletedUnlock(ctx, repository.NoTX, userID, model.ItemKindVideo, v.ID)
			switch err {
			case nil:
				l.Purchased = true
			case domain.ErrNotFound:
				// locked
			default:
				return nil, err
			}
		}
		if v.IsPaid() && !l.Purchased {
			l.VideoURL = ""
		}
		out = append(out, l)
	}
	return out, nil
}

func (u *catalogUC) RecordView(ctx context.Context, videoID string) error {
	return u.videos.IncrementViews(ctx, repository.NoTX, videoID)
}
