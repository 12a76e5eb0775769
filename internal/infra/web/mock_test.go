//go:build !integration

package web

import (
	"context"
	"time"

	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/repository"
	"inet-marketplace/internal/usecase"
)

type mockPurchaseUC struct {
	InitiateServiceFunc       func(ctx context.Context, userID, serviceID, phone, payerName string) (*model.PurchaseIntent, error)
	InitiateManualServiceFunc func(ctx context.Context, userID, serviceID, phone, proof string) (*model.PurchaseIntent, error)
	InitiatePlanFunc          func(ctx context.Context, userID, planID, phone, payerName, promoCode string) (*model.PurchaseIntent, error)
	InitiateVideoFunc         func(ctx context.Context, userID, videoID, phone, payerName string) (*model.PurchaseIntent, error)
	GetMineFunc               func(ctx context.Context, userID, intentID string) (*model.PurchaseIntent, error)
	ListMineFunc              func(ctx context.Context, userID string, kind model.ItemKind) ([]*model.PurchaseIntent, error)
	MySubscriptionFunc        func(ctx context.Context, userID string) (*model.PurchaseIntent, error)
	HasVideoUnlockFunc        func(ctx context.Context, userID, videoID string) (bool, error)
}

func (m *mockPurchaseUC) InitiateService(ctx context.Context, userID, serviceID, phone, payerName string) (*model.PurchaseIntent, error) {
	return m.InitiateServiceFunc(ctx, userID, serviceID, phone, payerName)
}
func (m *mockPurchaseUC) InitiateManualService(ctx context.Context, userID, serviceID, phone, proof string) (*model.PurchaseIntent, error) {
	return m.InitiateManualServiceFunc(ctx, userID, serviceID, phone, proof)
}
func (m *mockPurchaseUC) InitiatePlan(ctx context.Context, userID, planID, phone, payerName, promoCode string) (*model.PurchaseIntent, error) {
	return m.InitiatePlanFunc(ctx, userID, planID, phone, payerName, promoCode)
}
func (m *mockPurchaseUC) InitiateVideo(ctx context.Context, userID, videoID, phone, payerName string) (*model.PurchaseIntent, error) {
	return m.InitiateVideoFunc(ctx, userID, videoID, phone, payerName)
}
func (m *mockPurchaseUC) GetMine(ctx context.Context, userID, intentID string) (*model.PurchaseIntent, error) {
	return m.GetMineFunc(ctx, userID, intentID)
}
func (m *mockPurchaseUC) ListMine(ctx context.Context, userID string, kind model.ItemKind) ([]*model.PurchaseIntent, error) {
	return m.ListMineFunc(ctx, userID, kind)
}
func (m *mockPurchaseUC) MySubscription(ctx context.Context, userID string) (*model.PurchaseIntent, error) {
	return m.MySubscriptionFunc(ctx, userID)
}
func (m *mockPurchaseUC) HasVideoUnlock(ctx context.Context, userID, videoID string) (bool, error) {
	return m.HasVideoUnlockFunc(ctx, userID, videoID)
}

type mockReconcileUC struct {
	PollStatusFunc        func(ctx context.Context, userID, intentID string) (*model.PurchaseIntent, error)
	ForceTimeoutFunc      func(ctx context.Context, userID, intentID string) (*model.PurchaseIntent, error)
	VerifyManualFunc      func(ctx context.Context, intentID string) (*model.PurchaseIntent, error)
	UpdateFulfillmentFunc func(ctx context.Context, intentID string, upd repository.FulfillmentUpdate) (*model.PurchaseIntent, error)
	ReconcileStaleFunc    func(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

func (m *mockReconcileUC) PollStatus(ctx context.Context, userID, intentID string) (*model.PurchaseIntent, error) {
	return m.PollStatusFunc(ctx, userID, intentID)
}
func (m *mockReconcileUC) ForceTimeout(ctx context.Context, userID, intentID string) (*model.PurchaseIntent, error) {
	return m.ForceTimeoutFunc(ctx, userID, intentID)
}
func (m *mockReconcileUC) VerifyManual(ctx context.Context, intentID string) (*model.PurchaseIntent, error) {
	return m.VerifyManualFunc(ctx, intentID)
}
func (m *mockReconcileUC) UpdateFulfillment(ctx context.Context, intentID string, upd repository.FulfillmentUpdate) (*model.PurchaseIntent, error) {
	return m.UpdateFulfillmentFunc(ctx, intentID, upd)
}
func (m *mockReconcileUC) ReconcileStale(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	return m.ReconcileStaleFunc(ctx, olderThan, limit)
}

type mockPromoUC struct {
	ValidateFunc func(ctx context.Context, code, userID string) (*model.PromoCode, model.PromoInvalidReason, error)
	QuoteFunc    func(ctx context.Context, code, userID, planID string) (*model.PricingQuote, model.PromoInvalidReason, error)
	CreateFunc   func(ctx context.Context, in usecase.PromoCreateInput) (*model.PromoCode, error)
	UpdateFunc   func(ctx context.Context, id string, in usecase.PromoCreateInput) (*model.PromoCode, error)
	DeleteFunc   func(ctx context.Context, id string) error
	ListFunc     func(ctx context.Context) ([]*model.PromoCode, error)
}

func (m *mockPromoUC) Validate(ctx context.Context, code, userID string) (*model.PromoCode, model.PromoInvalidReason, error) {
	return m.ValidateFunc(ctx, code, userID)
}
func (m *mockPromoUC) Quote(ctx context.Context, code, userID, planID string) (*model.PricingQuote, model.PromoInvalidReason, error) {
	return m.QuoteFunc(ctx, code, userID, planID)
}
func (m *mockPromoUC) Create(ctx context.Context, in usecase.PromoCreateInput) (*model.PromoCode, error) {
	return m.CreateFunc(ctx, in)
}
func (m *mockPromoUC) Update(ctx context.Context, id string, in usecase.PromoCreateInput) (*model.PromoCode, error) {
	return m.UpdateFunc(ctx, id, in)
}
func (m *mockPromoUC) Delete(ctx context.Context, id string) error { return m.DeleteFunc(ctx, id) }
func (m *mockPromoUC) List(ctx context.Context) ([]*model.PromoCode, error) {
	return m.ListFunc(ctx)
}

type mockCatalogUC struct {
	ListActivePlansFunc func(ctx context.Context) ([]*model.ChannelPlan, error)
	ListAllPlansFunc    func(ctx context.Context) ([]*model.ChannelPlan, error)
	CreatePlanFunc      func(ctx context.Context, in usecase.PlanInput) (*model.ChannelPlan, error)
	UpdatePlanFunc      func(ctx context.Context, id string, in usecase.PlanInput) (*model.ChannelPlan, error)
	DeletePlanFunc      func(ctx context.Context, id string) error
	ListServicesFunc    func(ctx context.Context) ([]*model.Service, error)
	ListVideosFunc      func(ctx context.Context, userID, category string) ([]*usecase.VideoListing, error)
	RecordViewFunc      func(ctx context.Context, videoID string) error
}

func (m *mockCatalogUC) ListActivePlans(ctx context.Context) ([]*model.ChannelPlan, error) {
	return m.ListActivePlansFunc(ctx)
}
func (m *mockCatalogUC) ListAllPlans(ctx context.Context) ([]*model.ChannelPlan, error) {
	return m.ListAllPlansFunc(ctx)
}
func (m *mockCatalogUC) CreatePlan(ctx context.Context, in usecase.PlanInput) (*model.ChannelPlan, error) {
	return m.CreatePlanFunc(ctx, in)
}
func (m *mockCatalogUC) UpdatePlan(ctx context.Context, id string, in usecase.PlanInput) (*model.ChannelPlan, error) {
	return m.UpdatePlanFunc(ctx, id, in)
}
func (m *mockCatalogUC) DeletePlan(ctx context.Context, id string) error {
	return m.DeletePlanFunc(ctx, id)
}
func (m *mockCatalogUC) ListServices(ctx context.Context) ([]*model.Service, error) {
	return m.ListServicesFunc(ctx)
}
func (m *mockCatalogUC) ListVideos(ctx context.Context, userID, category string) ([]*usecase.VideoListing, error) {
	return m.ListVideosFunc(ctx, userID, category)
}
func (m *mockCatalogUC) RecordView(ctx context.Context, videoID string) error {
	return m.RecordViewFunc(ctx, videoID)
}

type mockStatsUC struct {
	DashboardFunc func(ctx context.Context) (*usecase.DashboardStats, error)
}

func (m *mockStatsUC) Dashboard(ctx context.Context) (*usecase.DashboardStats, error) {
	return m.DashboardFunc(ctx)
}

type mockNotificationRepo struct {
	SaveFunc       func(ctx context.Context, tx repository.Tx, n *model.Notification) error
	ListByUserFunc func(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Notification, error)
}

func (m *mockNotificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	return m.SaveFunc(ctx, tx, n)
}
func (m *mockNotificationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Notification, error) {
	return m.ListByUserFunc(ctx, tx, userID, limit)
}
