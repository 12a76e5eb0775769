package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"inet-marketplace/internal/domain"
	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/adapter"
	"inet-marketplace/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memTx marks "inside a transaction" for the in-memory repos. They do not
// implement rollback; tests only assert what ran and in which scope.
type memTx struct{}

type memTxManager struct {
	calls int
}

func (m *memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.calls++
	return fn(ctx, &memTx{})
}

// memIntentRepo is an in-memory ledger with the same conditional-update
// contract as the Postgres implementation: terminal transitions only win
// when the stored status still permits them.
type memIntentRepo struct {
	mu      sync.Mutex
	intents map[string]*model.PurchaseIntent
}

func newMemIntentRepo() *memIntentRepo {
	return &memIntentRepo{intents: make(map[string]*model.PurchaseIntent)}
}

func (r *memIntentRepo) Save(_ context.Context, _ repository.Tx, p *model.PurchaseIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.intents[p.ID] = &cp
	return nil
}

func (r *memIntentRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.PurchaseIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.intents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memIntentRepo) FindByIDAndUser(ctx context.Context, tx repository.Tx, id, userID string) (*model.PurchaseIntent, error) {
	p, err := r.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *memIntentRepo) ListByUser(_ context.Context, _ repository.Tx, userID string, kind model.ItemKind) ([]*model.PurchaseIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PurchaseIntent
	for _, p := range r.intents {
		if p.UserID != userID {
			continue
		}
		if kind != "" && p.ItemKind != kind {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memIntentRepo) FindCompletedUnlock(_ context.Context, _ repository.Tx, userID string, kind model.ItemKind, itemID string) (*model.PurchaseIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.intents {
		if p.UserID == userID && p.ItemKind == kind && p.ItemID == itemID && p.PaymentStatus == model.PaymentStatusCompleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memIntentRepo) FindActiveSubscription(_ context.Context, _ repository.Tx, userID string, at time.Time) (*model.PurchaseIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *model.PurchaseIntent
	for _, p := range r.intents {
		if p.UserID != userID || p.ItemKind != model.ItemKindPlan || p.PaymentStatus != model.PaymentStatusCompleted || !p.IsActive {
			continue
		}
		if p.StartDate == nil || p.EndDate == nil || at.Before(*p.StartDate) || at.After(*p.EndDate) {
			continue
		}
		if best == nil || p.EndDate.After(*best.EndDate) {
			best = p
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *memIntentRepo) CountCompletedByUserAndPromo(_ context.Context, _ repository.Tx, userID, code string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.intents {
		if p.UserID == userID && p.PromoCode == code && p.PaymentStatus == model.PaymentStatusCompleted {
			n++
		}
	}
	return n, nil
}

func (r *memIntentRepo) CompleteIfPending(_ context.Context, _ repository.Tx, id string, start, end *time.Time, isActive bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.intents[id]
	if !ok || p.PaymentStatus != model.PaymentStatusPending {
		return false, nil
	}
	p.PaymentStatus = model.PaymentStatusCompleted
	p.StartDate = start
	p.EndDate = end
	p.IsActive = isActive
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *memIntentRepo) FailIfPending(_ context.Context, _ repository.Tx, id string, cancelFulfillment bool, adminNote string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.intents[id]
	if !ok || p.PaymentStatus != model.PaymentStatusPending {
		return false, nil
	}
	p.PaymentStatus = model.PaymentStatusFailed
	if cancelFulfillment {
		p.Fulfillment = model.FulfillmentCancelled
	}
	if adminNote != "" {
		p.AdminNote = adminNote
	}
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *memIntentRepo) CompleteIfAwaitingVerification(_ context.Context, _ repository.Tx, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.intents[id]
	if !ok || p.PaymentStatus != model.PaymentStatusAwaitingVerification {
		return false, nil
	}
	p.PaymentStatus = model.PaymentStatusCompleted
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *memIntentRepo) UpdateFulfillment(_ context.Context, _ repository.Tx, id string, upd repository.FulfillmentUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.intents[id]
	if !ok {
		return domain.ErrNotFound
	}
	if upd.Status != nil {
		p.Fulfillment = *upd.Status
	}
	if upd.AdminNote != nil {
		p.AdminNote = *upd.AdminNote
	}
	if upd.Credentials != nil {
		p.Credentials = *upd.Credentials
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memIntentRepo) ListPendingOlderThan(_ context.Context, _ repository.Tx, olderThan time.Time, limit int) ([]*model.PurchaseIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PurchaseIntent
	for _, p := range r.intents {
		if p.PaymentStatus != model.PaymentStatusPending || p.PaymentMethod != model.PaymentMethodUSSD {
			continue
		}
		if p.CreatedAt.After(olderThan) {
			continue
		}
		cp := *p
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memIntentRepo) CountActiveSubscriptions(_ context.Context, _ repository.Tx, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.intents {
		if p.ItemKind == model.ItemKindPlan && p.PaymentStatus == model.PaymentStatusCompleted && p.IsActive &&
			p.EndDate != nil && at.Before(*p.EndDate) {
			n++
		}
	}
	return n, nil
}

func (r *memIntentRepo) CountByFulfillment(_ context.Context, _ repository.Tx) (map[model.FulfillmentStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[model.FulfillmentStatus]int)
	for _, p := range r.intents {
		if p.ItemKind == model.ItemKindService {
			out[p.Fulfillment]++
		}
	}
	return out, nil
}

func (r *memIntentRepo) SumCompletedAmount(_ context.Context, _ repository.Tx) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, p := range r.intents {
		if p.PaymentStatus == model.PaymentStatusCompleted {
			sum += p.Amount
		}
	}
	return sum, nil
}

// get returns the stored record directly for assertions.
func (r *memIntentRepo) get(id string) *model.PurchaseIntent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.intents[id]
}

type memPromoRepo struct {
	mu     sync.Mutex
	byID   map[string]*model.PromoCode
	usages map[string]int
}

func newMemPromoRepo() *memPromoRepo {
	return &memPromoRepo{byID: make(map[string]*model.PromoCode), usages: make(map[string]int)}
}

func (r *memPromoRepo) Save(_ context.Context, _ repository.Tx, pc *model.PromoCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *pc
	r.byID[pc.ID] = &cp
	return nil
}

func (r *memPromoRepo) FindByCode(_ context.Context, _ repository.Tx, code string) (*model.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pc := range r.byID {
		if pc.Code == code {
			cp := *pc
			cp.UsedCount += r.usages[pc.Code]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memPromoRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pc, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *pc
	return &cp, nil
}

func (r *memPromoRepo) List(_ context.Context, _ repository.Tx) ([]*model.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PromoCode
	for _, pc := range r.byID {
		cp := *pc
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memPromoRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memPromoRepo) IncrementUsage(_ context.Context, _ repository.Tx, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pc := range r.byID {
		if pc.Code == code {
			if pc.MaxUses > 0 && pc.UsedCount+r.usages[code] >= pc.MaxUses {
				return domain.ErrPromoExhausted
			}
			r.usages[code]++
			return nil
		}
	}
	return domain.ErrPromoExhausted
}

func (r *memPromoRepo) usageCount(code string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usages[code]
}

type memPlanRepo struct {
	plans map[string]*model.ChannelPlan
}

func newMemPlanRepo(plans ...*model.ChannelPlan) *memPlanRepo {
	r := &memPlanRepo{plans: make(map[string]*model.ChannelPlan)}
	for _, p := range plans {
		r.plans[p.ID] = p
	}
	return r
}

func (r *memPlanRepo) Save(_ context.Context, _ repository.Tx, p *model.ChannelPlan) error {
	r.plans[p.ID] = p
	return nil
}

func (r *memPlanRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.ChannelPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *memPlanRepo) ListActive(_ context.Context, _ repository.Tx) ([]*model.ChannelPlan, error) {
	var out []*model.ChannelPlan
	for _, p := range r.plans {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPlanRepo) List(_ context.Context, _ repository.Tx) ([]*model.ChannelPlan, error) {
	var out []*model.ChannelPlan
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out, nil
}

func (r *memPlanRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	if _, ok := r.plans[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

type memServiceRepo struct {
	services map[string]*model.Service
}

func newMemServiceRepo(services ...*model.Service) *memServiceRepo {
	r := &memServiceRepo{services: make(map[string]*model.Service)}
	for _, s := range services {
		r.services[s.ID] = s
	}
	return r
}

func (r *memServiceRepo) Save(_ context.Context, _ repository.Tx, s *model.Service) error {
	r.services[s.ID] = s
	return nil
}

func (r *memServiceRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (r *memServiceRepo) ListActive(_ context.Context, _ repository.Tx) ([]*model.Service, error) {
	var out []*model.Service
	for _, s := range r.services {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

type memVideoRepo struct {
	videos map[string]*model.Video
	views  map[string]int
}

func newMemVideoRepo(videos ...*model.Video) *memVideoRepo {
	r := &memVideoRepo{videos: make(map[string]*model.Video), views: make(map[string]int)}
	for _, v := range videos {
		r.videos[v.ID] = v
	}
	return r
}

func (r *memVideoRepo) Save(_ context.Context, _ repository.Tx, v *model.Video) error {
	r.videos[v.ID] = v
	return nil
}

func (r *memVideoRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Video, error) {
	v, ok := r.videos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (r *memVideoRepo) ListActive(_ context.Context, _ repository.Tx, category string) ([]*model.Video, error) {
	var out []*model.Video
	for _, v := range r.videos {
		if !v.IsActive {
			continue
		}
		if category != "" && v.Category != category {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *memVideoRepo) IncrementViews(_ context.Context, _ repository.Tx, id string) error {
	if _, ok := r.videos[id]; !ok {
		return domain.ErrNotFound
	}
	r.views[id]++
	return nil
}

// fakeGateway scripts provider behavior per call.
type fakeGateway struct {
	mu          sync.Mutex
	createErr   error
	tranID      string
	network     string
	createCalls int

	statusErr    error
	status       string
	statusCalls  int
	lastPhone    string
	lastAmount   int64
	lastStatusID string
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreateTransaction(_ context.Context, phone string, amount int64, _ string) (adapter.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	g.lastPhone = phone
	g.lastAmount = amount
	if g.createErr != nil {
		return adapter.Transaction{}, g.createErr
	}
	id := g.tranID
	if id == "" {
		id = "TXN-1"
	}
	return adapter.Transaction{TranID: id, Network: g.network}, nil
}

func (g *fakeGateway) CheckStatus(_ context.Context, tranID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls++
	g.lastStatusID = tranID
	if g.statusErr != nil {
		return "", g.statusErr
	}
	return g.status, nil
}

// recordingSink captures dispatched notifications.
type recordingSink struct {
	mu    sync.Mutex
	notes []*model.Notification
}

func (s *recordingSink) Notify(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, n)
	return nil
}

func (s *recordingSink) kinds() []model.NotificationKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.NotificationKind
	for _, n := range s.notes {
		out = append(out, n.Kind)
	}
	return out
}

// busyLocker always reports contention.
type busyLocker struct{}

func (busyLocker) TryLock(context.Context, string, time.Duration) (string, error) {
	return "", domain.ErrLockBusy
}
func (busyLocker) Unlock(context.Context, string, string) error { return nil }

// recordingLocker grants every lock and remembers the keys asked for.
type recordingLocker struct {
	keys     []string
	unlocked []string
}

func (l *recordingLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, error) {
	l.keys = append(l.keys, key)
	return "tok-" + key, nil
}

func (l *recordingLocker) Unlock(_ context.Context, key, _ string) error {
	l.unlocked = append(l.unlocked, key)
	return nil
}

func activePlan(id string, price int64) *model.ChannelPlan {
	p, _ := model.NewChannelPlan(id, "Plan "+id, "monthly", price)
	return p
}

func activeService(id string, price int64) *model.Service {
	return &model.Service{
		ID:       id,
		Name:     "Service " + id,
		Price:    price,
		Currency: model.CurrencyTZS,
		IsActive: true,
	}
}

func activeVideo(id string, price int64) *model.Video {
	return &model.Video{
		ID:       id,
		Title:    "Video " + id,
		Price:    price,
		VideoURL: "https://cdn.example/" + id + ".mp4",
		IsActive: true,
	}
}

func activePromo(code string, typ model.PromoType) *model.PromoCode {
	pc, _ := model.NewPromoCode("promo-"+code, code, typ)
	return pc
}
