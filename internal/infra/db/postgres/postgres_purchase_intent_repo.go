package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"inet-marketplace/internal/domain"
	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/repository"
)

var _ repository.PurchaseIntentRepository = (*purchaseIntentRepo)(nil)

// CredentialCipher encrypts the credential columns at rest. Nil disables
// encryption; existing plaintext rows keep working because empty strings
// pass through unchanged.
type CredentialCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encoded string) (string, error)
}

type IntentRepoOption func(*purchaseIntentRepo)

func WithCredentialCipher(c CredentialCipher) IntentRepoOption {
	return func(r *purchaseIntentRepo) { r.creds = c }
}

type purchaseIntentRepo struct {
	pool  *pgxpool.Pool
	creds CredentialCipher
}

func NewPurchaseIntentRepo(pool *pgxpool.Pool, opts ...IntentRepoOption) *purchaseIntentRepo {
	r := &purchaseIntentRepo{pool: pool}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *purchaseIntentRepo) sealCreds(c model.Credentials) (model.Credentials, error) {
	if r.creds == nil {
		return c, nil
	}
	var err error
	if c.Password, err = r.creds.Encrypt(c.Password); err != nil {
		return c, err
	}
	if c.AccountDetails, err = r.creds.Encrypt(c.AccountDetails); err != nil {
		return c, err
	}
	return c, nil
}

func (r *purchaseIntentRepo) openCreds(p *model.PurchaseIntent) error {
	if r.creds == nil {
		return nil
	}
	var err error
	if p.Credentials.Password, err = r.creds.Decrypt(p.Credentials.Password); err != nil {
		return err
	}
	if p.Credentials.AccountDetails, err = r.creds.Decrypt(p.Credentials.AccountDetails); err != nil {
		return err
	}
	return nil
}

const intentColumns = `id, user_id, item_kind, item_id, item_name, base_price, amount, discount, currency,
promo_code, duration_days, payment_method, transaction_id, network, phone_number, payment_proof,
payment_status, start_date, end_date, is_active, fulfillment, cred_username, cred_password,
cred_account_details, admin_note, created_at, updated_at`

func (r *purchaseIntentRepo) scanIntent(row pgx.Row) (*model.PurchaseIntent, error) {
	p := &model.PurchaseIntent{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.ItemKind, &p.ItemID, &p.ItemName, &p.BasePrice, &p.Amount, &p.Discount, &p.Currency,
		&p.PromoCode, &p.DurationDays, &p.PaymentMethod, &p.TransactionID, &p.Network, &p.PhoneNumber, &p.PaymentProof,
		&p.PaymentStatus, &p.StartDate, &p.EndDate, &p.IsActive, &p.Fulfillment, &p.Credentials.Username, &p.Credentials.Password,
		&p.Credentials.AccountDetails, &p.AdminNote, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, scanErr(err)
	}
	if err := r.openCreds(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *purchaseIntentRepo) Save(ctx context.Context, tx repository.Tx, p *model.PurchaseIntent) error {
	const q = `
INSERT INTO purchase_intents (` + intentColumns + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27
) ON CONFLICT (id) DO UPDATE SET
  item_name=$5, base_price=$6, amount=$7, discount=$8, currency=$9, promo_code=$10, duration_days=$11,
  payment_method=$12, transaction_id=$13, network=$14, phone_number=$15, payment_proof=$16,
  payment_status=$17, start_date=$18, end_date=$19, is_active=$20, fulfillment=$21,
  cred_username=$22, cred_password=$23, cred_account_details=$24, admin_note=$25, updated_at=$27;`

	creds, err := r.sealCreds(p.Credentials)
	if err != nil {
		return err
	}
	_, err = execSQL(ctx, r.pool, tx, q,
		p.ID, p.UserID, p.ItemKind, p.ItemID, p.ItemName, p.BasePrice, p.Amount, p.Discount, p.Currency,
		p.PromoCode, p.DurationDays, p.PaymentMethod, p.TransactionID, p.Network, p.PhoneNumber, p.PaymentProof,
		p.PaymentStatus, p.StartDate, p.EndDate, p.IsActive, p.Fulfillment, creds.Username, creds.Password,
		creds.AccountDetails, p.AdminNote, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return writeErr(err)
	}
	return nil
}

func (r *purchaseIntentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PurchaseIntent, error) {
	q := `SELECT ` + intentColumns + ` FROM purchase_intents WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return r.scanIntent(row)
}

func (r *purchaseIntentRepo) FindByIDAndUser(ctx context.Context, tx repository.Tx, id, userID string) (*model.PurchaseIntent, error) {
	const q = `SELECT ` + intentColumns + ` FROM purchase_intents WHERE id=$1 AND user_id=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, id, userID)
	if err != nil {
		return nil, err
	}
	return r.scanIntent(row)
}

func (r *purchaseIntentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, kind model.ItemKind) ([]*model.PurchaseIntent, error) {
	q := `SELECT ` + intentColumns + ` FROM purchase_intents WHERE user_id=$1`
	args := []interface{}{userID}
	if kind != "" {
		q += ` AND item_kind=$2`
		args = append(args, kind)
	}
	q += ` ORDER BY created_at DESC;`

	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, writeErr(err)
	}
	defer rows.Close()
	return r.collectIntents(rows)
}

func (r *purchaseIntentRepo) FindCompletedUnlock(ctx context.Context, tx repository.Tx, userID string, kind model.ItemKind, itemID string) (*model.PurchaseIntent, error) {
	const q = `SELECT ` + intentColumns + ` FROM purchase_intents
 WHERE user_id=$1 AND item_kind=$2 AND item_id=$3 AND payment_status='completed'
 ORDER BY created_at DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, kind, itemID)
	if err != nil {
		return nil, err
	}
	return r.scanIntent(row)
}

func (r *purchaseIntentRepo) FindActiveSubscription(ctx context.Context, tx repository.Tx, userID string, at time.Time) (*model.PurchaseIntent, error) {
	const q = `SELECT ` + intentColumns + ` FROM purchase_intents
 WHERE user_id=$1 AND item_kind='plan' AND payment_status='completed'
   AND is_active AND end_date IS NOT NULL AND end_date > $2
 ORDER BY end_date DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, at)
	if err != nil {
		return nil, err
	}
	return r.scanIntent(row)
}

func (r *purchaseIntentRepo) CountCompletedByUserAndPromo(ctx context.Context, tx repository.Tx, userID, code string) (int, error) {
	const q = `SELECT COUNT(*) FROM purchase_intents
 WHERE user_id=$1 AND promo_code=$2 AND payment_status='completed';`
	row, err := pickRow(ctx, r.pool, tx, q, userID, code)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

// CompleteIfPending is the single guard against double entitlement grants:
// the WHERE clause only matches a still-pending row, and RowsAffected
// reports whether this caller won the transition.
func (r *purchaseIntentRepo) CompleteIfPending(ctx context.Context, tx repository.Tx, id string, start, end *time.Time, isActive bool) (bool, error) {
	const q = `
UPDATE purchase_intents
   SET payment_status='completed',
       start_date=$2,
       end_date=$3,
       is_active=$4,
       updated_at=NOW()
 WHERE id=$1
   AND payment_status='pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, start, end, isActive)
	if err != nil {
		return false, writeErr(err)
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *purchaseIntentRepo) FailIfPending(ctx context.Context, tx repository.Tx, id string, cancelFulfillment bool, adminNote string) (bool, error) {
	const q = `
UPDATE purchase_intents
   SET payment_status='failed',
       fulfillment=CASE WHEN $2 THEN 'cancelled' ELSE fulfillment END,
       admin_note=CASE WHEN $3 <> '' THEN $3 ELSE admin_note END,
       updated_at=NOW()
 WHERE id=$1
   AND payment_status='pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, cancelFulfillment, adminNote)
	if err != nil {
		return false, writeErr(err)
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *purchaseIntentRepo) CompleteIfAwaitingVerification(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	const q = `
UPDATE purchase_intents
   SET payment_status='completed',
       updated_at=NOW()
 WHERE id=$1
   AND payment_status='awaiting_verification';`

	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return false, writeErr(err)
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *purchaseIntentRepo) UpdateFulfillment(ctx context.Context, tx repository.Tx, id string, upd repository.FulfillmentUpdate) error {
	const q = `
UPDATE purchase_intents
   SET fulfillment=COALESCE($2, fulfillment),
       admin_note=COALESCE($3, admin_note),
       cred_username=COALESCE($4, cred_username),
       cred_password=COALESCE($5, cred_password),
       cred_account_details=COALESCE($6, cred_account_details),
       updated_at=NOW()
 WHERE id=$1;`

	var status *string
	if upd.Status != nil {
		s := string(*upd.Status)
		status = &s
	}
	var username, password, details *string
	if upd.Credentials != nil {
		sealed, err := r.sealCreds(*upd.Credentials)
		if err != nil {
			return err
		}
		username, password, details = &sealed.Username, &sealed.Password, &sealed.AccountDetails
	}
	cmd, err := execSQL(ctx, r.pool, tx, q, id, status, upd.AdminNote, username, password, details)
	if err != nil {
		return writeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *purchaseIntentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PurchaseIntent, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + intentColumns + ` FROM purchase_intents
 WHERE payment_status='pending' AND payment_method='ussd' AND created_at < $1
 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		return nil, writeErr(err)
	}
	defer rows.Close()
	return r.collectIntents(rows)
}

func (r *purchaseIntentRepo) CountActiveSubscriptions(ctx context.Context, tx repository.Tx, at time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM purchase_intents
 WHERE item_kind='plan' AND payment_status='completed' AND is_active
   AND end_date IS NOT NULL AND end_date > $1;`
	row, err := pickRow(ctx, r.pool, tx, q, at)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *purchaseIntentRepo) CountByFulfillment(ctx context.Context, tx repository.Tx) (map[model.FulfillmentStatus]int, error) {
	const q = `SELECT fulfillment, COUNT(*) FROM purchase_intents
 WHERE item_kind='service' GROUP BY fulfillment;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, writeErr(err)
	}
	defer rows.Close()

	out := make(map[model.FulfillmentStatus]int)
	for rows.Next() {
		var status model.FulfillmentStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[status] = n
	}
	return out, nil
}

func (r *purchaseIntentRepo) SumCompletedAmount(ctx context.Context, tx repository.Tx) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount),0) FROM purchase_intents WHERE payment_status='completed';`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func (r *purchaseIntentRepo) collectIntents(rows pgx.Rows) ([]*model.PurchaseIntent, error) {
	var out []*model.PurchaseIntent
	for rows.Next() {
		p, err := r.scanIntent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
