package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"inet-marketplace/internal/domain"
	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/repository"
)

var _ repository.PromoCodeRepository = (*promoRepo)(nil)

type promoRepo struct{ pool *pgxpool.Pool }

func NewPromoRepo(pool *pgxpool.Pool) *promoRepo {
	return &promoRepo{pool: pool}
}

const promoColumns = `id, code, description, promo_type, discount_percent, fixed_amount, free_access_days,
max_uses, used_count, max_uses_per_user, valid_from, valid_until, is_active, created_at, updated_at`

func scanPromo(row pgx.Row) (*model.PromoCode, error) {
	pc := &model.PromoCode{}
	err := row.Scan(
		&pc.ID, &pc.Code, &pc.Description, &pc.Type, &pc.DiscountPercent, &pc.FixedAmount, &pc.FreeAccessDays,
		&pc.MaxUses, &pc.UsedCount, &pc.MaxUsesPerUser, &pc.ValidFrom, &pc.ValidUntil, &pc.IsActive, &pc.CreatedAt, &pc.UpdatedAt,
	)
	if err != nil {
		return nil, scanErr(err)
	}
	return pc, nil
}

func (r *promoRepo) Save(ctx context.Context, tx repository.Tx, pc *model.PromoCode) error {
	const q = `
INSERT INTO promo_codes (` + promoColumns + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
) ON CONFLICT (id) DO UPDATE SET
  code=$2, description=$3, promo_type=$4, discount_percent=$5, fixed_amount=$6, free_access_days=$7,
  max_uses=$8, max_uses_per_user=$10, valid_from=$11, valid_until=$12, is_active=$13, updated_at=$15;`

	_, err := execSQL(ctx, r.pool, tx, q,
		pc.ID, pc.Code, pc.Description, pc.Type, pc.DiscountPercent, pc.FixedAmount, pc.FreeAccessDays,
		pc.MaxUses, pc.UsedCount, pc.MaxUsesPerUser, pc.ValidFrom, pc.ValidUntil, pc.IsActive, pc.CreatedAt, pc.UpdatedAt)
	if err != nil {
		return writeErr(err)
	}
	return nil
}

func (r *promoRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	const q = `SELECT ` + promoColumns + ` FROM promo_codes WHERE code=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanPromo(row)
}

func (r *promoRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PromoCode, error) {
	const q = `SELECT ` + promoColumns + ` FROM promo_codes WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPromo(row)
}

func (r *promoRepo) List(ctx context.Context, tx repository.Tx) ([]*model.PromoCode, error) {
	const q = `SELECT ` + promoColumns + ` FROM promo_codes ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, writeErr(err)
	}
	defer rows.Close()

	var out []*model.PromoCode
	for rows.Next() {
		pc, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, nil
}

func (r *promoRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	cmd, err := execSQL(ctx, r.pool, tx, `DELETE FROM promo_codes WHERE id=$1;`, id)
	if err != nil {
		return writeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementUsage bumps the counter in the database, not in application
// code, so concurrent redemptions never lose increments. The WHERE clause
// keeps used_count within max_uses even when racing redemptions all
// validated before any of them incremented; max_uses = 0 means unlimited.
// A code deleted mid-redemption also matches zero rows and counts as
// exhausted.
func (r *promoRepo) IncrementUsage(ctx context.Context, tx repository.Tx, code string) error {
	const q = `
UPDATE promo_codes SET used_count = used_count + 1, updated_at=NOW()
WHERE code=$1 AND (max_uses = 0 OR used_count < max_uses);`
	cmd, err := execSQL(ctx, r.pool, tx, q, code)
	if err != nil {
		return writeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrPromoExhausted
	}
	return nil
}
