package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle passed through repository methods.
// The concrete type is infra-defined (pgx.Tx for Postgres); repositories
// must accept nil and fall back to the non-transactional path.
type Tx interface{}

// NoTX marks the non-transactional call path.
var NoTX Tx

// TransactionManager runs fn inside a database transaction, handing the
// tx handle to fn so repository calls within it share one transaction.
// fn returning an error rolls the transaction back.
//
// Kept deliberately small: use-case interfaces stay clean of storage
// types, while repositories can detect a tx handle and run conditional
// updates under it.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
