package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// NoTX marks the non-transactional path. Repositories accept it (or nil) and
// fall back to the pool.
var NoTX Tx

// TransactionManager runs fn inside a store transaction, passing the handle
// through the Tx argument so use-case interfaces stay free of driver types.
// The concrete type of the handle is infra-defined (pgx.Tx for Postgres).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
