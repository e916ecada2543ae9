package database

import (
	"context"
	"fmt"
)

type txKey struct{}

// ExecutorFromContext returns the transaction started by InTransaction if ctx
// carries one, otherwise conn.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if tx, ok := ctx.Value(txKey{}).(Transaction); ok && tx != nil {
		return tx
	}
	return conn
}

// InTransaction runs fn with a context carrying a transaction. When ctx
// already carries one, fn joins it and the outer call decides the outcome.
// Otherwise the new transaction commits when fn returns nil and rolls back
// when it does not.
func InTransaction(ctx context.Context, conn Connection, fn func(txCtx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(Transaction); ok && tx != nil {
		return fn(ctx)
	}

	tx, err := conn.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
