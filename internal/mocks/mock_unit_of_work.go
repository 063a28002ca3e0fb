package mocks

import (
	"context"
)

// PassthroughUnitOfWork runs fn directly, for tests that drive stores which
// need no transaction.
type PassthroughUnitOfWork struct{}

func (PassthroughUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
