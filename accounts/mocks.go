package accounts

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type ResolverMock struct {
	mock.Mock
}

func (m *ResolverMock) Resolve(ctx context.Context, address string) (*LedgerAccount, error) {
	a := m.Called(ctx, address)
	if a.Get(0) == nil {
		return nil, a.Error(1)
	}
	return a.Get(0).(*LedgerAccount), a.Error(1)
}
