package txsub

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type SubmitterMock struct {
	mock.Mock
}

func (m *SubmitterMock) Submit(ctx context.Context, signedEnvelope string) SubmissionResult {
	a := m.Called(ctx, signedEnvelope)
	return a.Get(0).(SubmissionResult)
}
