// Package txsub submits signed envelopes to the network and classifies
// every outcome. Submission is terminal: once an envelope is sent, the
// result is determined by the network's finality and is never retried
// here. No outcome is ever only logged; Submit always returns exactly one
// classified result.
package txsub

import (
	"context"
	"time"

	"github.com/rcrowley/go-metrics"

	"github.com/lumenride/gateway/txsub/results"
)

// SubmissionStatus discriminates the three terminal outcomes of a
// submission.
type SubmissionStatus int

const (
	// StatusSuccess: the network included the transaction.
	StatusSuccess SubmissionStatus = iota
	// StatusRejected: the network parsed the transaction but refused it
	// for a business reason. Retrying without changing inputs is useless.
	StatusRejected
	// StatusTransportFailure: the request itself could not be completed.
	// Retrying with backoff is reasonable.
	StatusTransportFailure
)

func (s SubmissionStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRejected:
		return "rejected"
	default:
		return "transport_failure"
	}
}

// SubmissionResult is the single terminal value produced per submission.
// Exactly one of Hash, Rejection, Cause is populated, per Status.
type SubmissionResult struct {
	Status SubmissionStatus
	// Hash is the network hash of the included transaction.
	Hash string
	// Rejection carries the structured reason codes on StatusRejected.
	Rejection *results.FailedTransactionError
	// Cause is the transport-level failure on StatusTransportFailure.
	Cause error
	// Duration measures the full Submit call.
	Duration time.Duration
}

func (r SubmissionResult) IsSuccess() bool {
	return r.Status == StatusSuccess
}

// Err renders the non-success outcomes as an error, nil on success.
func (r SubmissionResult) Err() error {
	switch r.Status {
	case StatusRejected:
		return r.Rejection
	case StatusTransportFailure:
		return r.Cause
	default:
		return nil
	}
}

func success(hash string) SubmissionResult {
	return SubmissionResult{Status: StatusSuccess, Hash: hash}
}

func rejected(rejection *results.FailedTransactionError) SubmissionResult {
	return SubmissionResult{Status: StatusRejected, Rejection: rejection}
}

func transportFailure(cause error) SubmissionResult {
	return SubmissionResult{Status: StatusTransportFailure, Cause: cause}
}

type SubmitterInterface interface {
	Submit(ctx context.Context, signedEnvelope string) SubmissionResult
}

// MetricsProvider is implemented by submitters that track outcome
// metrics.
type MetricsProvider interface {
	Metrics() *Metrics
}

// Metrics tracks submission outcomes for the embedding application.
type Metrics struct {
	// SubmissionTimer exposes timing metrics for the full submission
	// round trip.
	SubmissionTimer metrics.Timer
	// SuccessfulSubmissionsMeter tracks the rate of included
	// transactions.
	SuccessfulSubmissionsMeter metrics.Meter
	// RejectedSubmissionsMeter tracks the rate of business rejections.
	RejectedSubmissionsMeter metrics.Meter
	// FailedSubmissionsMeter tracks the rate of transport failures.
	FailedSubmissionsMeter metrics.Meter
}

func newMetrics() *Metrics {
	return &Metrics{
		SubmissionTimer:            metrics.NewTimer(),
		SuccessfulSubmissionsMeter: metrics.NewMeter(),
		RejectedSubmissionsMeter:   metrics.NewMeter(),
		FailedSubmissionsMeter:     metrics.NewMeter(),
	}
}

func (m *Metrics) update(result SubmissionResult) {
	m.SubmissionTimer.Update(result.Duration)
	switch result.Status {
	case StatusSuccess:
		m.SuccessfulSubmissionsMeter.Mark(1)
	case StatusRejected:
		m.RejectedSubmissionsMeter.Mark(1)
	case StatusTransportFailure:
		m.FailedSubmissionsMeter.Mark(1)
	}
}
