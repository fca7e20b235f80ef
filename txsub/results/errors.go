package results

import (
	"fmt"
	"strings"
)

// Transaction-level result codes this layer produces locally, matching the
// vocabulary the network itself uses.
const (
	CodeTooLate = "tx_too_late"
	CodeBadAuth = "tx_bad_auth"
	CodeBadSeq  = "tx_bad_seq"
)

// FailedTransactionError represents a rejection: the network (or a local
// precheck using the network's own vocabulary) parsed the transaction but
// refused it for a business reason. The structured reason codes are
// preserved for the caller; fixing them requires changing inputs, not
// retrying.
type FailedTransactionError struct {
	TransactionCode string
	OperationCodes  []string
}

func (err *FailedTransactionError) Error() string {
	if len(err.OperationCodes) == 0 {
		return fmt.Sprintf("tx failed: %s", err.TransactionCode)
	}
	return fmt.Sprintf("tx failed: %s (operations: %s)",
		err.TransactionCode, strings.Join(err.OperationCodes, ", "))
}

// Codes returns the transaction code followed by any per-operation codes.
func (err *FailedTransactionError) Codes() []string {
	codes := make([]string, 0, 1+len(err.OperationCodes))
	if err.TransactionCode != "" {
		codes = append(codes, err.TransactionCode)
	}
	return append(codes, err.OperationCodes...)
}

// MalformedTransactionError represents an envelope that could not be
// decoded from the provided data. It never reaches the network.
type MalformedTransactionError struct {
	EnvelopeXDR string
}

func (err *MalformedTransactionError) Error() string {
	return "tx malformed"
}
