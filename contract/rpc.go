package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-errors/errors"
)

// The contract RPC endpoint speaks JSON-RPC 2.0. Only the two methods this
// layer needs are wired: getHealth as the construction-time reachability
// probe and simulateTransaction for queries and envelope materialization.

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type simulateRequest struct {
	Transaction string `json:"transaction"`
}

type simulateResult struct {
	XDR  string   `json:"xdr"`
	Auth []string `json:"auth"`
}

type simulateResponse struct {
	TransactionData string           `json:"transactionData"`
	MinResourceFee  string           `json:"minResourceFee"`
	Results         []simulateResult `json:"results"`
	LatestLedger    uint32           `json:"latestLedger"`
	Error           string           `json:"error,omitempty"`
}

func (c *Client) doRPC(ctx context.Context, method string, params, out interface{}) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return errors.Wrap(err, 1)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, 1)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, 1)
	}
	defer resp.Body.Close()

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return errors.Wrap(err, 1)
	}
	if envelope.Error != nil {
		return errors.Errorf("rpc %s: %s (code %d)", method, envelope.Error.Message, envelope.Error.Code)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return errors.Wrap(err, 1)
		}
	}
	return nil
}
