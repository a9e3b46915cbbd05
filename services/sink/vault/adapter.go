package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kushwahaamar-dev/sentinel/services"
)

// Config holds the vault sink configuration
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Adapter submits disbursements to the vault transactor service over
// HTTP. The transactor owns the signing key; this process never sees
// it. Every submission is single-shot: a transport failure after the
// request left this process may still have moved funds, so the caller
// records the failure instead of resubmitting.
type Adapter struct {
	config     Config
	httpClient *http.Client
}

// New creates a new vault sink adapter
func New(config Config) *Adapter {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the sink name
func (a *Adapter) Name() string {
	return "vault"
}

// Disburse submits one payout and returns the transaction hash. The
// request is never resubmitted; any failure is terminal for this run.
func (a *Adapter) Disburse(ctx context.Context, toAddress string, amountUnits int64, reason string) (string, error) {
	reqBody, err := json.Marshal(disburseRequest{
		To:          toAddress,
		AmountUnits: amountUnits,
		Reason:      reason,
	})
	if err != nil {
		return "", services.WrapInternal("failed to marshal disbursement request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.Endpoint+"/disburse", strings.NewReader(string(reqBody)))
	if err != nil {
		return "", services.WrapInternal("failed to create disbursement request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", services.WrapExternal("vault request failed", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", services.WrapExternal("failed to read vault response", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", services.NewDomainError(services.ErrorTypeExternal,
			fmt.Sprintf("vault returned HTTP %d", httpResp.StatusCode), nil).
			WithDetail("body", strings.TrimSpace(string(respBody)))
	}

	var resp disburseResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", services.WrapExternal("failed to parse vault response", err)
	}
	if resp.TxHash == "" {
		return "", services.WrapExternal("vault response missing tx_hash", nil)
	}

	return resp.TxHash, nil
}

// Vault request/response types

type disburseRequest struct {
	To          string `json:"to"`
	AmountUnits int64  `json:"amount_units"`
	Reason      string `json:"reason"`
}

type disburseResponse struct {
	TxHash string `json:"tx_hash"`
}
