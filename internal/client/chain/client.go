package chain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"alphapicks/internal/ledger"
)

// Client is a JSON-RPC client for the ledger node.
type Client struct {
	endpoint        string
	httpClient      *http.Client
	confirmTimeout  time.Duration
	confirmInterval time.Duration
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error (%d): %s", e.Code, e.Message)
}

func NewClient(httpClient *http.Client, endpoint string, confirmTimeout, confirmInterval time.Duration) *Client {
	if endpoint == "" {
		endpoint = "http://localhost:8899"
	}
	if confirmTimeout <= 0 {
		confirmTimeout = 60 * time.Second
	}
	if confirmInterval <= 0 {
		confirmInterval = 2 * time.Second
	}
	return &Client{
		endpoint:        endpoint,
		httpClient:      httpClient,
		confirmTimeout:  confirmTimeout,
		confirmInterval: confirmInterval,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc http status %d: %s", resp.StatusCode, string(body))
	}
	var parsed rpcResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, parsed.Error
	}
	return parsed.Result, nil
}

// GetAccountData fetches the raw account payload at address.
func (c *Client) GetAccountData(ctx context.Context, address string) ([]byte, error) {
	result, err := c.call(ctx, "getAccountInfo", []any{
		address,
		map[string]any{"encoding": "base64"},
	})
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Value *struct {
			Data []string `json:"data"`
		} `json:"value"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode account info: %w", err)
	}
	if parsed.Value == nil {
		return nil, ledger.ErrAccountNotFound
	}
	if len(parsed.Value.Data) == 0 {
		return nil, fmt.Errorf("account %s has no data field", address)
	}
	data, err := base64.StdEncoding.DecodeString(parsed.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode account data: %w", err)
	}
	return data, nil
}

// SendTransaction submits a signed, base64-encoded transaction and returns
// its signature.
func (c *Client) SendTransaction(ctx context.Context, txBase64 string) (string, error) {
	result, err := c.call(ctx, "sendTransaction", []any{txBase64})
	if err != nil {
		return "", err
	}
	var signature string
	if err := json.Unmarshal(result, &signature); err != nil {
		return "", fmt.Errorf("failed to decode signature: %w", err)
	}
	return signature, nil
}

// ConfirmTransaction polls the node until the signature is finalized, errors,
// or the confirm timeout elapses.
func (c *Client) ConfirmTransaction(ctx context.Context, signature string) error {
	deadline := time.Now().Add(c.confirmTimeout)
	ticker := time.NewTicker(c.confirmInterval)
	defer ticker.Stop()
	for {
		status, err := c.signatureStatus(ctx, signature)
		if err == nil {
			switch status {
			case "confirmed", "finalized":
				return nil
			case "failed":
				return fmt.Errorf("transaction %s failed on chain", signature)
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("transaction %s not confirmed within %s", signature, c.confirmTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) signatureStatus(ctx context.Context, signature string) (string, error) {
	result, err := c.call(ctx, "getSignatureStatuses", []any{[]string{signature}})
	if err != nil {
		return "", err
	}
	var parsed struct {
		Value []*struct {
			ConfirmationStatus string          `json:"confirmationStatus"`
			Err                json.RawMessage `json:"err"`
		} `json:"value"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode signature status: %w", err)
	}
	if len(parsed.Value) == 0 || parsed.Value[0] == nil {
		return "", nil
	}
	if len(parsed.Value[0].Err) > 0 && string(parsed.Value[0].Err) != "null" {
		return "failed", nil
	}
	return parsed.Value[0].ConfirmationStatus, nil
}
