package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seedora/registry"
	"github.com/seedora/registry/internal/domain"
)

const (
	ledgerTimeout = 10 * time.Second

	// validityWindow is the number of rounds a prepared transaction stays
	// submittable. Past it the node rejects the transaction rather than
	// accepting a stale one.
	validityWindow = 1000
)

// LedgerClient talks to an algod-style node over its REST API. It builds
// and encodes asset-creation transactions but never holds a key; signing
// happens in an external wallet.
type LedgerClient struct {
	client    *http.Client
	nodeURL   string
	token     string
	unitName  string
	roundWait time.Duration
}

func NewLedgerClient(nodeURL, token, unitName string) *LedgerClient {
	if unitName == "" {
		unitName = registry.DefaultAssetUnitName
	}
	return &LedgerClient{
		client:    &http.Client{Timeout: ledgerTimeout},
		nodeURL:   nodeURL,
		token:     token,
		unitName:  unitName,
		roundWait: time.Second,
	}
}

type suggestedParams struct {
	Fee         uint64 `json:"fee"`
	MinFee      uint64 `json:"min-fee"`
	GenesisID   string `json:"genesis-id"`
	GenesisHash string `json:"genesis-hash"`
	LastRound   uint64 `json:"last-round"`
}

// PrepareAssetCreate fetches fresh network parameters and builds a
// single-unit, non-divisible asset-creation transaction whose URL field is
// the content gateway URL. Parameters are re-fetched on every call; the
// validity window they carry expires.
func (c *LedgerClient) PrepareAssetCreate(ctx context.Context, owner, contentURL, assetName string) (registry.UnsignedTransaction, error) {
	sp, err := c.params(ctx)
	if err != nil {
		return registry.UnsignedTransaction{}, domain.NetworkParameterError{Cause: err}
	}

	fee := sp.Fee
	if fee < sp.MinFee {
		fee = sp.MinFee
	}

	if len(assetName) > 32 {
		assetName = assetName[:32]
	}

	txn := registry.AssetCreateTxn{
		Type:        "acfg",
		Sender:      owner,
		Fee:         fee,
		FirstValid:  sp.LastRound,
		LastValid:   sp.LastRound + validityWindow,
		GenesisID:   sp.GenesisID,
		GenesisHash: sp.GenesisHash,
		AssetParams: registry.AssetParams{
			Total:         1,
			Decimals:      0,
			DefaultFrozen: false,
			UnitName:      c.unitName,
			AssetName:     assetName,
			URL:           contentURL,
			Manager:       owner,
		},
	}

	payload, err := json.Marshal(txn)
	if err != nil {
		return registry.UnsignedTransaction{}, domain.NetworkParameterError{Cause: err}
	}

	return registry.UnsignedTransaction{
		Txn:       payload,
		AssetName: assetName,
		UnitName:  c.unitName,
	}, nil
}

func (c *LedgerClient) params(ctx context.Context) (suggestedParams, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.nodeURL+"/v2/transactions/params", nil)
	if err != nil {
		return suggestedParams{}, err
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return suggestedParams{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return suggestedParams{}, nodeError(resp)
	}

	var sp suggestedParams
	if err := json.NewDecoder(resp.Body).Decode(&sp); err != nil {
		return suggestedParams{}, fmt.Errorf("failed to decode params: %v", err)
	}
	return sp, nil
}

type submitResponse struct {
	TxID string `json:"txId"`
}

// Submit broadcasts a signed transaction and returns the network-assigned
// transaction id. Replays and stale validity windows are rejected by the
// node itself; no deduplication happens here.
func (c *LedgerClient) Submit(ctx context.Context, signed []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.nodeURL+"/v2/transactions", bytes.NewReader(signed))
	if err != nil {
		return "", domain.SubmissionError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-binary")
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", domain.SubmissionError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.SubmissionError{Cause: nodeError(resp)}
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", domain.SubmissionError{Cause: fmt.Errorf("failed to decode submit response: %v", err)}
	}
	if out.TxID == "" {
		return "", domain.SubmissionError{Cause: fmt.Errorf("submit response missing transaction id")}
	}
	return out.TxID, nil
}

type pendingResponse struct {
	ConfirmedRound uint64 `json:"confirmed-round"`
	PoolError      string `json:"pool-error"`
}

// WaitForConfirmation polls the pending-transaction endpoint up to rounds
// times. Past the bound it fails with ConfirmationTimeoutError; the caller
// may keep re-polling with the same transaction id on its own.
func (c *LedgerClient) WaitForConfirmation(ctx context.Context, txID string, rounds uint64) error {
	for i := uint64(0); i < rounds; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.roundWait):
			}
		}

		pending, err := c.pending(ctx, txID)
		if err != nil {
			return fmt.Errorf("failed to poll transaction %s: %v", txID, err)
		}
		if pending.PoolError != "" {
			return domain.SubmissionError{Cause: fmt.Errorf("transaction %s: %s", txID, pending.PoolError)}
		}
		if pending.ConfirmedRound > 0 {
			return nil
		}
	}
	return domain.ConfirmationTimeoutError{TxID: txID, Rounds: rounds}
}

func (c *LedgerClient) pending(ctx context.Context, txID string) (pendingResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.nodeURL+"/v2/transactions/pending/"+txID, nil)
	if err != nil {
		return pendingResponse{}, err
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return pendingResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pendingResponse{}, nodeError(resp)
	}

	var out pendingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return pendingResponse{}, fmt.Errorf("failed to decode pending response: %v", err)
	}
	return out, nil
}

func (c *LedgerClient) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("X-Algo-API-Token", c.token)
	}
}

func nodeError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &body); err == nil && body.Message != "" {
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, body.Message)
	}
	return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
}
