package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/seedora/registry"
	"github.com/seedora/registry/internal/domain"
)

const (
	pinTimeout     = 30 * time.Second
	statusCacheTTL = 10 * time.Minute
)

// PinningClient talks to a Pinata-style pinning API over HTTPS with an API
// key pair. Pinned content is publicly retrievable at the composed gateway
// URL immediately on success; there is no unpin operation here.
type PinningClient struct {
	client      *http.Client
	cache       *cache.Cache
	endpoint    string
	gatewayBase string
	apiKey      string
	apiSecret   string
}

func NewPinningClient(endpoint, gatewayBase, apiKey, apiSecret string) *PinningClient {
	return &PinningClient{
		client:      &http.Client{Timeout: pinTimeout},
		cache:       cache.New(statusCacheTTL, 15*time.Minute),
		endpoint:    endpoint,
		gatewayBase: gatewayBase,
		apiKey:      apiKey,
		apiSecret:   apiSecret,
	}
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func (c *PinningClient) StoreFile(ctx context.Context, name string, data []byte, metadata map[string]string) (registry.ContentReference, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return registry.ContentReference{}, domain.StorageError{Cause: err}
	}
	if _, err := part.Write(data); err != nil {
		return registry.ContentReference{}, domain.StorageError{Cause: err}
	}

	if err := writePinMetadata(w, name, metadata); err != nil {
		return registry.ContentReference{}, domain.StorageError{Cause: err}
	}

	if err := w.Close(); err != nil {
		return registry.ContentReference{}, domain.StorageError{Cause: err}
	}

	return c.pin(ctx, "/pinning/pinFileToIPFS", w.FormDataContentType(), body)
}

func (c *PinningClient) StoreJSON(ctx context.Context, doc map[string]any, metadata map[string]string) (registry.ContentReference, error) {
	payload := map[string]any{
		"pinataContent": doc,
	}
	if len(metadata) > 0 {
		payload["pinataMetadata"] = map[string]any{
			"keyvalues": metadata,
		}
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return registry.ContentReference{}, domain.StorageError{Cause: err}
	}

	return c.pin(ctx, "/pinning/pinJSONToIPFS", "application/json", bytes.NewReader(encoded))
}

func (c *PinningClient) pin(ctx context.Context, path, contentType string, body io.Reader) (registry.ContentReference, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, body)
	if err != nil {
		return registry.ContentReference{}, domain.StorageError{Cause: err}
	}
	req.Header.Set("Content-Type", contentType)
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return registry.ContentReference{}, domain.StorageError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return registry.ContentReference{}, domain.StorageError{Cause: apiError(resp)}
	}

	var out pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return registry.ContentReference{}, domain.StorageError{Cause: fmt.Errorf("failed to decode pin response: %v", err)}
	}
	if out.IpfsHash == "" {
		return registry.ContentReference{}, domain.StorageError{Cause: fmt.Errorf("pin response missing content hash")}
	}

	return registry.ContentReference{
		CID:        out.IpfsHash,
		GatewayURL: registry.ComposeGatewayURL(c.gatewayBase, out.IpfsHash),
	}, nil
}

type pinListResponse struct {
	Count int `json:"count"`
	Rows  []struct {
		IpfsPinHash string    `json:"ipfs_pin_hash"`
		Size        int64     `json:"size"`
		DatePinned  time.Time `json:"date_pinned"`
	} `json:"rows"`
}

// Status reports the live pin state for a CID. Results are cached; the pin
// state is advisory, not authoritative.
func (c *PinningClient) Status(ctx context.Context, cid string) (domain.PinStatus, error) {
	cacheKey := "pin:" + cid
	if x, found := c.cache.Get(cacheKey); found {
		return x.(domain.PinStatus), nil
	}

	q := url.Values{}
	q.Set("hashContains", cid)
	q.Set("status", "pinned")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/data/pinList?"+q.Encode(), nil)
	if err != nil {
		return domain.PinStatus{}, err
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.PinStatus{}, fmt.Errorf("failed to query pin list: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.PinStatus{}, apiError(resp)
	}

	var out pinListResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.PinStatus{}, fmt.Errorf("failed to decode pin list: %v", err)
	}

	status := domain.PinStatus{CID: cid}
	for _, row := range out.Rows {
		if row.IpfsPinHash == cid {
			status.Pinned = true
			status.PinSize = row.Size
			status.PinnedAt = row.DatePinned
			break
		}
	}

	c.cache.Set(cacheKey, status, cache.DefaultExpiration)
	return status, nil
}

func (c *PinningClient) setAuth(req *http.Request) {
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.apiSecret)
}

func writePinMetadata(w *multipart.Writer, name string, metadata map[string]string) error {
	meta := map[string]any{"name": name}
	if len(metadata) > 0 {
		meta["keyvalues"] = metadata
	}
	encoded, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return w.WriteField("pinataMetadata", string(encoded))
}

func apiError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &body); err == nil && body.Error != "" {
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
}
