package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seedora/registry/internal/domain"
)

func newTestPinning(t *testing.T, handler http.HandlerFunc) *PinningClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewPinningClient(server.URL, "https://gateway.test", "key", "secret")
}

func TestStoreFile(t *testing.T) {
	var gotKey, gotSecret, gotFileName string
	var gotBytes []byte
	client := newTestPinning(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pinning/pinFileToIPFS" {
			http.NotFound(w, r)
			return
		}
		gotKey = r.Header.Get("pinata_api_key")
		gotSecret = r.Header.Get("pinata_secret_api_key")

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
		} else {
			gotFileName = header.Filename
			gotBytes, _ = io.ReadAll(file)
			file.Close()
		}

		json.NewEncoder(w).Encode(map[string]any{
			"IpfsHash": "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
			"PinSize":  2048,
		})
	})

	ref, err := client.StoreFile(context.Background(), "pitch.pdf", []byte("pitch content"), map[string]string{"category": "fintech"})
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}

	if gotKey != "key" || gotSecret != "secret" {
		t.Fatalf("expected key-pair headers, got %q / %q", gotKey, gotSecret)
	}
	if gotFileName != "pitch.pdf" || string(gotBytes) != "pitch content" {
		t.Fatalf("file part did not round-trip: %q %q", gotFileName, gotBytes)
	}
	if ref.CID != "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG" {
		t.Fatalf("unexpected cid %q", ref.CID)
	}
	if ref.GatewayURL != "https://gateway.test/ipfs/"+ref.CID {
		t.Fatalf("unexpected gateway url %q", ref.GatewayURL)
	}
}

func TestStoreFileUpstreamFailure(t *testing.T) {
	client := newTestPinning(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
	})

	_, err := client.StoreFile(context.Background(), "pitch.pdf", []byte("x"), nil)
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestStoreFileMissingHash(t *testing.T) {
	client := newTestPinning(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"PinSize": 1})
	})

	_, err := client.StoreFile(context.Background(), "pitch.pdf", []byte("x"), nil)
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected storage error for missing hash, got %v", err)
	}
}

func TestStoreJSON(t *testing.T) {
	var gotPayload map[string]any
	client := newTestPinning(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pinning/pinJSONToIPFS" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"IpfsHash": "QmDocHash"})
	})

	ref, err := client.StoreJSON(context.Background(),
		map[string]any{"title": "Demo"},
		map[string]string{"category": "fintech"})
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if ref.CID != "QmDocHash" {
		t.Fatalf("unexpected cid %q", ref.CID)
	}

	if _, ok := gotPayload["pinataContent"]; !ok {
		t.Fatalf("expected pinataContent wrapper, got %v", gotPayload)
	}
	meta, _ := gotPayload["pinataMetadata"].(map[string]any)
	if meta == nil || meta["keyvalues"] == nil {
		t.Fatalf("expected metadata keyvalues, got %v", gotPayload)
	}
}

func TestStatus(t *testing.T) {
	hits := 0
	client := newTestPinning(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/data/pinList" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("hashContains"); got != "QmPinned" {
			t.Errorf("unexpected hash filter %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"count": 1,
			"rows": []map[string]any{
				{"ipfs_pin_hash": "QmPinned", "size": 2048},
			},
		})
	})

	status, err := client.Status(context.Background(), "QmPinned")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !status.Pinned || status.PinSize != 2048 {
		t.Fatalf("unexpected status %+v", status)
	}

	// Second lookup is served from cache.
	if _, err := client.Status(context.Background(), "QmPinned"); err != nil {
		t.Fatalf("cached status failed: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected one upstream hit, got %d", hits)
	}
}

func TestStatusNotPinned(t *testing.T) {
	client := newTestPinning(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"count": 0, "rows": []any{}})
	})

	status, err := client.Status(context.Background(), "QmMissing")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.Pinned {
		t.Fatalf("expected unpinned status, got %+v", status)
	}
}
