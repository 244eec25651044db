package registry

import (
	"time"
)

const (
	// DefaultAssetUnitName is embedded in prepared transactions unless
	// overridden by configuration.
	DefaultAssetUnitName = "SEED"
)

// RegistrationRequest is the caller-supplied input of phase one. Exactly one
// of File and Document must be set.
type RegistrationRequest struct {
	OwnerAccount string            `json:"ownerAccount"`
	File         []byte            `json:"file,omitempty"`
	Document     map[string]any    `json:"document,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// ContentReference points at content pinned in the content-addressed store.
// The CID is opaque and derived by the store; it is never synthesized
// locally.
type ContentReference struct {
	CID        string `json:"cid"`
	GatewayURL string `json:"gatewayUrl"`
}

// UnsignedTransaction is the encoded, single-use asset-creation transaction
// handed to an external wallet for signing. Its validity window expires; a
// stale transaction is rejected by the ledger at submission time.
type UnsignedTransaction struct {
	Txn       []byte `json:"txn"`
	AssetName string `json:"assetName"`
	UnitName  string `json:"unitName"`
}

// AssetCreateTxn is the canonical form of an unsigned single-unit,
// non-divisible asset-creation transaction. The wallet decodes this shape.
type AssetCreateTxn struct {
	Type        string      `json:"type"`
	Sender      string      `json:"snd"`
	Fee         uint64      `json:"fee"`
	FirstValid  uint64      `json:"fv"`
	LastValid   uint64      `json:"lv"`
	GenesisID   string      `json:"gen"`
	GenesisHash string      `json:"gh"`
	AssetParams AssetParams `json:"apar"`
}

type AssetParams struct {
	Total         uint64 `json:"t"`
	Decimals      uint32 `json:"dc"`
	DefaultFrozen bool   `json:"df"`
	UnitName      string `json:"un"`
	AssetName     string `json:"an"`
	URL           string `json:"au"`
	Manager       string `json:"m"`
}

// Event is published on the realtime channel once a registration is
// confirmed and recorded.
type Event struct {
	Type           string    `json:"type"`
	RegistrationID string    `json:"registrationId"`
	Owner          string    `json:"owner"`
	TxID           string    `json:"txId"`
	CID            string    `json:"cid"`
	Timestamp      time.Time `json:"timestamp"`
}

const (
	EventTypeConfirmed = "registration.confirmed"
)
