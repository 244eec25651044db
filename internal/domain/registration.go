package domain

import "time"

// Registration is the persisted outcome of a completed registration: one
// row per confirmed on-chain transaction, written exactly once.
type Registration struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	OwnerAccount string    `json:"ownerAccount"`
	CID          string    `json:"cid"`
	GatewayURL   string    `json:"gatewayUrl"`
	TxID         string    `json:"txId"`
	Name         string    `json:"name,omitempty"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category,omitempty"`
	FounderName  string    `json:"founderName,omitempty"`
	Checksum     string    `json:"checksum,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PinStatus describes the live pinning state of a registration's content,
// as reported by the content store.
type PinStatus struct {
	CID      string    `json:"cid"`
	Pinned   bool      `json:"pinned"`
	PinSize  int64     `json:"pinSize,omitempty"`
	PinnedAt time.Time `json:"pinnedAt,omitempty"`
}
