package models

import (
	"time"
)

type Registration struct {
	ID           string    `json:"id" gorm:"primaryKey;type:text"`
	OwnerID      string    `json:"ownerId" gorm:"type:text;index"`
	OwnerAccount string    `json:"ownerAccount" gorm:"type:text;index"`
	CID          string    `json:"cid" gorm:"type:text;index"`
	GatewayURL   string    `json:"gatewayUrl" gorm:"type:text"`
	TxID         string    `json:"txId" gorm:"type:text;uniqueIndex:registration_tx_id"`
	Name         string    `json:"name" gorm:"type:text"`
	Description  string    `json:"description" gorm:"type:text"`
	Category     string    `json:"category" gorm:"type:text"`
	FounderName  string    `json:"founderName" gorm:"type:text"`
	Checksum     string    `json:"checksum" gorm:"type:text"`
	CDate        time.Time `json:"cdate" gorm:"<-:create;not null;index"`
}
