// models/connection.go
package models

import (
	"time"
)

type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "pending"
	ConnectionStatusAccepted ConnectionStatus = "accepted"
	ConnectionStatusRejected ConnectionStatus = "rejected"
)

// Connection is one directional edge requester -> addressee. An accepted
// connection is stored as two rows, one per direction; both rows must be
// status=accepted for the pair to count as connected.
type Connection struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RequesterID uint             `gorm:"not null;index;uniqueIndex:unique_connection" json:"requester_id"`
	AddresseeID uint             `gorm:"not null;index;uniqueIndex:unique_connection" json:"addressee_id"`
	Status      ConnectionStatus `gorm:"not null;default:'pending';size:10" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`

	Requester *User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Addressee *User `gorm:"foreignKey:AddresseeID" json:"addressee,omitempty"`
}

func (Connection) TableName() string {
	return "connections"
}
