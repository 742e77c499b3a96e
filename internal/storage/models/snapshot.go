// internal/storage/models/snapshot.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// Snapshot is one saved fetch.
type Snapshot struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	FetchedAt time.Time `gorm:"index;not null"`
	Count     int       `gorm:"not null"`
	CreatedAt time.Time
}

// VaultRecord is one vault of a snapshot. Metric columns keep the raw upstream
// value as JSON so strings like "$1,000" survive a round trip.
type VaultRecord struct {
	ID         uint        `gorm:"primarykey"`
	SnapshotID string      `gorm:"index;not null;type:varchar(36)"`
	Position   int         `gorm:"not null"`
	VaultID    string      `gorm:"not null"`
	Name       string      `gorm:"not null"`
	Chain      string      `gorm:"index"`
	Assets     StringList  `gorm:"type:text"`
	APY        vault.Value `gorm:"type:text"`
	Daily      vault.Value `gorm:"type:text"`
	TVL        vault.Value `gorm:"type:text"`
	Tags       StringList  `gorm:"type:text"`
	Category   string
}

// NewVaultRecord maps v onto a row of snapshotID.
func NewVaultRecord(snapshotID string, position int, v vault.Vault) VaultRecord {
	return VaultRecord{
		SnapshotID: snapshotID,
		Position:   position,
		VaultID:    v.ID,
		Name:       v.Name,
		Chain:      v.Chain,
		Assets:     StringList(v.Assets),
		APY:        v.APY,
		Daily:      v.Daily,
		TVL:        v.TVL,
		Tags:       StringList(v.Tags),
		Category:   v.Category,
	}
}

// Vault converts the row back.
func (r VaultRecord) Vault() vault.Vault {
	return vault.Vault{
		ID:       r.VaultID,
		Name:     r.Name,
		Chain:    r.Chain,
		Assets:   []string(r.Assets),
		APY:      r.APY,
		Daily:    r.Daily,
		TVL:      r.TVL,
		Tags:     []string(r.Tags),
		Category: r.Category,
	}
}

// StringList is stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var data []byte
	switch s := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		data = []byte(s)
	case []byte:
		data = s
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	if len(out) == 0 {
		out = nil
	}
	*l = out
	return nil
}
