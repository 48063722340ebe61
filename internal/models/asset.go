package models

import "time"

// AssetStatus is the operational state owned by the asset registry.
type AssetStatus string

const (
	AssetAvailable    AssetStatus = "available"
	AssetInUse        AssetStatus = "in_use"
	AssetMaintenance  AssetStatus = "maintenance"
	AssetOutOfService AssetStatus = "out_of_service"
)

// Asset is the subset of the equipment record the compliance core reads.
type Asset struct {
	ID        string      `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Category  string      `db:"category" json:"category"`
	Status    AssetStatus `db:"status" json:"status"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}
