package medicine

import "time"

// Medicine is a catalog row exposed through the medicines view.
type Medicine struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Dosage      string    `json:"dosage"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateRequest carries the legacy-keyed payload for registering a medicine receipt.
type CreateRequest struct {
	PatientID int64   `json:"id_pengguna"`
	Name      string  `json:"nama_obat"`
	Type      *string `json:"jenis_obat"`
	Dosage    *string `json:"dosis"`
	Notes     *string `json:"catatan"`
}

// Created is returned after a medicine receipt has been registered. CatalogID
// points at the durable catalog row the receipt was folded into.
type Created struct {
	ID        int64     `json:"id"`
	CatalogID int64     `json:"catalog_id"`
	Name      string    `json:"nama_obat"`
	CreatedAt time.Time `json:"created_at"`
}

// LowCompliance aggregates consumption records for a medicine whose average
// compliance falls under the configured threshold.
type LowCompliance struct {
	Name              string  `json:"name"`
	AverageCompliance float64 `json:"average_compliance"`
	PatientCount      int     `json:"patient_count"`
	RecordCount       int     `json:"record_count"`
}

// Prescribed counts receipts of a medicine over a trailing window.
type Prescribed struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GenderUsage breaks down how many distinct patients of each gender received
// a medicine.
type GenderUsage struct {
	Gender string `json:"gender"`
	Count  int    `json:"count"`
}

// Statistics describes receipt volume and consumption spread for one medicine.
type Statistics struct {
	Name          string         `json:"name"`
	TotalReceipts int            `json:"total_receipts"`
	RecordCount   int            `json:"record_count"`
	MinCompliance float64        `json:"min_compliance"`
	AvgCompliance float64        `json:"avg_compliance"`
	MaxCompliance float64        `json:"max_compliance"`
	UsageByGender []*GenderUsage `json:"usage_by_gender"`
}

// ListParams narrows and orders the medicine list. SortBy and SortOrder are
// validated by the service before reaching the repository.
type ListParams struct {
	Search    string
	Type      string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}
