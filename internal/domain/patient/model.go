package patient

import "time"

// Compliance status labels shown to callers.
const (
	StatusTaken  = "Diminum"
	StatusLate   = "Terlambat"
	StatusMissed = "Tidak Diminum"
)

// Thresholds for compliance bucketing, in percent.
const (
	HighComplianceMin   = 80.0
	MediumComplianceMin = 50.0
)

// Patient is a row from the patients compatibility view: the legacy pengguna
// table exposed with English column names, a synthesized RM number and a
// single-letter gender code.
type Patient struct {
	ID        int64      `db:"id" json:"id"`
	RMNumber  string     `db:"rm_number" json:"rm_number"`
	Name      string     `db:"name" json:"name"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date"`
	Gender    string     `db:"gender" json:"gender"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Compliance is a patient joined with their consumption aggregate. Only
// monitored patients (at least one consumption record) carry one.
type Compliance struct {
	Patient
	CompliancePercentage float64 `json:"compliance_percentage"`
	TotalDoses           int     `json:"total_doses"`
	TakenDoses           int     `json:"taken_doses"`
	MedicineName         string  `json:"medicine_name"`
}

// CreateRequest is the POST /patients payload. Field names follow the
// legacy schema; birth date is an optional YYYY-MM-DD string.
type CreateRequest struct {
	Name      string  `json:"nama_lengkap"`
	BirthDate *string `json:"tanggal_lahir"`
	Gender    string  `json:"jenis_kelamin"`
	Password  string  `json:"password"`
}

// Created is the response body for a newly registered patient. Gender is the
// single-letter code the patients view derives from jenis_kelamin.
type Created struct {
	ID        int64     `json:"id"`
	RMNumber  string    `json:"rm_number"`
	Name      string    `json:"nama_lengkap"`
	Gender    string    `json:"gender"`
	CreatedAt time.Time `json:"created_at"`
}

// GenderCode maps a jenis_kelamin value to the view's single-letter code.
func GenderCode(gender string) string {
	if gender == "Perempuan" {
		return "P"
	}
	return "L"
}

// ConsumptionRecord is one entry in a patient's compliance history.
type ConsumptionRecord struct {
	ID           int64      `json:"id"`
	MedicineName string     `json:"medicine_name"`
	Percentage   float64    `json:"persentase_konsumsi"`
	Status       string     `json:"status"`
	Notes        *string    `json:"catatan"`
	ConsumedAt   *time.Time `json:"tanggal_konsumsi"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Statistics buckets monitored patients by their average compliance.
type Statistics struct {
	HighCompliance   int `json:"high_compliance"`
	MediumCompliance int `json:"medium_compliance"`
	LowCompliance    int `json:"low_compliance"`
	TotalPatients    int `json:"total_patients"`
}

// StatusLabel maps a consumption percentage to its status label.
func StatusLabel(percentage float64) string {
	switch {
	case percentage >= HighComplianceMin:
		return StatusTaken
	case percentage >= MediumComplianceMin:
		return StatusLate
	default:
		return StatusMissed
	}
}

// ListParams narrows and pages the compliance listing.
type ListParams struct {
	Search string
	Limit  int
	Offset int
}
