package medicine

import (
	"context"
	"errors"
	"strings"
)

// Service-level validation errors mapped to 400 responses by the handler.
var (
	ErrNameRequired    = errors.New("Nama obat wajib diisi")
	ErrPatientRequired = errors.New("ID pasien tidak valid")
)

// Analytics defaults for the low-compliance and most-prescribed reports.
const (
	DefaultLowThreshold   = 70.0
	DefaultAnalyticsLimit = 10
	DefaultWindowDays     = 30
	maxAnalyticsLimit     = 100
	maxWindowDays         = 365
)

// sortKeys is the whitelist of accepted sortBy values. Anything else falls
// back to the name column.
var sortKeys = map[string]bool{
	"name":       true,
	"type":       true,
	"created_at": true,
	"id":         true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the paged medicine catalog. sortBy and sortOrder are
// normalized against the whitelist before the repository sees them.
func (s *Service) List(ctx context.Context, search, typ, sortBy, sortOrder string, limit, offset int) ([]*Medicine, int, error) {
	sortBy = strings.ToLower(strings.TrimSpace(sortBy))
	if !sortKeys[sortBy] {
		sortBy = "name"
	}
	sortOrder = strings.ToUpper(strings.TrimSpace(sortOrder))
	if sortOrder != "DESC" {
		sortOrder = "ASC"
	}

	return s.repo.List(ctx, ListParams{
		Search:    strings.TrimSpace(search),
		Type:      strings.TrimSpace(typ),
		SortBy:    sortBy,
		SortOrder: sortOrder,
		Limit:     limit,
		Offset:    offset,
	})
}

func (s *Service) Get(ctx context.Context, id int64) (*Medicine, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a medicine receipt for a patient and folds the medicine
// into the durable catalog.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Created, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, ErrNameRequired
	}
	if req.PatientID <= 0 {
		return nil, ErrPatientRequired
	}
	return s.repo.Create(ctx, req)
}

// LowCompliance lists medicines whose average consumption falls under the
// threshold, worst first.
func (s *Service) LowCompliance(ctx context.Context, threshold float64, limit int) ([]*LowCompliance, error) {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultLowThreshold
	}
	if limit <= 0 || limit > maxAnalyticsLimit {
		limit = DefaultAnalyticsLimit
	}
	return s.repo.LowCompliance(ctx, threshold, limit)
}

// MostPrescribed ranks medicines by receipt volume over a trailing window.
func (s *Service) MostPrescribed(ctx context.Context, days, limit int) ([]*Prescribed, error) {
	if days <= 0 || days > maxWindowDays {
		days = DefaultWindowDays
	}
	if limit <= 0 || limit > maxAnalyticsLimit {
		limit = DefaultAnalyticsLimit
	}
	return s.repo.MostPrescribed(ctx, days, limit)
}

func (s *Service) Statistics(ctx context.Context, id int64) (*Statistics, error) {
	return s.repo.Statistics(ctx, id)
}
