package patient

import (
	"context"
	"errors"
	"strings"
)

// ErrNameRequired is returned when a create request has no patient name.
var ErrNameRequired = errors.New("Nama pasien wajib diisi")

// Registration defaults carried over from the legacy system.
const (
	DefaultGender   = "Laki-Laki"
	DefaultPassword = "defaultpassword123"
)

// historyLimit caps the compliance history at the most recent records.
const historyLimit = 30

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListCompliance returns the paged compliance listing. Search is matched
// against patient name and RM number; surrounding whitespace is ignored.
func (s *Service) ListCompliance(ctx context.Context, search string, limit, offset int) ([]*Compliance, int, error) {
	return s.repo.ListCompliance(ctx, ListParams{
		Search: strings.TrimSpace(search),
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Service) GetCompliance(ctx context.Context, id int64) (*Compliance, error) {
	return s.repo.GetCompliance(ctx, id)
}

// Create registers a patient. Name is required; gender and password fall
// back to the legacy defaults when omitted.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Created, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	gender := req.Gender
	if gender == "" {
		gender = DefaultGender
	}
	password := req.Password
	if password == "" {
		password = DefaultPassword
	}

	return s.repo.Create(ctx, name, password, gender, req.BirthDate)
}

// ConsumptionHistory returns the patient's most recent consumption records
// with status labels applied.
func (s *Service) ConsumptionHistory(ctx context.Context, id int64) ([]*ConsumptionRecord, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	records, err := s.repo.ConsumptionHistory(ctx, id, historyLimit)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		rec.Status = StatusLabel(rec.Percentage)
	}
	return records, nil
}

func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.repo.Statistics(ctx)
}
