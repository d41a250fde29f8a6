package patient

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a patient id matches no row.
var ErrNotFound = errors.New("patient not found")

type Repository interface {
	ListCompliance(ctx context.Context, params ListParams) ([]*Compliance, int, error)
	GetCompliance(ctx context.Context, id int64) (*Compliance, error)
	Create(ctx context.Context, name, password, gender string, birthDate *string) (*Created, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ConsumptionHistory(ctx context.Context, id int64, limit int) ([]*ConsumptionRecord, error)
	Statistics(ctx context.Context) (*Statistics, error)
}
