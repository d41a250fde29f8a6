package medicine

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no medicine matches the requested id.
var ErrNotFound = errors.New("medicine not found")

// Repository is the storage contract for the medicine catalog and its analytics.
type Repository interface {
	List(ctx context.Context, params ListParams) ([]*Medicine, int, error)
	Get(ctx context.Context, id int64) (*Medicine, error)
	Create(ctx context.Context, req *CreateRequest) (*Created, error)
	LowCompliance(ctx context.Context, threshold float64, limit int) ([]*LowCompliance, error)
	MostPrescribed(ctx context.Context, days, limit int) ([]*Prescribed, error)
	Statistics(ctx context.Context, id int64) (*Statistics, error)
}
