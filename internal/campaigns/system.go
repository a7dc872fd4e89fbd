package campaigns

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/cadence/pkg/pagination"
)

// System defines the public contract for campaign domain operations.
type System interface {
	Handler() *Handler

	// Corpus returns the full campaign snapshot that benchmarks run against.
	// Callers must treat the returned slice as read-only.
	Corpus(ctx context.Context) ([]Campaign, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Record], error)

	Find(ctx context.Context, id uuid.UUID) (*Record, error)
	Import(ctx context.Context, snapshot []Campaign) (*ImportResult, error)
}
