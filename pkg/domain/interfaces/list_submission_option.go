package interfaces

import "github.com/yonnovia/iawashing/pkg/domain/types"

// ListSubmissionOption is a functional option for ListBySession
type ListSubmissionOption func(*listSubmissionConfig)

type listSubmissionConfig struct {
	order  types.SortOrder
	limit  int
	offset int
}

// WithOrder sets the CreatedAt sort order
func WithOrder(order types.SortOrder) ListSubmissionOption {
	return func(c *listSubmissionConfig) {
		c.order = order
	}
}

// WithLimit caps the number of returned submissions. Zero means no limit.
func WithLimit(limit int) ListSubmissionOption {
	return func(c *listSubmissionConfig) {
		c.limit = limit
	}
}

// WithOffset skips the first n submissions
func WithOffset(offset int) ListSubmissionOption {
	return func(c *listSubmissionConfig) {
		c.offset = offset
	}
}

// BuildListSubmissionConfig builds a listSubmissionConfig from options
func BuildListSubmissionConfig(opts ...ListSubmissionOption) *listSubmissionConfig {
	cfg := &listSubmissionConfig{order: types.SortOrderDesc}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.order = cfg.order.Normalize()
	if cfg.limit < 0 {
		cfg.limit = 0
	}
	if cfg.offset < 0 {
		cfg.offset = 0
	}
	return cfg
}

// Order returns the sort order
func (c *listSubmissionConfig) Order() types.SortOrder {
	return c.order
}

// Limit returns the limit, 0 when unbounded
func (c *listSubmissionConfig) Limit() int {
	return c.limit
}

// Offset returns the number of records to skip
func (c *listSubmissionConfig) Offset() int {
	return c.offset
}
