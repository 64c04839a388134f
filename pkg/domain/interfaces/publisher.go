package interfaces

import (
	"context"

	"github.com/yonnovia/iawashing/pkg/domain/model"
)

// EventPublisher delivers dashboard events to subscribers of a session.
type EventPublisher interface {
	Publish(ctx context.Context, event *model.DashboardEvent) error
}

// MetricsRecorder records domain metrics.
type MetricsRecorder interface {
	RecordSubmission(level string, score int)
}
