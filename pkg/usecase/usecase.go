package usecase

import (
	"time"

	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	"github.com/yonnovia/iawashing/pkg/domain/model"
)

type UseCases struct {
	repo          interfaces.Repository
	questionnaire *model.Questionnaire
	publisher     interfaces.EventPublisher
	metrics       interfaces.MetricsRecorder
	now           func() time.Time
	Survey        *SurveyUseCase
	Admin         *AdminUseCase
	Export        *ExportUseCase
	Auth          AuthUseCaseInterface
}

type Option func(*UseCases)

func WithQuestionnaire(q *model.Questionnaire) Option {
	return func(uc *UseCases) {
		uc.questionnaire = q
	}
}

// WithPublisher sets where dashboard events go after a submission.
func WithPublisher(p interfaces.EventPublisher) Option {
	return func(uc *UseCases) {
		uc.publisher = p
	}
}

func WithMetrics(m interfaces.MetricsRecorder) Option {
	return func(uc *UseCases) {
		uc.metrics = m
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.questionnaire == nil {
		uc.questionnaire = &model.Questionnaire{}
	}
	if uc.Auth == nil {
		uc.Auth = NewNoAuthnUseCase()
	}

	uc.Survey = &SurveyUseCase{
		repo:          repo,
		questionnaire: uc.questionnaire,
		publisher:     uc.publisher,
		metrics:       uc.metrics,
		now:           uc.now,
	}
	uc.Admin = &AdminUseCase{repo: repo, now: uc.now}
	uc.Export = &ExportUseCase{repo: repo, now: uc.now}

	return uc
}
