// Package event はイベントの作成と参照のドメインロジックを提供する。
package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/volunteerhub/internal/clock"
	"github.com/hitoshi/volunteerhub/internal/metrics"
	"github.com/hitoshi/volunteerhub/internal/model"
	"github.com/hitoshi/volunteerhub/internal/repository"
	"github.com/hitoshi/volunteerhub/internal/security"
	"github.com/hitoshi/volunteerhub/internal/validation"
)

// RoleInput はイベント作成時のロール1件分の入力。
type RoleInput struct {
	Name               string `json:"name" validate:"required,max=255"`
	Description        string `json:"description" validate:"max=2000"`
	RequiredVolunteers *int   `json:"required_volunteers" validate:"required,gte=0,lte=10000"`
}

// CreateEventInput はイベント作成リクエスト。
// ロールは1件以上必要で、入力順がそのまま表示順になる。
type CreateEventInput struct {
	Title       string      `json:"title" validate:"required,max=255"`
	Description string      `json:"description" validate:"max=5000"`
	Date        time.Time   `json:"date" validate:"required"`
	Location    string      `json:"location" validate:"max=255"`
	Roles       []RoleInput `json:"roles" validate:"required,min=1,max=50,dive"`
}

// Service はイベント管理のサービス層。
type Service struct {
	events    repository.EventRepository
	sanitizer security.TextSanitizer
	clock     clock.Clock
	metrics   metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	events repository.EventRepository,
	sanitizer security.TextSanitizer,
	clk clock.Clock,
	m metrics.MetricsCollector,
) *Service {
	return &Service{
		events:    events,
		sanitizer: sanitizer,
		clock:     clk,
		metrics:   m,
	}
}

// CreateEvent はイベントとロール一式を作成する。
// 書き込みは単一トランザクションで行われ、失敗時は何も保存されない。
func (s *Service) CreateEvent(ctx context.Context, organizerID string, in CreateEventInput) (*model.EventWithRoles, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	eventID := uuid.New().String()
	ev := &model.EventWithRoles{
		Event: model.Event{
			ID:          eventID,
			OrganizerID: organizerID,
			Title:       s.sanitizer.SanitizeText(in.Title),
			Description: s.sanitizer.SanitizeRichText(in.Description),
			Date:        in.Date.UTC(),
			Location:    s.sanitizer.SanitizeText(in.Location),
			CreatedAt:   s.clock.Now(),
		},
		Roles: make([]model.Role, len(in.Roles)),
	}
	if ev.Title == "" {
		return nil, model.NewValidationError("title は必須です")
	}

	for i, r := range in.Roles {
		role := model.Role{
			ID:                 uuid.New().String(),
			EventID:            eventID,
			Name:               s.sanitizer.SanitizeText(r.Name),
			Description:        s.sanitizer.SanitizeRichText(r.Description),
			RequiredVolunteers: *r.RequiredVolunteers,
			Position:           i,
		}
		if role.Name == "" {
			return nil, model.NewValidationError("roles の name は必須です")
		}
		ev.Roles[i] = role
	}

	if err := s.events.CreateWithRoles(ctx, ev); err != nil {
		return nil, model.NewTransactionFailedError(err)
	}

	s.metrics.RecordEventCreated(len(ev.Roles))
	slog.Info("event created",
		slog.String("event_id", ev.ID),
		slog.String("organizer_id", organizerID),
		slog.Int("role_count", len(ev.Roles)),
	)

	return ev, nil
}

// ListUpcomingEvents は開催前のイベントを開催日時の昇順で返す。
func (s *Service) ListUpcomingEvents(ctx context.Context) ([]model.EventSummary, error) {
	events, err := s.events.ListUpcoming(ctx, s.clock.Now())
	if err != nil {
		return nil, model.NewPersistenceError(err)
	}
	return events, nil
}

// GetEvent はイベント詳細をロール別の応募数付きで返す。
func (s *Service) GetEvent(ctx context.Context, eventID string) (*model.EventDetail, error) {
	detail, err := s.events.FindDetail(ctx, eventID)
	if err != nil {
		return nil, model.NewPersistenceError(err)
	}
	if detail == nil {
		return nil, model.NewEventNotFoundError(eventID)
	}
	return detail, nil
}

// ListOrganizerEvents は団体が主催する全イベントを開催日時の降順で返す。
func (s *Service) ListOrganizerEvents(ctx context.Context, organizerID string) ([]model.EventSummary, error) {
	events, err := s.events.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, model.NewPersistenceError(err)
	}
	return events, nil
}
