// Package roster はロールへの応募と参加者名簿のドメインロジックを提供する。
package roster

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hitoshi/volunteerhub/internal/clock"
	"github.com/hitoshi/volunteerhub/internal/metrics"
	"github.com/hitoshi/volunteerhub/internal/model"
	"github.com/hitoshi/volunteerhub/internal/repository"
)

// EventAuthorizer はイベントの主催団体であることを確認する。
type EventAuthorizer interface {
	AuthorizeEventOwner(ctx context.Context, p model.Principal, eventID string) error
}

// ServiceConfig は応募処理の設定。
type ServiceConfig struct {
	// EnforceCapacity がtrueの場合、募集人数に達したロールへの応募を拒否する。
	EnforceCapacity bool
}

// Service は応募管理のサービス層。
type Service struct {
	assignments repository.AssignmentRepository
	guard       EventAuthorizer
	clock       clock.Clock
	metrics     metrics.MetricsCollector
	config      ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	assignments repository.AssignmentRepository,
	guard EventAuthorizer,
	clk clock.Clock,
	m metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	return &Service{
		assignments: assignments,
		guard:       guard,
		clock:       clk,
		metrics:     m,
		config:      config,
	}
}

// Signup はボランティアをロールに応募させる。
// 同一ロールへの重複応募は同時実行時も含めて1件に制限される。
func (s *Service) Signup(ctx context.Context, volunteerID, roleID string) (*model.Assignment, error) {
	a := &model.Assignment{
		ID:          uuid.New().String(),
		VolunteerID: volunteerID,
		RoleID:      roleID,
		Attended:    false,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.assignments.Create(ctx, a, s.config.EnforceCapacity); err != nil {
		apiErr := s.signupError(roleID, err)
		s.metrics.RecordSignupRejected(apiErr.Code)
		return nil, apiErr
	}

	s.metrics.RecordSignup()
	slog.Info("volunteer signed up",
		slog.String("assignment_id", a.ID),
		slog.String("volunteer_id", volunteerID),
		slog.String("role_id", roleID),
	)
	return a, nil
}

func (s *Service) signupError(roleID string, err error) *model.APIError {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return model.NewAlreadySignedUpError()
	case errors.Is(err, repository.ErrRoleNotFound):
		return model.NewRoleNotFoundError(roleID)
	case errors.Is(err, repository.ErrRoleFull):
		return model.NewRoleFullError()
	case s.config.EnforceCapacity:
		return model.NewTransactionFailedError(err)
	default:
		return model.NewPersistenceError(err)
	}
}

// ListAssignmentsForEvent はイベントの参加者名簿を返す。
// 呼び出し元がイベントの主催団体でない場合は拒否する。
func (s *Service) ListAssignmentsForEvent(ctx context.Context, caller model.Principal, eventID string) ([]model.RosterEntry, error) {
	if err := s.guard.AuthorizeEventOwner(ctx, caller, eventID); err != nil {
		return nil, err
	}

	entries, err := s.assignments.ListRosterByEvent(ctx, eventID)
	if err != nil {
		return nil, model.NewPersistenceError(err)
	}
	return entries, nil
}
