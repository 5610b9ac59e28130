// Package attendance はボランティアの参加予定・履歴の集計と出席記録を提供する。
package attendance

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/hitoshi/volunteerhub/internal/clock"
	"github.com/hitoshi/volunteerhub/internal/metrics"
	"github.com/hitoshi/volunteerhub/internal/model"
	"github.com/hitoshi/volunteerhub/internal/repository"
)

// Authorizer は出席記録の更新権限を判定する。
type Authorizer interface {
	RequireKind(p model.Principal, kind model.AccountKind) error
	CheckOwner(p model.Principal, organizerID string) error
}

// Service は出席管理のサービス層。
type Service struct {
	assignments repository.AssignmentRepository
	guard       Authorizer
	clock       clock.Clock
	metrics     metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	assignments repository.AssignmentRepository,
	guard Authorizer,
	clk clock.Clock,
	m metrics.MetricsCollector,
) *Service {
	return &Service{
		assignments: assignments,
		guard:       guard,
		clock:       clk,
		metrics:     m,
	}
}

// VolunteerProfile はボランティアの参加予定、参加履歴、活動統計を返す。
// 開催日時が現在時刻より後のものを予定、現在時刻以前のものを履歴とする。
func (s *Service) VolunteerProfile(ctx context.Context, volunteerID string) (*model.VolunteerProfile, error) {
	entries, err := s.assignments.ListProfileEntries(ctx, volunteerID)
	if err != nil {
		return nil, model.NewPersistenceError(err)
	}
	return BuildProfile(entries, s.clock.Now()), nil
}

// BuildProfile は開催日時の昇順に並んだ応募一覧をnowを境に振り分け、統計を計算する。
// 予定は昇順、履歴は降順で返す。
func BuildProfile(entries []model.ProfileEntry, now time.Time) *model.VolunteerProfile {
	profile := &model.VolunteerProfile{
		Upcoming: []model.ProfileEntry{},
		Past:     []model.ProfileEntry{},
	}

	for _, e := range entries {
		if e.EventDate.After(now) {
			profile.Upcoming = append(profile.Upcoming, e)
		} else {
			profile.Past = append(profile.Past, e)
		}
	}
	sort.SliceStable(profile.Upcoming, func(i, j int) bool {
		return profile.Upcoming[i].EventDate.Before(profile.Upcoming[j].EventDate)
	})
	sort.SliceStable(profile.Past, func(i, j int) bool {
		return profile.Past[i].EventDate.After(profile.Past[j].EventDate)
	})

	for _, e := range profile.Past {
		if e.Attended {
			profile.Stats.TotalEvents++
		}
	}
	profile.Stats.TotalHours = profile.Stats.TotalEvents * model.HoursPerAttendedEvent

	return profile
}

// SetAttendance は応募の出席フラグを更新する。
// 主催団体の確認は応募行をロックしたトランザクション内で行う。
// 同じ値での再更新はエラーにならない。
func (s *Service) SetAttendance(ctx context.Context, recordID string, attended bool, caller model.Principal) error {
	if err := s.guard.RequireKind(caller, model.AccountKindOrganization); err != nil {
		return err
	}

	err := s.assignments.UpdateAttendance(ctx, recordID, attended, func(organizerID string) error {
		return s.guard.CheckOwner(caller, organizerID)
	})
	if err != nil {
		var apiErr *model.APIError
		switch {
		case errors.As(err, &apiErr):
			return apiErr
		case errors.Is(err, repository.ErrNotFound):
			return model.NewAssignmentNotFoundError(recordID)
		default:
			return model.NewTransactionFailedError(err)
		}
	}

	s.metrics.RecordAttendanceMarked(attended)
	slog.Info("attendance updated",
		slog.String("assignment_id", recordID),
		slog.String("organizer_id", caller.AccountID),
		slog.Bool("attended", attended),
	)
	return nil
}
