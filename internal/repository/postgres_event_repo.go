package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/volunteerhub/internal/model"
)

var _ EventRepository = (*PostgresEventRepo)(nil)

// PostgresEventRepo はPostgreSQLを使用したイベントリポジトリ。
type PostgresEventRepo struct {
	db *sql.DB
}

// NewPostgresEventRepo はPostgresEventRepoを生成する。
func NewPostgresEventRepo(db *sql.DB) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

// CreateWithRoles はイベントと全ロールを同一トランザクションで作成する。
func (r *PostgresEventRepo) CreateWithRoles(ctx context.Context, ev *model.EventWithRoles) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, organizer_id, title, description, event_date, location, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ev.ID, ev.OrganizerID, ev.Title, ev.Description, ev.Date, ev.Location, ev.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("イベントの作成に失敗しました: %w", err)
		}

		for _, role := range ev.Roles {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO roles (id, event_id, name, description, required_volunteers, position)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				role.ID, role.EventID, role.Name, role.Description, role.RequiredVolunteers, role.Position,
			)
			if err != nil {
				return fmt.Errorf("ロールの作成に失敗しました (%s): %w", role.Name, err)
			}
		}
		return nil
	})
}

// ListUpcoming は開催日時がnowより後のイベントを開催日時の昇順で返す。
func (r *PostgresEventRepo) ListUpcoming(ctx context.Context, now time.Time) ([]model.EventSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.organizer_id, e.title, e.description, e.event_date, e.location, e.created_at,
		        o.name,
		        (SELECT COUNT(*) FROM roles ro WHERE ro.event_id = e.id)
		 FROM events e
		 JOIN organizations o ON o.id = e.organizer_id
		 WHERE e.event_date > $1
		 ORDER BY e.event_date ASC, e.id ASC`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("開催予定イベント一覧の取得に失敗しました: %w", err)
	}
	return scanEventSummaries(rows)
}

// ListByOrganizer は団体が主催する全イベントを開催日時の降順で返す。
func (r *PostgresEventRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]model.EventSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.organizer_id, e.title, e.description, e.event_date, e.location, e.created_at,
		        o.name,
		        (SELECT COUNT(*) FROM roles ro WHERE ro.event_id = e.id)
		 FROM events e
		 JOIN organizations o ON o.id = e.organizer_id
		 WHERE e.organizer_id = $1
		 ORDER BY e.event_date DESC, e.id ASC`,
		organizerID,
	)
	if err != nil {
		return nil, fmt.Errorf("主催イベント一覧の取得に失敗しました: %w", err)
	}
	return scanEventSummaries(rows)
}

func scanEventSummaries(rows *sql.Rows) ([]model.EventSummary, error) {
	defer rows.Close()

	summaries := []model.EventSummary{}
	for rows.Next() {
		var s model.EventSummary
		if err := rows.Scan(
			&s.ID, &s.OrganizerID, &s.Title, &s.Description, &s.Date, &s.Location, &s.CreatedAt,
			&s.OrganizerName, &s.RoleCount,
		); err != nil {
			return nil, fmt.Errorf("イベント行の読み取りに失敗しました: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("イベント一覧の走査に失敗しました: %w", err)
	}
	return summaries, nil
}

// FindDetail はイベント詳細を取得する。見つからない場合、IDの形式が不正な場合はnilを返す。
func (r *PostgresEventRepo) FindDetail(ctx context.Context, eventID string) (*model.EventDetail, error) {
	detail := &model.EventDetail{}
	err := r.db.QueryRowContext(ctx,
		`SELECT e.id, e.organizer_id, e.title, e.description, e.event_date, e.location, e.created_at, o.name
		 FROM events e
		 JOIN organizations o ON o.id = e.organizer_id
		 WHERE e.id = $1`,
		eventID,
	).Scan(
		&detail.ID, &detail.OrganizerID, &detail.Title, &detail.Description,
		&detail.Date, &detail.Location, &detail.CreatedAt, &detail.OrganizerName,
	)
	if err == sql.ErrNoRows || isInvalidUUID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT ro.id, ro.event_id, ro.name, ro.description, ro.required_volunteers, ro.position,
		        COUNT(a.id)
		 FROM roles ro
		 LEFT JOIN assignments a ON a.role_id = ro.id
		 WHERE ro.event_id = $1
		 GROUP BY ro.id
		 ORDER BY ro.position ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("ロール一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	detail.Roles = []model.RoleWithCount{}
	for rows.Next() {
		var rc model.RoleWithCount
		if err := rows.Scan(
			&rc.ID, &rc.EventID, &rc.Name, &rc.Description, &rc.RequiredVolunteers, &rc.Position,
			&rc.AssignedCount,
		); err != nil {
			return nil, fmt.Errorf("ロール行の読み取りに失敗しました: %w", err)
		}
		detail.Roles = append(detail.Roles, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ロール一覧の走査に失敗しました: %w", err)
	}
	return detail, nil
}

// FindOrganizerID はイベントの主催団体IDを返す。
func (r *PostgresEventRepo) FindOrganizerID(ctx context.Context, eventID string) (string, error) {
	var organizerID string
	err := r.db.QueryRowContext(ctx,
		`SELECT organizer_id FROM events WHERE id = $1`,
		eventID,
	).Scan(&organizerID)
	if err == sql.ErrNoRows || isInvalidUUID(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("イベント主催団体の取得に失敗しました: %w", err)
	}
	return organizerID, nil
}
