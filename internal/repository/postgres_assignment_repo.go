package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/volunteerhub/internal/model"
)

var _ AssignmentRepository = (*PostgresAssignmentRepo)(nil)

// assignmentsRoleFK はassignments.role_idの外部キー制約名。
const assignmentsRoleFK = "assignments_role_id_fkey"

// PostgresAssignmentRepo はPostgreSQLを使用した応募リポジトリ。
// 同一ボランティア・同一ロールの重複応募はUNIQUE(volunteer_id, role_id)制約で防ぐ。
type PostgresAssignmentRepo struct {
	db *sql.DB
}

// NewPostgresAssignmentRepo はPostgresAssignmentRepoを生成する。
func NewPostgresAssignmentRepo(db *sql.DB) *PostgresAssignmentRepo {
	return &PostgresAssignmentRepo{db: db}
}

const insertAssignmentSQL = `INSERT INTO assignments (id, volunteer_id, role_id, attended, created_at)
	 VALUES ($1, $2, $3, $4, $5)`

// Create は応募を作成する。
func (r *PostgresAssignmentRepo) Create(ctx context.Context, a *model.Assignment, enforceCapacity bool) error {
	if !enforceCapacity {
		_, err := r.db.ExecContext(ctx, insertAssignmentSQL,
			a.ID, a.VolunteerID, a.RoleID, a.Attended, a.CreatedAt,
		)
		return classifyAssignmentInsertError(err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		// 同一ロールへの応募はロール行のロックで直列化される
		var required int
		err := tx.QueryRowContext(ctx,
			`SELECT required_volunteers FROM roles WHERE id = $1 FOR UPDATE`,
			a.RoleID,
		).Scan(&required)
		if err == sql.ErrNoRows || isInvalidUUID(err) {
			return ErrRoleNotFound
		}
		if err != nil {
			return fmt.Errorf("ロールのロック取得に失敗しました: %w", err)
		}

		var alreadyClaimed bool
		var claimed int
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(BOOL_OR(volunteer_id = $2), false), COUNT(*)
			 FROM assignments WHERE role_id = $1`,
			a.RoleID, a.VolunteerID,
		).Scan(&alreadyClaimed, &claimed)
		if err != nil {
			return fmt.Errorf("応募数の取得に失敗しました: %w", err)
		}
		if alreadyClaimed {
			return ErrDuplicate
		}
		if claimed >= required {
			return ErrRoleFull
		}

		_, err = tx.ExecContext(ctx, insertAssignmentSQL,
			a.ID, a.VolunteerID, a.RoleID, a.Attended, a.CreatedAt,
		)
		return classifyAssignmentInsertError(err)
	})
}

// classifyAssignmentInsertError は応募INSERTのエラーを判別用エラーに変換する。
func classifyAssignmentInsertError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if isInvalidUUID(err) {
		return ErrRoleNotFound
	}
	var pqErr *pq.Error
	if isForeignKeyViolation(err) && errors.As(err, &pqErr) && pqErr.Constraint == assignmentsRoleFK {
		return ErrRoleNotFound
	}
	return fmt.Errorf("応募の作成に失敗しました: %w", err)
}

// ListRosterByEvent はイベントの参加者名簿をロール名、ボランティア名の順で返す。
func (r *PostgresAssignmentRepo) ListRosterByEvent(ctx context.Context, eventID string) ([]model.RosterEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, v.id, v.name, v.email, ro.id, ro.name, a.attended
		 FROM assignments a
		 JOIN roles ro ON ro.id = a.role_id
		 JOIN volunteers v ON v.id = a.volunteer_id
		 WHERE ro.event_id = $1
		 ORDER BY ro.name ASC, v.name ASC, a.id ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("参加者名簿の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	entries := []model.RosterEntry{}
	for rows.Next() {
		var e model.RosterEntry
		if err := rows.Scan(
			&e.AssignmentID, &e.VolunteerID, &e.VolunteerName, &e.VolunteerEmail,
			&e.RoleID, &e.RoleName, &e.Attended,
		); err != nil {
			return nil, fmt.Errorf("参加者名簿の行の読み取りに失敗しました: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("参加者名簿の走査に失敗しました: %w", err)
	}
	return entries, nil
}

// ListProfileEntries はボランティアの全応募を開催日時の昇順で返す。
// 予定と履歴の振り分けは呼び出し側で行う。
func (r *PostgresAssignmentRepo) ListProfileEntries(ctx context.Context, volunteerID string) ([]model.ProfileEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, e.id, e.title, e.event_date, e.location, o.name, ro.id, ro.name, a.attended
		 FROM assignments a
		 JOIN roles ro ON ro.id = a.role_id
		 JOIN events e ON e.id = ro.event_id
		 JOIN organizations o ON o.id = e.organizer_id
		 WHERE a.volunteer_id = $1
		 ORDER BY e.event_date ASC, a.id ASC`,
		volunteerID,
	)
	if err != nil {
		return nil, fmt.Errorf("応募履歴の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var entries []model.ProfileEntry
	for rows.Next() {
		var e model.ProfileEntry
		if err := rows.Scan(
			&e.AssignmentID, &e.EventID, &e.EventTitle, &e.EventDate, &e.Location,
			&e.OrganizerName, &e.RoleID, &e.RoleName, &e.Attended,
		); err != nil {
			return nil, fmt.Errorf("応募履歴の行の読み取りに失敗しました: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("応募履歴の走査に失敗しました: %w", err)
	}
	return entries, nil
}

// UpdateAttendance は応募の出席フラグを更新する。
// 応募行のロック、主催団体の確認、更新を同一トランザクションで行う。
func (r *PostgresAssignmentRepo) UpdateAttendance(ctx context.Context, recordID string, attended bool, authorize AttendanceAuthorizer) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var organizerID string
		err := tx.QueryRowContext(ctx,
			`SELECT e.organizer_id
			 FROM assignments a
			 JOIN roles ro ON ro.id = a.role_id
			 JOIN events e ON e.id = ro.event_id
			 WHERE a.id = $1
			 FOR UPDATE OF a`,
			recordID,
		).Scan(&organizerID)
		if err == sql.ErrNoRows || isInvalidUUID(err) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("応募のロック取得に失敗しました: %w", err)
		}

		if err := authorize(organizerID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE assignments SET attended = $2 WHERE id = $1`,
			recordID, attended,
		); err != nil {
			return fmt.Errorf("出席状況の更新に失敗しました: %w", err)
		}
		return nil
	})
}
