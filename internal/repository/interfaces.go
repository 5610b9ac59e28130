// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hitoshi/volunteerhub/internal/model"
)

// リポジトリ層が返す制約違反の判別用エラー。
// サービス層でmodel.APIErrorに変換される。
var (
	// ErrNotFound は対象行が存在しない、またはIDの形式が不正な場合に返される。
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate は一意制約違反の場合に返される。
	ErrDuplicate = errors.New("repository: duplicate")
	// ErrRoleNotFound は応募先のロールが存在しない場合に返される。
	ErrRoleNotFound = errors.New("repository: role not found")
	// ErrRoleFull はロールの募集人数に達している場合に返される。
	ErrRoleFull = errors.New("repository: role full")
)

// AccountRepository は団体・ボランティアアカウントの永続化インターフェース。
type AccountRepository interface {
	// Create はアカウントを作成する。メールアドレスが種別内で重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, account model.Account) error

	// FindByEmail は種別とメールアドレスでアカウントを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, kind model.AccountKind, email string) (model.Account, error)
}

// EventRepository はイベントとロールの永続化インターフェース。
type EventRepository interface {
	// CreateWithRoles はイベントと全ロールを同一トランザクションで作成する。
	// いずれかの書き込みが失敗した場合は何も保存されない。
	CreateWithRoles(ctx context.Context, event *model.EventWithRoles) error

	// ListUpcoming は開催日時がnowより後のイベントを開催日時の昇順で返す。
	ListUpcoming(ctx context.Context, now time.Time) ([]model.EventSummary, error)

	// ListByOrganizer は団体が主催する全イベントを開催日時の降順で返す。
	ListByOrganizer(ctx context.Context, organizerID string) ([]model.EventSummary, error)

	// FindDetail はイベント詳細を取得する。見つからない場合はnilを返す。
	FindDetail(ctx context.Context, eventID string) (*model.EventDetail, error)

	// FindOrganizerID はイベントの主催団体IDを返す。見つからない場合はErrNotFoundを返す。
	FindOrganizerID(ctx context.Context, eventID string) (string, error)
}

// AttendanceAuthorizer は出席更新対象のイベント主催団体IDを受け取り、
// 操作を許可しない場合はエラーを返す。
type AttendanceAuthorizer func(organizerID string) error

// AssignmentRepository はロールへの応募（参加枠）の永続化インターフェース。
type AssignmentRepository interface {
	// Create は応募を作成する。
	// 同一ボランティア・同一ロールの応募が既にある場合はErrDuplicate、
	// ロールが存在しない場合はErrRoleNotFoundを返す。
	// enforceCapacityがtrueの場合、ロール行をロックして応募数を数え、
	// 募集人数に達していればErrRoleFullを返す。
	Create(ctx context.Context, assignment *model.Assignment, enforceCapacity bool) error

	// ListRosterByEvent はイベントの参加者名簿をロール名、ボランティア名の順で返す。
	ListRosterByEvent(ctx context.Context, eventID string) ([]model.RosterEntry, error)

	// ListProfileEntries はボランティアの全応募をイベント・ロール・主催団体の情報付きで返す。
	ListProfileEntries(ctx context.Context, volunteerID string) ([]model.ProfileEntry, error)

	// UpdateAttendance は応募の出席フラグを更新する。
	// 応募行をロックした上でauthorizeを呼び出し、エラーの場合は更新せずにそのまま返す。
	// 応募が見つからない場合はErrNotFoundを返す。
	UpdateAttendance(ctx context.Context, recordID string, attended bool, authorize AttendanceAuthorizer) error
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
