package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/volunteerhub/internal/model"
)

var _ AccountRepository = (*PostgresAccountRepo)(nil)

// PostgresAccountRepo はPostgreSQLを使用したアカウントリポジトリ。
// 団体はorganizations、ボランティアはvolunteersテーブルに保存する。
type PostgresAccountRepo struct {
	db *sql.DB
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

// Create はアカウントを種別に応じたテーブルへ作成する。
// メールアドレスはaccount_emailsで種別をまたいで一意に確保し、同一トランザクションで本体を挿入する。
func (r *PostgresAccountRepo) Create(ctx context.Context, account model.Account) error {
	var email string
	switch a := account.(type) {
	case *model.Organization:
		email = a.Email
	case *model.Volunteer:
		email = a.Email
	default:
		return fmt.Errorf("未対応のアカウント種別です: %T", account)
	}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO account_emails (email, kind) VALUES ($1, $2)`,
			email, account.Kind().String(),
		); err != nil {
			return err
		}

		switch a := account.(type) {
		case *model.Organization:
			_, err := tx.ExecContext(ctx,
				`INSERT INTO organizations (id, name, email, password_hash, description, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				a.ID, a.Name, a.Email, a.PasswordHash, a.Description, a.CreatedAt,
			)
			return err
		case *model.Volunteer:
			interests := a.Interests
			if interests == nil {
				interests = []string{}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO volunteers (id, name, email, password_hash, interests, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				a.ID, a.Name, a.Email, a.PasswordHash, pq.Array(interests), a.CreatedAt,
			)
			return err
		}
		return nil
	})

	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("アカウントの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByEmail は種別とメールアドレスでアカウントを検索する。見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByEmail(ctx context.Context, kind model.AccountKind, email string) (model.Account, error) {
	switch kind {
	case model.AccountKindOrganization:
		org := &model.Organization{}
		err := r.db.QueryRowContext(ctx,
			`SELECT id, name, email, password_hash, description, created_at
			 FROM organizations WHERE email = $1`,
			email,
		).Scan(&org.ID, &org.Name, &org.Email, &org.PasswordHash, &org.Description, &org.CreatedAt)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("団体アカウントの取得に失敗しました: %w", err)
		}
		return org, nil

	case model.AccountKindVolunteer:
		vol := &model.Volunteer{}
		err := r.db.QueryRowContext(ctx,
			`SELECT id, name, email, password_hash, interests, created_at
			 FROM volunteers WHERE email = $1`,
			email,
		).Scan(&vol.ID, &vol.Name, &vol.Email, &vol.PasswordHash, pq.Array(&vol.Interests), &vol.CreatedAt)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("ボランティアアカウントの取得に失敗しました: %w", err)
		}
		return vol, nil

	default:
		return nil, fmt.Errorf("未対応のアカウント種別です: %s", kind)
	}
}
