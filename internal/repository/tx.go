package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgreSQLのエラーコード
const (
	pgUniqueViolation           = "23505"
	pgForeignKeyViolation       = "23503"
	pgInvalidTextRepresentation = "22P02"
)

// withTx はfnをトランザクション内で実行する。
// fnがエラーを返した場合はロールバックし、そのエラーをそのまま返す。
func withTx(ctx context.Context, db TxBeginner, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return nil
}

func pqErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqErrorCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pqErrorCode(err) == pgForeignKeyViolation
}

// isInvalidUUID はUUID列に不正な文字列が渡された場合にtrueを返す。
func isInvalidUUID(err error) bool {
	return pqErrorCode(err) == pgInvalidTextRepresentation
}
