package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// uniqueViolationCode はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolationCode = "23505"

// wrapUniqueViolation は一意制約違反をErrDuplicateに変換する。
// それ以外のエラーはそのまま呼び出し元のメッセージで包んで返す。
func wrapUniqueViolation(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
		return fmt.Errorf("%s: constraint %s: %w", op, pqErr.Constraint, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
