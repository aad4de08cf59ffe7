package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"

	mysqlDuplicateEntry   = 1062
	mysqlRowIsReferenced  = 1451
	mysqlNoReferencedRow  = 1452
	mysqlRowIsReferenced2 = 1217
	mysqlNoReferencedRow2 = 1216
)

// UniqueViolation reports whether err is a unique constraint violation and,
// when it is, the name of the violated constraint.
func UniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		return pqErr.Constraint, true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return mysqlKeyName(myErr.Message), true
	}

	return "", false
}

// ForeignKeyViolation reports whether err is a foreign key violation, either a
// missing parent on insert/update or a referenced parent on delete.
func ForeignKeyViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqForeignKeyViolation {
		return pqErr.Constraint, true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlRowIsReferenced2, mysqlNoReferencedRow2:
			return mysqlConstraintName(myErr.Message), true
		}
	}

	return "", false
}

// mysqlKeyName extracts the index name from messages such as
// "Duplicate entry 'a@b.c' for key 'users.users_email_key'".
func mysqlKeyName(message string) string {
	const marker = "for key '"
	idx := strings.LastIndex(message, marker)
	if idx < 0 {
		return ""
	}
	name := strings.TrimSuffix(message[idx+len(marker):], "'")
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		name = name[dot+1:]
	}
	return name
}

// mysqlConstraintName extracts the constraint from
// "... CONSTRAINT `users_role_id_fkey` FOREIGN KEY ...".
func mysqlConstraintName(message string) string {
	const marker = "CONSTRAINT `"
	idx := strings.Index(message, marker)
	if idx < 0 {
		return ""
	}
	rest := message[idx+len(marker):]
	end := strings.Index(rest, "`")
	if end < 0 {
		return ""
	}
	return rest[:end]
}
