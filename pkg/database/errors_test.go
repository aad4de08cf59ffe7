package database

import (
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolationPostgres(t *testing.T) {
	err := fmt.Errorf("create user: %w", &pq.Error{Code: "23505", Constraint: "users_email_key"})

	constraint, ok := UniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "users_email_key", constraint)

	_, ok = ForeignKeyViolation(err)
	assert.False(t, ok)
}

func TestUniqueViolationMySQL(t *testing.T) {
	err := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'AW002' for key 'users.users_emp_id_key'"}

	constraint, ok := UniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "users_emp_id_key", constraint)

	legacy := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'roles_name_key'"}
	constraint, ok = UniqueViolation(legacy)
	assert.True(t, ok)
	assert.Equal(t, "roles_name_key", constraint)
}

func TestForeignKeyViolation(t *testing.T) {
	pqErr := &pq.Error{Code: "23503", Constraint: "users_department_id_fkey"}
	constraint, ok := ForeignKeyViolation(pqErr)
	assert.True(t, ok)
	assert.Equal(t, "users_department_id_fkey", constraint)

	myErr := &mysql.MySQLError{
		Number:  1452,
		Message: "Cannot add or update a child row: a foreign key constraint fails (`aw`.`users`, CONSTRAINT `users_role_id_fkey` FOREIGN KEY (`role_id`) REFERENCES `roles` (`id`))",
	}
	constraint, ok = ForeignKeyViolation(myErr)
	assert.True(t, ok)
	assert.Equal(t, "users_role_id_fkey", constraint)
}

func TestUnrelatedErrors(t *testing.T) {
	_, ok := UniqueViolation(fmt.Errorf("boom"))
	assert.False(t, ok)
	_, ok = ForeignKeyViolation(nil)
	assert.False(t, ok)
}
