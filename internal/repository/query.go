package repository

import (
	"fmt"
	"strings"
)

// conditions accumulates WHERE clauses written with '?' placeholders. The
// final statement is rebound for the active driver.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(clause string, args ...interface{}) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return " WHERE 1=1"
	}
	return " WHERE 1=1 AND " + strings.Join(c.clauses, " AND ")
}

func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

func pageClause(page, size int) string {
	return fmt.Sprintf(" LIMIT %d OFFSET %d", size, (page-1)*size)
}

func orderDirection(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}
