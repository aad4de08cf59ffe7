package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aw-admin-api/pkg/config"
)

// Migration is one idempotent schema step.
type Migration struct {
	Index       int
	Description string
	Query       string
}

var postgresSchema = []Migration{
	{
		Index:       1,
		Description: "Create table: roles.",
		Query: `
        CREATE TABLE IF NOT EXISTS roles (
            id BIGSERIAL PRIMARY KEY,
            name VARCHAR(50) NOT NULL,
            description VARCHAR(255),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT roles_name_key UNIQUE (name)
        );`,
	},
	{
		Index:       2,
		Description: "Create table: departments.",
		Query: `
        CREATE TABLE IF NOT EXISTS departments (
            id BIGSERIAL PRIMARY KEY,
            name VARCHAR(100) NOT NULL,
            description VARCHAR(255),
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT departments_name_key UNIQUE (name)
        );`,
	},
	{
		Index:       3,
		Description: "Create table: users.",
		Query: `
        CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            emp_id VARCHAR(20) NOT NULL,
            username VARCHAR(50) NOT NULL,
            full_name VARCHAR(100) NOT NULL,
            email VARCHAR(100) NOT NULL,
            password_hash VARCHAR(255) NOT NULL,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            role_id BIGINT NOT NULL,
            department_id BIGINT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT users_emp_id_key UNIQUE (emp_id),
            CONSTRAINT users_username_key UNIQUE (username),
            CONSTRAINT users_email_key UNIQUE (email),
            CONSTRAINT users_role_id_fkey FOREIGN KEY (role_id) REFERENCES roles (id) ON DELETE RESTRICT,
            CONSTRAINT users_department_id_fkey FOREIGN KEY (department_id) REFERENCES departments (id) ON DELETE SET NULL
        );`,
	},
	{
		Index:       4,
		Description: "Create table: authors.",
		Query: `
        CREATE TABLE IF NOT EXISTS authors (
            id BIGSERIAL PRIMARY KEY,
            name VARCHAR(150) NOT NULL,
            slug VARCHAR(180) NOT NULL,
            role VARCHAR(150),
            bio TEXT,
            avatar VARCHAR(500),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT authors_slug_key UNIQUE (slug)
        );`,
	},
	{
		Index:       5,
		Description: "Create table: categories.",
		Query: `
        CREATE TABLE IF NOT EXISTS categories (
            id BIGSERIAL PRIMARY KEY,
            name VARCHAR(150) NOT NULL,
            slug VARCHAR(180) NOT NULL,
            description TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT categories_name_key UNIQUE (name),
            CONSTRAINT categories_slug_key UNIQUE (slug)
        );`,
	},
	{
		Index:       6,
		Description: "Create table: blogs.",
		Query: `
        CREATE TABLE IF NOT EXISTS blogs (
            id BIGSERIAL PRIMARY KEY,
            title VARCHAR(255) NOT NULL,
            slug VARCHAR(255) NOT NULL,
            deck TEXT,
            banner_img VARCHAR(500),
            banner_title VARCHAR(255),
            content TEXT,
            content_html TEXT,
            sections JSONB,
            author_id BIGINT,
            category_id BIGINT,
            read_mins INTEGER,
            is_published BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT blogs_slug_key UNIQUE (slug),
            CONSTRAINT blogs_author_id_fkey FOREIGN KEY (author_id) REFERENCES authors (id) ON DELETE SET NULL,
            CONSTRAINT blogs_category_id_fkey FOREIGN KEY (category_id) REFERENCES categories (id) ON DELETE SET NULL
        );`,
	},
	{
		Index:       7,
		Description: "Index blogs by publication date.",
		Query:       `CREATE INDEX IF NOT EXISTS blogs_published_created_idx ON blogs (is_published, created_at DESC);`,
	},
}

var mysqlSchema = []Migration{
	{
		Index:       1,
		Description: "Create table: roles.",
		Query: `
        CREATE TABLE IF NOT EXISTS roles (
            id BIGINT AUTO_INCREMENT PRIMARY KEY,
            name VARCHAR(50) NOT NULL,
            description VARCHAR(255),
            created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
            updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
            CONSTRAINT roles_name_key UNIQUE (name)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	},
	{
		Index:       2,
		Description: "Create table: departments.",
		Query: `
        CREATE TABLE IF NOT EXISTS departments (
            id BIGINT AUTO_INCREMENT PRIMARY KEY,
            name VARCHAR(100) NOT NULL,
            description VARCHAR(255),
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
            updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
            CONSTRAINT departments_name_key UNIQUE (name)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	},
	{
		Index:       3,
		Description: "Create table: users.",
		Query: `
        CREATE TABLE IF NOT EXISTS users (
            id BIGINT AUTO_INCREMENT PRIMARY KEY,
            emp_id VARCHAR(20) NOT NULL,
            username VARCHAR(50) NOT NULL,
            full_name VARCHAR(100) NOT NULL,
            email VARCHAR(100) NOT NULL,
            password_hash VARCHAR(255) NOT NULL,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            role_id BIGINT NOT NULL,
            department_id BIGINT NULL,
            created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
            updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
            CONSTRAINT users_emp_id_key UNIQUE (emp_id),
            CONSTRAINT users_username_key UNIQUE (username),
            CONSTRAINT users_email_key UNIQUE (email),
            CONSTRAINT users_role_id_fkey FOREIGN KEY (role_id) REFERENCES roles (id) ON DELETE RESTRICT,
            CONSTRAINT users_department_id_fkey FOREIGN KEY (department_id) REFERENCES departments (id) ON DELETE SET NULL
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	},
	{
		Index:       4,
		Description: "Create table: authors.",
		Query: `
        CREATE TABLE IF NOT EXISTS authors (
            id BIGINT AUTO_INCREMENT PRIMARY KEY,
            name VARCHAR(150) NOT NULL,
            slug VARCHAR(180) NOT NULL,
            role VARCHAR(150),
            bio TEXT,
            avatar VARCHAR(500),
            created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
            updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
            CONSTRAINT authors_slug_key UNIQUE (slug)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	},
	{
		Index:       5,
		Description: "Create table: categories.",
		Query: `
        CREATE TABLE IF NOT EXISTS categories (
            id BIGINT AUTO_INCREMENT PRIMARY KEY,
            name VARCHAR(150) NOT NULL,
            slug VARCHAR(180) NOT NULL,
            description TEXT,
            created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
            updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
            CONSTRAINT categories_name_key UNIQUE (name),
            CONSTRAINT categories_slug_key UNIQUE (slug)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	},
	{
		Index:       6,
		Description: "Create table: blogs.",
		Query: `
        CREATE TABLE IF NOT EXISTS blogs (
            id BIGINT AUTO_INCREMENT PRIMARY KEY,
            title VARCHAR(255) NOT NULL,
            slug VARCHAR(255) NOT NULL,
            deck TEXT,
            banner_img VARCHAR(500),
            banner_title VARCHAR(255),
            content LONGTEXT,
            content_html LONGTEXT,
            sections JSON,
            author_id BIGINT NULL,
            category_id BIGINT NULL,
            read_mins INT,
            is_published BOOLEAN NOT NULL DEFAULT TRUE,
            created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
            updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
            CONSTRAINT blogs_slug_key UNIQUE (slug),
            CONSTRAINT blogs_author_id_fkey FOREIGN KEY (author_id) REFERENCES authors (id) ON DELETE SET NULL,
            CONSTRAINT blogs_category_id_fkey FOREIGN KEY (category_id) REFERENCES categories (id) ON DELETE SET NULL,
            INDEX blogs_published_created_idx (is_published, created_at)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	},
}

// Schema returns the ordered migrations for driver.
func Schema(driver string) ([]Migration, error) {
	switch driver {
	case config.DriverPostgres:
		return postgresSchema, nil
	case config.DriverMySQL:
		return mysqlSchema, nil
	default:
		return nil, fmt.Errorf("no schema for driver %q", driver)
	}
}

// Migrate applies every migration for the connection's driver in order.
// The callback, when set, is invoked after each applied step.
func Migrate(ctx context.Context, db *sqlx.DB, applied func(Migration)) error {
	steps, err := Schema(db.DriverName())
	if err != nil {
		return err
	}
	for _, step := range steps {
		if _, err := db.ExecContext(ctx, step.Query); err != nil {
			return fmt.Errorf("migration %d (%s): %w", step.Index, step.Description, err)
		}
		if applied != nil {
			applied(step)
		}
	}
	return nil
}
