package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// ErrDuplicateEmail is returned when another client already uses the email.
var ErrDuplicateEmail = errors.New("email already exists")

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ClientRepo handles clients.
type ClientRepo struct {
	db DBTX
}

func NewClientRepo(db DBTX) *ClientRepo { return &ClientRepo{db: db} }

// Insert stores c. Emails are unique case-insensitively.
func (r *ClientRepo) Insert(ctx context.Context, c Client) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO clients(id, full_name, email, phone, created_by, created_at)
	VALUES (?, ?, ?, ?, ?, ?);
	`, c.ID, c.FullName, c.Email, c.Phone, c.CreatedBy, c.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		var sqlErr sqlite3.Error
		if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique &&
			strings.Contains(err.Error(), "email") {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// List returns every client in insertion order.
func (r *ClientRepo) List(ctx context.Context) ([]Client, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, full_name, email, phone, created_by, created_at
	FROM clients ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ByEmail returns the client using email, or nil.
func (r *ClientRepo) ByEmail(ctx context.Context, email string) (*Client, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, full_name, email, phone, created_by, created_at
	FROM clients WHERE lower(email) = lower(?)`, email)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Count returns the number of stored clients.
func (r *ClientRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(s scanner) (Client, error) {
	var c Client
	var created string
	if err := s.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.CreatedBy, &created); err != nil {
		return Client{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Client{}, fmt.Errorf("client %s created_at: %w", c.ID, err)
	}
	c.CreatedAt = t
	return c, nil
}
