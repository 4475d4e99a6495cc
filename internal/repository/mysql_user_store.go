package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"authsvc/internal/model"
)

// MySQLUserStore implements UserStore on top of the `users` table.
type MySQLUserStore struct{ DB *sql.DB }

func NewMySQLUserStore(db *sql.DB) *MySQLUserStore { return &MySQLUserStore{DB: db} }

var _ UserStore = (*MySQLUserStore)(nil)

// Create inserts the record and returns it with the assigned ID. The unique
// index on users.email is the safety net against two concurrent
// registrations for the same address: the loser sees MySQL error 1062.
func (s *MySQLUserStore) Create(ctx context.Context, u model.User) (model.User, error) {
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash) VALUES (?,?,?)",
		u.Name, u.Email, u.PasswordHash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	u.ID = uint64(id)
	return u, nil
}

// FindByEmail fetches a record by exact email. BINARY forces a
// case-sensitive match regardless of the column collation.
func (s *MySQLUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := s.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,created_at FROM users WHERE BINARY email=? LIMIT 1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return u, nil
}

// FindByID fetches a record by id.
func (s *MySQLUserStore) FindByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := s.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,created_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return u, nil
}
