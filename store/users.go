package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"friendcircle/models"
)

// bcrypt refuses anything longer, counted in bytes rather than characters.
const maxPasswordBytes = 72

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type UserStore struct {
	db   *sql.DB
	cost int
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db, cost: bcrypt.DefaultCost}
}

// Register stores a new account. Username uniqueness is left to uk_username.
func (s *UserStore) Register(ctx context.Context, username, password string) (int64, error) {
	if len(password) > maxPasswordBytes {
		return 0, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, password) VALUES (?, ?)",
		username, string(hash),
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, ErrDuplicateUsername
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return result.LastInsertId()
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, "SELECT id, username, password, created_at FROM users WHERE username = ?", username)
}

func (s *UserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findOne(ctx, "SELECT id, username, password, created_at FROM users WHERE id = ?", id)
}

func (s *UserStore) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.Password, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}

func (s *UserStore) VerifyPassword(user *models.User, plaintext string) bool {
	if user == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(plaintext)) == nil
}

// List returns every account except excludeID, for the "find people" view.
func (s *UserStore) List(ctx context.Context, excludeID int64) ([]models.User, error) {
	return s.list(ctx, `
		SELECT id, username, created_at FROM users
		WHERE id != ?
		ORDER BY username
	`, excludeID)
}

// Search matches usernames containing query literally; LIKE wildcards in it
// are escaped.
func (s *UserStore) Search(ctx context.Context, query string, excludeID int64) ([]models.User, error) {
	return s.list(ctx, `
		SELECT id, username, created_at FROM users
		WHERE id != ? AND username LIKE ?
		ORDER BY username
		LIMIT 20
	`, excludeID, "%"+likeEscaper.Replace(query)+"%")
}

func (s *UserStore) list(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
