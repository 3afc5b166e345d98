package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"friendcircle/models"
)

func TestRegisterHashesPassword(t *testing.T) {
	db, mock := newMock(t)
	users := &UserStore{db: db, cost: bcrypt.MinCost}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("alice", bcryptOf("pw1")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := users.Register(context.Background(), "alice", "pw1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id != 1 {
		t.Fatalf("unexpected id %d", id)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db, mock := newMock(t)
	users := &UserStore{db: db, cost: bcrypt.MinCost}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnError(duplicateEntry())

	_, err := users.Register(context.Background(), "alice", "pw1")
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestRegisterStorageError(t *testing.T) {
	db, mock := newMock(t)
	users := &UserStore{db: db, cost: bcrypt.MinCost}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	_, err := users.Register(context.Background(), "alice", "pw1")
	if err == nil || errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected a plain storage error, got %v", err)
	}
}

func TestFindByUsername(t *testing.T) {
	db, mock := newMock(t)
	users := NewUserStore(db)
	created := time.Now()

	mock.ExpectQuery(`FROM users WHERE username = `).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "created_at"}).
			AddRow(1, "alice", "hash", created))

	user, err := users.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" || user.Password != "hash" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestFindByUsernameMissing(t *testing.T) {
	db, mock := newMock(t)
	users := NewUserStore(db)

	mock.ExpectQuery(`FROM users WHERE username = `).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "created_at"}))

	if _, err := users.FindByUsername(context.Background(), "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFindByIDMissing(t *testing.T) {
	db, mock := newMock(t)
	users := NewUserStore(db)

	mock.ExpectQuery(`FROM users WHERE id = `).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "created_at"}))

	if _, err := users.FindByID(context.Background(), 42); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := NewUserStore(nil)
	user := &models.User{ID: 1, Username: "alice", Password: string(hash)}

	if !users.VerifyPassword(user, "pw1") {
		t.Fatalf("expected correct password to verify")
	}
	if users.VerifyPassword(user, "pw2") {
		t.Fatalf("expected wrong password to fail")
	}
	if users.VerifyPassword(nil, "pw1") {
		t.Fatalf("expected nil user to fail")
	}
}

func TestSearchUsers(t *testing.T) {
	db, mock := newMock(t)
	users := NewUserStore(db)

	mock.ExpectQuery(`SELECT id, username, created_at FROM users`).
		WithArgs(int64(1), "%bo%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "created_at"}).
			AddRow(2, "bob", time.Now()))

	found, err := users.Search(context.Background(), "bo", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].Username != "bob" {
		t.Fatalf("unexpected result %+v", found)
	}
}

func TestListUsersEmpty(t *testing.T) {
	db, mock := newMock(t)
	users := NewUserStore(db)

	mock.ExpectQuery(`SELECT id, username, created_at FROM users`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "created_at"}))

	list, err := users.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", list)
	}
}

func TestRegisterRejectsPasswordOverByteLimit(t *testing.T) {
	db, _ := newMock(t)
	users := &UserStore{db: db, cost: bcrypt.MinCost}

	// 40 characters but 80 bytes.
	password := strings.Repeat("é", 40)
	if _, err := users.Register(context.Background(), "carol", password); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}

	mockDB, mock := newMock(t)
	users = &UserStore{db: mockDB, cost: bcrypt.MinCost}
	exact := strings.Repeat("é", 36)
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("carol", bcryptOf(exact)).
		WillReturnResult(sqlmock.NewResult(3, 1))
	if _, err := users.Register(context.Background(), "carol", exact); err != nil {
		t.Fatalf("72 byte password should be accepted: %v", err)
	}
}

func TestSearchUsersEscapesWildcards(t *testing.T) {
	db, mock := newMock(t)
	users := NewUserStore(db)

	mock.ExpectQuery(`SELECT id, username, created_at FROM users`).
		WithArgs(int64(1), `%a\_b\%c\\%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "created_at"}))

	found, err := users.Search(context.Background(), `a_b%c\`, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("unexpected result %+v", found)
	}
}
