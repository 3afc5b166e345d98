package store

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrUserNotFound              = errors.New("user not found")
	ErrDuplicateUsername         = errors.New("username already exists")
	ErrPasswordTooLong           = errors.New("password exceeds 72 bytes")
	ErrAlreadyRequestedOrFriends = errors.New("friend request already pending or accepted")
	ErrSelfRequest               = errors.New("cannot add yourself as friend")
	ErrInvalidRequest            = errors.New("invalid friend request")
	ErrInvalidAction             = errors.New("invalid friend request action")
)

const mysqlErrDuplicateEntry = 1062

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry
}
