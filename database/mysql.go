package database

import (
	"context"
	"database/sql"
	"log/slog"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"

	"friendcircle/config"
)

func DSN(cfg config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.MySQLUser
	mc.Passwd = cfg.MySQLPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.MySQLHost, cfg.MySQLPort)
	mc.DBName = cfg.MySQLDB
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func Connect(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("Database connected successfully", "addr", net.JoinHostPort(cfg.MySQLHost, cfg.MySQLPort), "db", cfg.MySQLDB)
	return db, nil
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          BIGINT AUTO_INCREMENT PRIMARY KEY,
		username    VARCHAR(64) NOT NULL,
		password    VARCHAR(255) NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uk_username (username)
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id          BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id     BIGINT NOT NULL,
		content     TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_user (user_id),
		CONSTRAINT fk_posts_user FOREIGN KEY (user_id) REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS friends (
		id          BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id     BIGINT NOT NULL,
		friend_id   BIGINT NOT NULL,
		status      ENUM('pending', 'accepted', 'rejected') NOT NULL DEFAULT 'pending',
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uk_friend_pair (user_id, friend_id),
		INDEX idx_friend_status (friend_id, status),
		CONSTRAINT fk_friends_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_friends_friend FOREIGN KEY (friend_id) REFERENCES users (id)
	)`,
}

func CreateTables(ctx context.Context, db *sql.DB) error {
	for _, table := range tables {
		if _, err := db.ExecContext(ctx, table); err != nil {
			return err
		}
	}

	slog.Info("Database tables created successfully")
	return nil
}
