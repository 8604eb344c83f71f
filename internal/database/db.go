package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Conn names the MySQL server that holds layout and session blobs.
type Conn struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

// DSN renders c for the mysql driver.
func (c Conn) DSN() string {
	auth := c.User
	if c.Pass != "" {
		auth = fmt.Sprintf("%s:%s", c.User, c.Pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, c.Host, c.Port, c.Name)
}

// Open connects to MySQL and verifies the connection within 5s.
func Open(ctx context.Context, c Conn) (*sql.DB, error) {
	db, err := sql.Open("mysql", c.DSN())
	if err != nil {
		return nil, err
	}

	// One console writes a handful of small blobs; a small pool is plenty.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql %s:%s: %w", c.Host, c.Port, err)
	}
	return db, nil
}
