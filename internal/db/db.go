package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// connectAttempts bounds startup waiting on a database that is still
// coming up, e.g. under docker compose.
const connectAttempts = 5

// Pool carries connection pool limits for Connect.
type Pool struct {
	MaxOpen int
	MaxIdle int
}

// Connect opens a postgres pool and verifies it with a ping, retrying
// with backoff so the API can start before the database is ready.
func Connect(host, port, name, user, password string, pool Pool) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		host, port, name, user, password,
	)

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(pool.MaxOpen)
	conn.SetMaxIdleConns(pool.MaxIdle)

	for attempt := 1; ; attempt++ {
		err = conn.Ping()
		if err == nil {
			return conn, nil
		}
		if attempt == connectAttempts {
			break
		}
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	conn.Close()
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", connectAttempts, err)
}
