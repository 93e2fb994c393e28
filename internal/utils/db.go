package utils

import (
	"database/sql"

	_ "github.com/lib/pq"
)

func BuildPostgresDSNFromEnv() string {
	user := Env("PG_USER", "postgres")
	dsn := "postgres://" + user
	if pass := Env("PG_PASSWORD", ""); pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + Env("PG_HOST", "localhost") + ":" + Env("PG_PORT", "5432") + "/" + Env("PG_DB", "airports") + "?sslmode=" + Env("PG_SSLMODE", "disable")
	return dsn
}

// OpenPostgresFromEnv：连接池上限由 PG_MAX_OPEN_CONNS / PG_MAX_IDLE_CONNS 控制
func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := sql.Open("postgres", BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(EnvInt("PG_MAX_OPEN_CONNS", 50))
	db.SetMaxIdleConns(EnvInt("PG_MAX_IDLE_CONNS", 25))
	return db, nil
}
