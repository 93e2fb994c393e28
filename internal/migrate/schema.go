package migrate

import (
	"database/sql"

	"airport-api/internal/logger"
)

// 背景：首次运行自动创建记录表与唯一索引
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；代码为空时存 NULL，部分唯一索引只约束非空值
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS airports (
            identifier TEXT PRIMARY KEY,
            iata_code TEXT,
            icao TEXT,
            name TEXT NOT NULL DEFAULT '',
            city TEXT NOT NULL DEFAULT '',
            latitude DOUBLE PRECISION,
            longitude DOUBLE PRECISION,
            altitude DOUBLE PRECISION,
            timezone TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_airports_iata ON airports(iata_code) WHERE iata_code IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_airports_icao ON airports(icao) WHERE icao IS NOT NULL`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
