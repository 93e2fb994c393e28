// 包 store: 权威记录库的 PostgreSQL 实现，唯一性由数据库唯一索引保证
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"airport-api/internal/airport"
	"airport-api/internal/logger"

	"github.com/lib/pq"
)

const columns = "identifier, iata_code, icao, name, city, latitude, longitude, altitude, timezone"

// 路径参数可命中标识、主代码或次代码；标识精确命中优先
const selectByCode = "SELECT " + columns + " FROM airports WHERE identifier=$1 OR iata_code=$1 OR icao=$1 ORDER BY (identifier=$1) DESC LIMIT 1"

// PGStore: 数据库访问入口，持有连接池
type PGStore struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *PGStore { return &PGStore{db: db} }

// Close: 关闭数据库连接
func (s *PGStore) Close() error { return s.db.Close() }

// Put: 插入新记录；唯一索引冲突（23505）映射为 ErrDuplicateIdentifier
func (s *PGStore) Put(ctx context.Context, a airport.Airport) error {
	id, err := airport.IdentifierOf(a)
	if err != nil {
		return err
	}
	a.Identifier = id
	_, err = s.db.ExecContext(ctx, "INSERT INTO airports("+columns+") VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)",
		a.Identifier, nullString(a.IATACode), nullString(a.ICAO), a.Name, a.City,
		a.Latitude, a.Longitude, a.Altitude, nullString(a.Timezone))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", airport.ErrDuplicateIdentifier, id)
	}
	if err != nil {
		return err
	}
	logger.L().Debug("db_airport_insert", "identifier", id)
	return nil
}

func (s *PGStore) Get(ctx context.Context, code string) (airport.Airport, error) {
	a, err := scanAirport(s.db.QueryRowContext(ctx, selectByCode, code))
	if errors.Is(err, sql.ErrNoRows) {
		return airport.Airport{}, airport.ErrNotFound
	}
	return a, err
}

// Update: 行锁内读取旧值、合并补丁并写回，返回更新前后两份记录
func (s *PGStore) Update(ctx context.Context, code string, p airport.Patch) (airport.Airport, airport.Airport, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return airport.Airport{}, airport.Airport{}, err
	}
	defer tx.Rollback()
	prev, err := scanAirport(tx.QueryRowContext(ctx, selectByCode+" FOR UPDATE", code))
	if errors.Is(err, sql.ErrNoRows) {
		return airport.Airport{}, airport.Airport{}, airport.ErrNotFound
	}
	if err != nil {
		return airport.Airport{}, airport.Airport{}, err
	}
	next := p.Apply(prev)
	_, err = tx.ExecContext(ctx, `UPDATE airports SET name=$2, city=$3, latitude=$4, longitude=$5, altitude=$6, timezone=$7, updated_at=now()
        WHERE identifier=$1`,
		next.Identifier, next.Name, next.City, next.Latitude, next.Longitude, next.Altitude, nullString(next.Timezone))
	if err != nil {
		return airport.Airport{}, airport.Airport{}, err
	}
	if err := tx.Commit(); err != nil {
		return airport.Airport{}, airport.Airport{}, err
	}
	logger.L().Debug("db_airport_update", "identifier", next.Identifier)
	return prev, next, nil
}

// Delete: 删除并返回被删除的记录
func (s *PGStore) Delete(ctx context.Context, code string) (airport.Airport, error) {
	row := s.db.QueryRowContext(ctx, `DELETE FROM airports WHERE identifier = (
            SELECT identifier FROM airports WHERE identifier=$1 OR iata_code=$1 OR icao=$1
            ORDER BY (identifier=$1) DESC LIMIT 1
        ) RETURNING `+columns, code)
	a, err := scanAirport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return airport.Airport{}, airport.ErrNotFound
	}
	return a, err
}

func (s *PGStore) List(ctx context.Context) ([]airport.Airport, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+columns+" FROM airports ORDER BY identifier")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []airport.Airport{}
	for rows.Next() {
		a, err := scanAirport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Clear: 清空记录表，仅用于全量导入前的重置
func (s *PGStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "TRUNCATE airports")
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAirport(r rowScanner) (airport.Airport, error) {
	var a airport.Airport
	var iata, icao, tz sql.NullString
	var lat, lon, alt sql.NullFloat64
	if err := r.Scan(&a.Identifier, &iata, &icao, &a.Name, &a.City, &lat, &lon, &alt, &tz); err != nil {
		return airport.Airport{}, err
	}
	a.IATACode = iata.String
	a.ICAO = icao.String
	a.Timezone = tz.String
	a.Latitude = floatPtr(lat)
	a.Longitude = floatPtr(lon)
	a.Altitude = floatPtr(alt)
	return a, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// 空代码写为 NULL，部分唯一索引只约束非空值
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
