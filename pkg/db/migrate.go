package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded schema migrations over a dedicated lib/pq
// connection, which is closed afterwards.
func Migrate(dsn string) error {
	sqlDB, err := sql.Open(DriverPQ, dsn)
	if err != nil {
		return fmt.Errorf("миграции: открытие БД: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("миграции: источник: %w", err)
	}

	drv, err := mpg.WithInstance(sqlDB, &mpg.Config{})
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("миграции: драйвер: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("миграции: инициализация: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("миграции: применение: %w", err)
	}
	return nil
}
