package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// DB - подключение к однофайловой базе вершин (DatabaseBlob)
type DB struct {
	*sqlx.DB
	path   string
	logger *zap.Logger
}

// Open открывает (или создаёт) файл базы.
// Журнал в режиме DELETE: рядом с файлом не остаётся -wal/-shm, блоб всегда один файл.
func Open(ctx context.Context, path string, logger *zap.Logger) (*DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(DELETE)&_pragma=foreign_keys(0)"

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// одно физическое соединение: SQLite не выигрывает от параллельных писателей,
	// а SAVEPOINT внутри транзакции требует стабильного соединения
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	logger.Debug("SQLite database opened", zap.String("path", path))

	return &DB{DB: db, path: path, logger: logger}, nil
}

// Path возвращает путь к файлу базы
func (db *DB) Path() string {
	return db.path
}

// Close закрывает соединение с БД
func (db *DB) Close() error {
	db.logger.Debug("Closing SQLite database", zap.String("path", db.path))
	return db.DB.Close()
}
