package dbmetrics

import (
	"context"
	"database/sql"
	"time"
)

// MetricsCollector метрики, которые собирает обёртка над БД
type MetricsCollector interface {
	ObserveDBQuery(operation string, seconds float64)
}

// PoolMetricsCollector метрики пула соединений
type PoolMetricsCollector interface {
	SetDBPoolStats(stats sql.DBStats)
}

// DB обёртка над *sql.DB, замеряющая длительность запросов
type DB struct {
	db      *sql.DB
	metrics MetricsCollector
}

// Wrap оборачивает *sql.DB; metrics может быть nil
func Wrap(db *sql.DB, metrics MetricsCollector) *DB {
	return &DB{db: db, metrics: metrics}
}

// Unwrap возвращает исходный *sql.DB
func (d *DB) Unwrap() *sql.DB {
	return d.db
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer d.observe("exec", time.Now())
	return d.db.ExecContext(ctx, query, args...)
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	defer d.observe("query", time.Now())
	return d.db.QueryContext(ctx, query, args...)
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer d.observe("query_row", time.Now())
	return d.db.QueryRowContext(ctx, query, args...)
}

// BeginTx начинает транзакцию, запросы внутри которой тоже замеряются
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, metrics: d.metrics}, nil
}

func (d *DB) observe(operation string, started time.Time) {
	if d.metrics == nil {
		return
	}
	d.metrics.ObserveDBQuery(operation, time.Since(started).Seconds())
}

// StartPoolCollector периодически снимает статистику пула соединений до закрытия stopCh
func (d *DB) StartPoolCollector(collector PoolMetricsCollector, interval time.Duration, stopCh <-chan struct{}) {
	if collector == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				collector.SetDBPoolStats(d.db.Stats())
			case <-stopCh:
				return
			}
		}
	}()
}

// Tx транзакция с замером длительности запросов
type Tx struct {
	tx      *sql.Tx
	metrics MetricsCollector
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer t.observe("tx_exec", time.Now())
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	defer t.observe("tx_query", time.Now())
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer t.observe("tx_query_row", time.Now())
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

func (t *Tx) observe(operation string, started time.Time) {
	if t.metrics == nil {
		return
	}
	t.metrics.ObserveDBQuery(operation, time.Since(started).Seconds())
}
