package writer

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"go.uber.org/zap"
)

const barsTable = "bars"

// barColumns is the column layout of the exported file. The names match what the
// backtest data source infers, so a downloaded file can be used as-is.
var barColumns = []string{
	datasource.ColumnTime,
	datasource.ColumnSymbol,
	datasource.ColumnOpen,
	datasource.ColumnHigh,
	datasource.ColumnLow,
	datasource.ColumnClose,
	datasource.ColumnVolume,
}

// ParquetWriter buffers bars in an in-memory DuckDB table and exports them to a
// parquet file sorted by time.
type ParquetWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
	written    int
	log        *logger.Logger
}

// NewParquetWriter creates a writer that exports to outputPath.
func NewParquetWriter(outputPath string, log *logger.Logger) *ParquetWriter {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &ParquetWriter{
		outputPath: outputPath,
		log:        log,
	}
}

// Initialize implements BarWriter.
func (w *ParquetWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open DuckDB connection", err)
	}

	_, err = w.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			%s TIMESTAMP,
			%s TEXT,
			%s DOUBLE,
			%s DOUBLE,
			%s DOUBLE,
			%s DOUBLE,
			%s DOUBLE
		)`, barsTable,
		barColumns[0], barColumns[1], barColumns[2], barColumns[3], barColumns[4], barColumns[5], barColumns[6],
	))
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	query, _, err := squirrel.Insert(barsTable).
		Columns(barColumns...).
		Values(make([]interface{}, len(barColumns))...).
		ToSql()
	if err != nil {
		w.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to build insert statement", err)
	}

	w.stmt, err = w.tx.Prepare(query)
	if err != nil {
		w.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare statement", err)
	}

	w.written = 0

	return nil
}

// Write implements BarWriter.
func (w *ParquetWriter) Write(bar types.Bar) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	_, err := w.stmt.Exec(
		bar.Time,
		bar.Symbol,
		nullable(bar.Open),
		nullable(bar.High),
		nullable(bar.Low),
		bar.Close,
		nullable(bar.Volume),
	)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to insert bar at %s", bar.Time)
	}

	w.written++

	return nil
}

// Finalize implements BarWriter.
func (w *ParquetWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	if w.stmt != nil {
		w.stmt.Close()
		w.stmt = nil
	}

	if err := w.tx.Commit(); err != nil {
		w.tx = nil

		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit transaction", err)
	}

	w.tx = nil

	// squirrel has no COPY support
	query := fmt.Sprintf(`COPY (SELECT * FROM %s ORDER BY %s) TO '%s' (FORMAT PARQUET)`,
		barsTable, datasource.ColumnTime, strings.ReplaceAll(w.outputPath, "'", "''"))
	if _, err := w.db.Exec(query); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to export %s", w.outputPath)
	}

	w.log.Info("Exported market data",
		zap.String("path", w.outputPath),
		zap.Int("bars", w.written),
	)

	return w.outputPath, nil
}

// Close implements BarWriter.
func (w *ParquetWriter) Close() error {
	if w.stmt != nil {
		w.stmt.Close()
		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			w.log.Warn("Failed to rollback transaction during close", zap.Error(err))
		}

		w.tx = nil
	}

	if w.db == nil {
		return nil
	}

	err := w.db.Close()
	w.db = nil

	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to close DuckDB connection", err)
	}

	return nil
}

// OutputPath implements BarWriter.
func (w *ParquetWriter) OutputPath() string {
	return w.outputPath
}

// Written returns the number of bars written since Initialize.
func (w *ParquetWriter) Written() int {
	return w.written
}

func nullable(value optional.Option[float64]) interface{} {
	if value.IsNone() {
		return nil
	}

	return value.Unwrap()
}
