package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/tracker"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"go.uber.org/zap"
)

// Exported file names of one run.
const (
	OrdersFileName     = "orders.parquet"
	PeriodicFileName   = "periodic.parquet"
	TradesFileName     = "trades.parquet"
	IndicatorsFileName = "indicators.parquet"
	InjectionsFileName = "injections.parquet"
	StatsFileName      = "stats.yaml"
	ResultsFileName    = "results.csv"
)

// BacktestState holds the logs of one run in an in-memory DuckDB database so
// they can be aggregated with SQL and exported as parquet.
type BacktestState struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewBacktestState(logger *logger.Logger) (*BacktestState, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to connect to database", err)
	}

	return &BacktestState{
		logger: logger,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the log tables.
func (b *BacktestState) Initialize() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			dt TIMESTAMP,
			type TEXT,
			price DOUBLE,
			size DOUBLE,
			value DOUBLE,
			commission DOUBLE,
			pnl DOUBLE,
			reason TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS periodic (
			dt TIMESTAMP,
			portfolio_value DOUBLE,
			cash DOUBLE,
			position_size DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS trades (
			dt TIMESTAMP,
			pnl DOUBLE,
			pnl_comm DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS indicators (
			dt TIMESTAMP,
			name TEXT,
			value DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS injections (
			dt TIMESTAMP,
			amount DOUBLE,
			total_injected DOUBLE
		)`,
	}

	for _, statement := range statements {
		if _, err := b.db.Exec(statement); err != nil {
			return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create table", err)
		}
	}

	return nil
}

// Load inserts the materialized logs of a run in one transaction.
func (b *BacktestState) Load(logs tracker.Logs) error {
	tx, err := b.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to begin transaction", err)
	}

	inserts := make([]squirrel.InsertBuilder, 0, 5)

	if len(logs.Orders) > 0 {
		insert := b.sq.Insert("orders").Columns("dt", "type", "price", "size", "value", "commission", "pnl", "reason")
		for _, o := range logs.Orders {
			insert = insert.Values(o.Time, string(o.Type), o.Price, o.Size, o.Value, o.Commission, o.PnL, o.Reason)
		}

		inserts = append(inserts, insert)
	}

	if len(logs.Periodic) > 0 {
		insert := b.sq.Insert("periodic").Columns("dt", "portfolio_value", "cash", "position_size")
		for _, p := range logs.Periodic {
			insert = insert.Values(p.Time, p.PortfolioValue, p.Cash, p.PositionSize)
		}

		inserts = append(inserts, insert)
	}

	if len(logs.Trades) > 0 {
		insert := b.sq.Insert("trades").Columns("dt", "pnl", "pnl_comm")
		for _, t := range logs.Trades {
			insert = insert.Values(t.Time, t.PnL, t.PnLComm)
		}

		inserts = append(inserts, insert)
	}

	if len(logs.Indicators) > 0 {
		insert := b.sq.Insert("indicators").Columns("dt", "name", "value")
		for _, i := range logs.Indicators {
			insert = insert.Values(i.Time, i.Name, i.Value)
		}

		inserts = append(inserts, insert)
	}

	if len(logs.Injections) > 0 {
		insert := b.sq.Insert("injections").Columns("dt", "amount", "total_injected")
		for _, i := range logs.Injections {
			insert = insert.Values(i.Time, i.Amount, i.TotalInjected)
		}

		inserts = append(inserts, insert)
	}

	for _, insert := range inserts {
		if _, err := insert.RunWith(tx).Exec(); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert run logs", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to commit run logs", err)
	}

	return nil
}

// TradeResult aggregates the closed trades.
func (b *BacktestState) TradeResult() (types.TradeResult, error) {
	// squirrel has no CTE support
	query := `
		WITH trade_stats AS (
			SELECT
				COUNT(*) AS total_trades,
				CAST(COALESCE(SUM(CASE WHEN pnl_comm > 0 THEN 1 ELSE 0 END), 0) AS BIGINT) AS winning_trades,
				CAST(COALESCE(SUM(CASE WHEN pnl_comm <= 0 THEN 1 ELSE 0 END), 0) AS BIGINT) AS losing_trades,
				COALESCE(MAX(pnl_comm), 0) AS max_pnl,
				COALESCE(MIN(pnl_comm), 0) AS min_pnl
			FROM trades
		)
		SELECT
			total_trades,
			winning_trades,
			losing_trades,
			CASE WHEN total_trades > 0 THEN CAST(winning_trades AS DOUBLE) / total_trades ELSE 0 END AS win_rate,
			CASE WHEN max_pnl > 0 THEN max_pnl ELSE 0 END AS maximum_profit,
			CASE WHEN min_pnl < 0 THEN min_pnl ELSE 0 END AS maximum_loss
		FROM trade_stats
	`

	var result types.TradeResult

	err := b.db.QueryRow(query).Scan(
		&result.NumberOfTrades,
		&result.NumberOfWinningTrades,
		&result.NumberOfLosingTrades,
		&result.WinRate,
		&result.MaximumProfit,
		&result.MaximumLoss,
	)
	if err != nil {
		return types.TradeResult{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to calculate trade result", err)
	}

	return result, nil
}

// TotalFees sums the commission of every completed order.
func (b *BacktestState) TotalFees() (float64, error) {
	var totalFees float64

	err := b.sq.Select("COALESCE(SUM(commission), 0)").From("orders").RunWith(b.db).QueryRow().Scan(&totalFees)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to calculate total fees", err)
	}

	return totalFees, nil
}

// OrderCount returns the number of completed orders, optionally of one side.
func (b *BacktestState) OrderCount(recordType string) (int, error) {
	query := b.sq.Select("COUNT(*)").From("orders")
	if recordType != "" {
		query = query.Where(squirrel.Eq{"type": recordType})
	}

	var count int
	if err := query.RunWith(b.db).QueryRow().Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count orders", err)
	}

	return count, nil
}

// Write exports every table as parquet into dir and returns the file paths by table.
func (b *BacktestState) Write(dir string) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to create directory", err)
	}

	files := map[string]string{
		"orders":     OrdersFileName,
		"periodic":   PeriodicFileName,
		"trades":     TradesFileName,
		"indicators": IndicatorsFileName,
		"injections": InjectionsFileName,
	}

	paths := make(map[string]string, len(files))

	for table, name := range files {
		path := filepath.Join(dir, name)

		// squirrel has no COPY support
		query := fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, strings.ReplaceAll(path, "'", "''"))
		if _, err := b.db.Exec(query); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeBacktestWriteFailed, err, "failed to export %s to parquet", table)
		}

		paths[table] = path
	}

	b.logger.Debug("Exported run logs to parquet", zap.String("dir", dir))

	return paths, nil
}

// Cleanup drops every table and recreates them empty.
func (b *BacktestState) Cleanup() error {
	_, err := b.db.Exec(`
		DROP TABLE IF EXISTS orders;
		DROP TABLE IF EXISTS periodic;
		DROP TABLE IF EXISTS trades;
		DROP TABLE IF EXISTS indicators;
		DROP TABLE IF EXISTS injections;
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to cleanup tables", err)
	}

	return b.Initialize()
}

// Close releases the database.
func (b *BacktestState) Close() error {
	return b.db.Close()
}
