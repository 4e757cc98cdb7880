package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"go.uber.org/zap"
)

const barView = "market_data"

// DuckDBDataSource reads parquet or csv bar files through an in-memory DuckDB view.
type DuckDBDataSource struct {
	db      *sql.DB
	logger  *logger.Logger
	sq      squirrel.StatementBuilderType
	spec    string
	format  Format
	columns []string
	symbol  string
}

// NewDataSource opens an in-memory DuckDB database. formatSpec is a format
// string such as "dohlcv"; when empty the format is inferred from column names.
func NewDataSource(formatSpec string, logger *logger.Logger) (DataSource, error) {
	if formatSpec != "" {
		if _, err := ParseFormat(formatSpec); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to connect to duckdb", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		spec:   formatSpec,
	}, nil
}

// Initialize implements DataSource.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS ` + barView); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	reader := "read_parquet"
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		reader = "read_csv_auto"
	}

	// squirrel has no CREATE VIEW support
	query := fmt.Sprintf(`CREATE VIEW %s AS SELECT * FROM %s('%s')`, barView, reader, strings.ReplaceAll(path, "'", "''"))
	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read bar file %s", path)
	}

	columns, err := d.describe()
	if err != nil {
		return err
	}

	if d.spec != "" {
		d.format, err = ParseFormat(d.spec)
	} else {
		d.format, err = InferFormat(columns)
	}

	if err != nil {
		return err
	}

	for _, letter := range d.format.letters {
		if i, _ := d.format.Index(letter); i >= len(columns) {
			return errors.Newf(errors.ErrCodeUnsupportedDataFormat, "data format %q needs %d columns, file has %d", d.format, i+1, len(columns))
		}
	}

	d.columns = columns
	d.symbol = SymbolFromPath(path)

	return nil
}

func (d *DuckDBDataSource) describe() ([]string, error) {
	rows, err := d.db.Query(`SELECT column_name FROM (DESCRIBE ` + barView + `)`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to describe bar file", err)
	}
	defer rows.Close()

	var columns []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column name", err)
		}

		columns = append(columns, name)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating columns", err)
	}

	return columns, nil
}

func (d *DuckDBDataSource) column(letter rune) string {
	i, ok := d.format.Index(letter)
	if !ok {
		return ""
	}

	return quoteIdent(d.columns[i])
}

func (d *DuckDBDataSource) symbolColumn() string {
	for _, c := range d.columns {
		if strings.EqualFold(c, ColumnSymbol) {
			return quoteIdent(c)
		}
	}

	return ""
}

func (d *DuckDBDataSource) where(builder squirrel.SelectBuilder, start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.SelectBuilder {
	timeExpr := fmt.Sprintf("CAST(%s AS TIMESTAMP)", d.column('d'))

	if start.IsSome() {
		builder = builder.Where(timeExpr+" >= ?", start.Unwrap())
	}

	if end.IsSome() {
		builder = builder.Where(timeExpr+" <= ?", end.Unwrap())
	}

	return builder
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	if d.columns == nil {
		return 0, errors.New(errors.ErrCodeDataSourceUnavailable, "data source is not initialized")
	}

	query, args, err := d.where(d.sq.Select("COUNT(*)").From(barView), start, end).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		if d.columns == nil {
			yield(types.Bar{}, errors.New(errors.ErrCodeDataSourceUnavailable, "data source is not initialized"))

			return
		}

		optionalLetters := []rune{'o', 'h', 'l', 'v', 'i', 'x', 'y'}

		selects := []string{
			fmt.Sprintf("CAST(%s AS TIMESTAMP)", d.column('d')),
			fmt.Sprintf("CAST(%s AS DOUBLE)", d.column('c')),
		}

		symbolColumn := d.symbolColumn()
		if symbolColumn != "" {
			selects = append(selects, fmt.Sprintf("CAST(%s AS VARCHAR)", symbolColumn))
		} else {
			selects = append(selects, "CAST(NULL AS VARCHAR)")
		}

		for _, letter := range optionalLetters {
			if column := d.column(letter); column != "" {
				selects = append(selects, fmt.Sprintf("CAST(%s AS DOUBLE)", column))
			} else {
				selects = append(selects, "CAST(NULL AS DOUBLE)")
			}
		}

		query, args, err := d.where(d.sq.Select(selects...).From(barView), start, end).
			OrderBy(fmt.Sprintf("CAST(%s AS TIMESTAMP) ASC", d.column('d'))).
			ToSql()
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build bar query", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				bar       types.Bar
				symbol    sql.NullString
				optionals = make([]sql.NullFloat64, len(optionalLetters))
			)

			dest := []any{&bar.Time, &bar.Close, &symbol}
			for i := range optionals {
				dest = append(dest, &optionals[i])
			}

			if err := rows.Scan(dest...); err != nil {
				yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err))

				return
			}

			bar.Symbol = d.symbol
			if symbol.Valid && symbol.String != "" {
				bar.Symbol = symbol.String
			}

			targets := []*optional.Option[float64]{&bar.Open, &bar.High, &bar.Low, &bar.Volume, &bar.Sentiment, &bar.Custom, &bar.Dividend}
			for i, target := range targets {
				*target = nullToOption(optionals[i])
			}

			if !yield(bar, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating bars", err))
		}
	}
}

// Format implements DataSource.
func (d *DuckDBDataSource) Format() Format {
	return d.format
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}

func nullToOption(value sql.NullFloat64) optional.Option[float64] {
	if !value.Valid {
		return optional.None[float64]()
	}

	return optional.Some(value.Float64)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// SymbolFromPath derives a symbol from a file name like "AAPL_2024.parquet".
func SymbolFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.IndexAny(base, "_-. "); i > 0 {
		base = base[:i]
	}

	return strings.ToUpper(base)
}
