package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"EnergyPulse/internal/domain/models"
	pkgch "EnergyPulse/pkg/clickhouse"
	applogger "EnergyPulse/pkg/logger"
)

// CHSeriesStore implements SeriesStore backed by a ClickHouse daily close
// table (commodity, day, close).
type CHSeriesStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHSeriesStore(ch *pkgch.Client, table string) *CHSeriesStore {
	return &CHSeriesStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHSeriesStore) SetLogger(l *applogger.Logger) { s.l = l }

func rangeQuery(table string) string {
	return fmt.Sprintf(`
        SELECT day, close
        FROM %s FINAL
        WHERE commodity = ? AND day >= toDate(?) AND day <= toDate(?)
        ORDER BY day ASC
    `, table)
}

func latestQuery(table string) string {
	return fmt.Sprintf(`
        SELECT day, close
        FROM %s FINAL
        WHERE commodity = ?
        ORDER BY day DESC
        LIMIT ?
    `, table)
}

func commoditiesQuery(table string) string {
	return fmt.Sprintf("SELECT DISTINCT commodity FROM %s ORDER BY commodity", table)
}

func (s *CHSeriesStore) GetSeries(ctx context.Context, commodity string, from, to time.Time) (models.PriceSeries, error) {
	start := time.Now()
	points, err := s.query(ctx, "get_series", rangeQuery(s.table), commodity, from, to)
	if err != nil {
		return models.PriceSeries{}, err
	}
	if len(points) == 0 {
		if err := s.ensureKnown(ctx, commodity); err != nil {
			return models.PriceSeries{}, err
		}
	}
	s.logOK("get_series", commodity, len(points), start)
	return models.PriceSeries{Name: commodity, Points: points}, nil
}

func (s *CHSeriesStore) GetLatestN(ctx context.Context, commodity string, n int) (models.PriceSeries, error) {
	start := time.Now()
	points, err := s.query(ctx, "latest_n", latestQuery(s.table), commodity, n)
	if err != nil {
		return models.PriceSeries{}, err
	}
	if len(points) == 0 {
		return models.PriceSeries{}, fmt.Errorf("%w: %s", models.ErrUnknownCommodity, commodity)
	}
	// reverse to ASC
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	s.logOK("latest_n", commodity, len(points), start)
	return models.PriceSeries{Name: commodity, Points: points}, nil
}

func (s *CHSeriesStore) Commodities(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, commoditiesQuery(s.table))
	if err != nil {
		return nil, fmt.Errorf("list commodities: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan commodity: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// InsertPrices writes observations in chunks. ReplacingMergeTree collapses
// rewrites of the same (commodity, day).
func (s *CHSeriesStore) InsertPrices(ctx context.Context, commodity string, points []models.PricePoint) error {
	const chunkSize = 2000
	for start := 0; start < len(points); start += chunkSize {
		end := min(start+chunkSize, len(points))
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*3)
		for _, p := range points[start:end] {
			values = append(values, "(?, ?, ?)")
			args = append(args, commodity, p.Time, p.Price)
		}
		q := fmt.Sprintf("INSERT INTO %s (commodity, day, close) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.logErr("insert_prices", commodity, err)
			return fmt.Errorf("insert prices: %w", err)
		}
	}
	return nil
}

// Health pings the database.
func (s *CHSeriesStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHSeriesStore) ensureKnown(ctx context.Context, commodity string) error {
	names, err := s.Commodities(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == commodity {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", models.ErrUnknownCommodity, commodity)
}

func (s *CHSeriesStore) query(ctx context.Context, op, q string, args ...interface{}) ([]models.PricePoint, error) {
	commodity, _ := args[0].(string)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.logErr(op+" query", commodity, err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.PricePoint, 0, 512)
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Time, &p.Price); err != nil {
			s.logErr(op+" scan", commodity, err)
			return nil, fmt.Errorf("scan price: %w", err)
		}
		p.Time = p.Time.UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		s.logErr(op+" rows", commodity, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHSeriesStore) logErr(op, commodity string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error("clickhouse "+op+" error",
		applogger.String("table", s.table),
		applogger.String("commodity", commodity),
		applogger.Error(err),
	)
}

func (s *CHSeriesStore) logOK(op, commodity string, rows int, start time.Time) {
	if s.l == nil {
		return
	}
	s.l.Debug("clickhouse "+op+" ok",
		applogger.String("table", s.table),
		applogger.String("commodity", commodity),
		applogger.Int("rows", rows),
		applogger.Duration("duration_ms", time.Since(start)),
	)
}
