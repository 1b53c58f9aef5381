// Package dealstore archives reported deals to PostgreSQL so price
// history outlives the JSON state files.
package dealstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/samwhite/cardscout/internal/types"
)

// PostgresWriter persists reported deals to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS reported_deals (
			id          SERIAL PRIMARY KEY,
			listing_id  VARCHAR(64)   NOT NULL DEFAULT '',
			owner       VARCHAR(100)  NOT NULL,
			query       TEXT          NOT NULL,
			title       TEXT          NOT NULL,
			price       NUMERIC(10,2) NOT NULL DEFAULT 0,
			shipping    NUMERIC(10,2) NOT NULL DEFAULT 0,
			total_price NUMERIC(10,2) NOT NULL DEFAULT 0,
			ceiling     NUMERIC(10,2) NOT NULL DEFAULT 0,
			numbered    INTEGER       NOT NULL DEFAULT 0,
			sale_type   VARCHAR(20)   NOT NULL,
			bid_count   INTEGER       NOT NULL DEFAULT 0,
			is_deal     BOOLEAN       NOT NULL DEFAULT FALSE,
			link        TEXT          NOT NULL DEFAULT '',
			sold_avg    NUMERIC(10,2),
			sold_count  INTEGER,
			reported_at TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_deals_listing_owner ON reported_deals(listing_id, owner);
		CREATE INDEX IF NOT EXISTS idx_deals_owner       ON reported_deals(owner);
		CREATE INDEX IF NOT EXISTS idx_deals_reported_at ON reported_deals(reported_at);
	`)
	return err
}

// Record batch-inserts reported deals. Re-reported listings are ignored
// so auctions reported on consecutive scans archive only once per owner.
func (pw *PostgresWriter) Record(deals []types.Deal) error {
	if len(deals) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(deals); i += batchSize {
		end := i + batchSize
		if end > len(deals) {
			end = len(deals)
		}
		if err := pw.insertBatch(deals[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []types.Deal) error {
	const cols = 15
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, d := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		var soldAvg, soldCount interface{}
		if d.SoldEstimate != nil {
			soldAvg = d.SoldEstimate.AveragePrice
			soldCount = d.SoldEstimate.SampleSize
		}
		valueArgs = append(valueArgs,
			d.ID, d.Owner, d.Query, d.Title, d.Price, d.Shipping, d.TotalPrice,
			d.Ceiling, d.Numbered, d.SaleType.String(), d.BidCount, d.IsDeal,
			d.Link, soldAvg, soldCount)
	}

	query := fmt.Sprintf(`
		INSERT INTO reported_deals (listing_id, owner, query, title, price, shipping, total_price,
			ceiling, numbered, sale_type, bid_count, is_deal, link, sold_avg, sold_count)
		VALUES %s
		ON CONFLICT (listing_id, owner) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// RecentDeals retrieves the latest archived deals, newest first.
func (pw *PostgresWriter) RecentDeals(limit int) ([]types.Deal, error) {
	rows, err := pw.db.Query(`
		SELECT listing_id, owner, query, title, price, shipping, total_price,
			ceiling, numbered, sale_type, bid_count, is_deal, link, sold_avg, sold_count
		FROM reported_deals
		ORDER BY reported_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: recent deals: %w", err)
	}
	defer rows.Close()

	var deals []types.Deal
	for rows.Next() {
		var d types.Deal
		var saleType string
		var soldAvg sql.NullFloat64
		var soldCount sql.NullInt64
		if err := rows.Scan(
			&d.ID, &d.Owner, &d.Query, &d.Title, &d.Price, &d.Shipping, &d.TotalPrice,
			&d.Ceiling, &d.Numbered, &saleType, &d.BidCount, &d.IsDeal,
			&d.Link, &soldAvg, &soldCount,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if saleType == "auction" {
			d.SaleType = types.Auction
		} else {
			d.SaleType = types.FixedPrice
		}
		if soldAvg.Valid {
			d.SoldEstimate = &types.SoldEstimate{
				AveragePrice: soldAvg.Float64,
				SampleSize:   int(soldCount.Int64),
			}
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
