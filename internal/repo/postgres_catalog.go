package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urbantrend/cart-recall/internal/model"
)

type PostgresCatalogRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCatalogRepo(pool *pgxpool.Pool) *PostgresCatalogRepo {
	return &PostgresCatalogRepo{pool: pool}
}

var _ CatalogRepository = (*PostgresCatalogRepo)(nil)

func (r *PostgresCatalogRepo) FindProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	// Parameterized ANY instead of a string-built IN list.
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, price, purchase_link
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Link); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (r *PostgresCatalogRepo) FindFAQEntries(ctx context.Context) ([]model.FAQEntry, error) {
	// Keywords are stored as a comma-separated, editor-maintained field,
	// like the cart column. Position defines the match order.
	rows, err := r.pool.Query(ctx, `
		SELECT keywords, answer
		FROM faq_entries
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("find faq entries: %w", err)
	}
	defer rows.Close()

	var entries []model.FAQEntry
	for rows.Next() {
		var (
			rawKeywords string
			e           model.FAQEntry
		)
		if err := rows.Scan(&rawKeywords, &e.Answer); err != nil {
			return nil, fmt.Errorf("scan faq entry: %w", err)
		}
		e.Keywords = splitKeywords(rawKeywords)
		if len(e.Keywords) == 0 {
			continue
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faq entries: %w", err)
	}
	return entries, nil
}

func splitKeywords(raw string) []string {
	var keywords []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		keywords = append(keywords, part)
	}
	return keywords
}
