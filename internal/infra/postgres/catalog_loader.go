package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"studyhub-service/internal/domain"
)

// CatalogLoader assembles the catalog snapshot from JSONB rows: one row per
// subject subtree, one row per dated question.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	var catalog domain.Catalog

	rows, err := l.pool.Query(ctx, `SELECT data FROM catalog_subjects ORDER BY position, id`)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load subjects: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return domain.Catalog{}, fmt.Errorf("scan subject: %w", err)
		}
		var subject domain.Subject
		if err := json.Unmarshal(raw, &subject); err != nil {
			return domain.Catalog{}, fmt.Errorf("unmarshal subject: %w", err)
		}
		catalog.Subjects = append(catalog.Subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return domain.Catalog{}, fmt.Errorf("load subjects: %w", err)
	}

	qrows, err := l.pool.Query(ctx, `SELECT data FROM qotd_questions ORDER BY question_date`)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load questions: %w", err)
	}
	defer qrows.Close()
	for qrows.Next() {
		var raw []byte
		if err := qrows.Scan(&raw); err != nil {
			return domain.Catalog{}, fmt.Errorf("scan question: %w", err)
		}
		var question domain.QuestionOfTheDay
		if err := json.Unmarshal(raw, &question); err != nil {
			return domain.Catalog{}, fmt.Errorf("unmarshal question: %w", err)
		}
		catalog.Questions = append(catalog.Questions, question)
	}
	if err := qrows.Err(); err != nil {
		return domain.Catalog{}, fmt.Errorf("load questions: %w", err)
	}
	return catalog, nil
}
