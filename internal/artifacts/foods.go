// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package artifacts

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	// DuckDB driver - parses the food composition CSV with read_csv_auto
	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/nutrirank/internal/recommend"
)

// foodQuery selects the macro grams per food. Missing grams count as zero.
const foodQuery = `
SELECT
	CAST(id AS BIGINT),
	CAST(COALESCE(karbohidrat, 0) AS DOUBLE),
	CAST(COALESCE(protein, 0) AS DOUBLE),
	CAST(COALESCE(lemak, 0) AS DOUBLE)
FROM read_csv_auto('%s', header = true)
WHERE id IS NOT NULL`

// LoadFoodTable reads the food composition CSV (columns id, nama_bahan,
// energi, protein, lemak, karbohidrat, bdd, updated_at) and converts grams
// into energy shares. Foods with no macro energy are skipped.
func LoadFoodTable(ctx context.Context, path string) (recommend.FoodMacroTable, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("food table: %w", err)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close() //nolint:errcheck // in-memory database, nothing to flush

	rows, err := db.QueryContext(ctx, fmt.Sprintf(foodQuery, quoteLiteral(path)))
	if err != nil {
		return nil, fmt.Errorf("read food table %s: %w", path, err)
	}
	defer rows.Close()

	foods := make(recommend.FoodMacroTable)
	for rows.Next() {
		var (
			id                    int64
			carbG, proteinG, fatG float64
		)
		if err := rows.Scan(&id, &carbG, &proteinG, &fatG); err != nil {
			return nil, fmt.Errorf("scan food row: %w", err)
		}
		split, ok := recommend.SplitFromGrams(carbG, proteinG, fatG)
		if !ok {
			continue
		}
		foods[id] = split
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food rows: %w", err)
	}
	return foods, nil
}

// quoteLiteral escapes s for use inside a single-quoted SQL string.
func quoteLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
