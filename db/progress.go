package db

import (
	"context"
	"fmt"

	"github.com/amonks/catalog/data"
)

// CountByStatus counts the rows of table ("artists", "albums" or
// "tracks") in each status. Every status is present in the result.
func (db *DB) CountByStatus(ctx context.Context, table string) (map[data.Status]int, error) {
	switch table {
	case "artists", "albums", "tracks":
	default:
		return nil, fmt.Errorf("no status column in table '%s'", table)
	}

	var rows []struct {
		Status data.Status
		Count  int64
	}
	if err := db.read(ctx).
		Table(table).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).
		Error; err != nil {
		return nil, fmt.Errorf("error counting %s by status: %w", table, err)
	}

	counts := make(map[data.Status]int, len(data.Statuses))
	for _, status := range data.Statuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = int(row.Count)
	}
	return counts, nil
}

// CountGenres counts the rows of the genres table.
func (db *DB) CountGenres(ctx context.Context) (int, error) {
	var count int64
	if err := db.read(ctx).
		Table("genres").
		Count(&count).
		Error; err != nil {
		return 0, fmt.Errorf("error counting genres: %w", err)
	}
	return int(count), nil
}
