package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"autohaven/internal/common"
	"autohaven/internal/domain/filter"
	"autohaven/internal/domain/model"

	"github.com/jackc/pgx/v5/pgtype"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	// List returns the page of listings matching c in insertion order and
	// the number of listings matching c overall.
	List(ctx context.Context, c filter.Criteria, limit, offset int) ([]model.Listing, int, error)
	Update(ctx context.Context, id string, patch model.ListingPatch) (*model.Listing, error)
	Delete(ctx context.Context, id string) error
}

const listingColumns = `id, slug, make, model, year, price, mileage, fuel_type, transmission,
	image_url, description, features, is_available, created_at, updated_at`

type pgListingRepository struct {
	db *sql.DB
}

func NewPgListingRepository(db *sql.DB) ListingRepository {
	return &pgListingRepository{db: db}
}

func (r *pgListingRepository) Create(ctx context.Context, l *model.Listing) error {
	query := `INSERT INTO cars (id, slug, make, model, year, price, mileage, fuel_type, transmission,
	                           image_url, description, features, is_available, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	features := l.Features
	if features == nil {
		features = []string{}
	}
	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.Slug, l.Make, l.Model, l.Year, l.Price, l.Mileage, l.FuelType, l.Transmission,
		l.ImageURL, l.Description, features, l.IsAvailable, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("pgListingRepository.Create: %w", err)
	}
	return nil
}

func (r *pgListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM cars WHERE id = $1`
	l, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgListingRepository.FindByID: %w", err)
	}
	return l, nil
}

// criteriaClause renders c as a WHERE clause with the same predicates as
// filter.Criteria.Matches. Placeholders start at $argID.
func criteriaClause(c filter.Criteria, argID int) (string, []interface{}, int) {
	var conditions []string
	var args []interface{}

	if c.Make != "" {
		conditions = append(conditions, fmt.Sprintf("strpos(lower(make), lower($%d)) > 0", argID))
		args = append(args, c.Make)
		argID++
	}
	if c.PriceMin != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argID))
		args = append(args, *c.PriceMin)
		argID++
	}
	if c.PriceMax != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argID))
		args = append(args, *c.PriceMax)
		argID++
	}
	if c.YearMin != nil {
		conditions = append(conditions, fmt.Sprintf("year >= $%d", argID))
		args = append(args, *c.YearMin)
		argID++
	}
	if c.YearMax != nil {
		conditions = append(conditions, fmt.Sprintf("year <= $%d", argID))
		args = append(args, *c.YearMax)
		argID++
	}

	if len(conditions) == 0 {
		return "", nil, argID
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, argID
}

func (r *pgListingRepository) List(ctx context.Context, c filter.Criteria, limit, offset int) ([]model.Listing, int, error) {
	where, args, argID := criteriaClause(c, 1)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cars`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgListingRepository.List count: %w", err)
	}

	query := `SELECT ` + listingColumns + ` FROM cars` + where +
		fmt.Sprintf(" ORDER BY seq ASC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgListingRepository.List query: %w", err)
	}
	defer rows.Close()

	listings := []model.Listing{}
	for rows.Next() {
		l, err := r.scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgListingRepository.List scan: %w", err)
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgListingRepository.List rows: %w", err)
	}
	return listings, total, nil
}

// Update writes only the columns present in patch in a single statement, so
// concurrent updates to different fields of one listing both survive.
func (r *pgListingRepository) Update(ctx context.Context, id string, p model.ListingPatch) (*model.Listing, error) {
	if p.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	var sets []string
	var args []interface{}
	argID := 1
	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if p.Slug != nil {
		set("slug", *p.Slug)
	}
	if p.Make != nil {
		set("make", *p.Make)
	}
	if p.Model != nil {
		set("model", *p.Model)
	}
	if p.Year != nil {
		set("year", *p.Year)
	}
	if p.Price != nil {
		set("price", *p.Price)
	}
	if p.Mileage != nil {
		set("mileage", *p.Mileage)
	}
	if p.FuelType != nil {
		set("fuel_type", *p.FuelType)
	}
	if p.Transmission != nil {
		set("transmission", *p.Transmission)
	}
	if p.ImageURL != nil {
		set("image_url", *p.ImageURL)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Features != nil {
		features := *p.Features
		if features == nil {
			features = []string{}
		}
		set("features", features)
	}
	if p.IsAvailable != nil {
		set("is_available", *p.IsAvailable)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf(`UPDATE cars SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argID, listingColumns)
	args = append(args, id)

	l, err := r.scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgListingRepository.Update: %w", err)
	}
	return l, nil
}

func (r *pgListingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgListingRepository.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgListingRepository.Delete rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *pgListingRepository) scan(row rowScanner) (*model.Listing, error) {
	l := &model.Listing{}
	var features []string
	// pgtype.Map caches scan plans and is not safe for concurrent use.
	types := pgtype.NewMap()
	err := row.Scan(
		&l.ID, &l.Slug, &l.Make, &l.Model, &l.Year, &l.Price, &l.Mileage, &l.FuelType, &l.Transmission,
		&l.ImageURL, &l.Description, types.SQLScanner(&features), &l.IsAvailable, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if features == nil {
		features = []string{}
	}
	l.Features = features
	return l, nil
}
