package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/charleshall888/Vacation-Finder/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		address TEXT DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		beach_walk_minutes INTEGER,
		distance_from_origin_miles DOUBLE PRECISION,
		region TEXT DEFAULT '',
		bedrooms INTEGER NOT NULL,
		bathrooms DOUBLE PRECISION,
		max_guests INTEGER,
		price_per_week DOUBLE PRECISION NOT NULL,
		cleaning_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_price DOUBLE PRECISION NOT NULL,
		review_score DOUBLE PRECISION,
		review_count INTEGER NOT NULL DEFAULT 0,
		amenities JSONB NOT NULL DEFAULT '{}',
		photos JSONB NOT NULL DEFAULT '[]',
		verified BOOLEAN NOT NULL DEFAULT TRUE,
		photos_archived BOOLEAN NOT NULL DEFAULT FALSE,
		last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		value_score DOUBLE PRECISION
	);

	CREATE INDEX IF NOT EXISTS idx_properties_source ON properties(source);
	CREATE INDEX IF NOT EXISTS idx_properties_total_price ON properties(total_price);

	CREATE TABLE IF NOT EXISTS search_configs (
		id BIGSERIAL PRIMARY KEY,
		origin_city TEXT NOT NULL,
		origin_state TEXT NOT NULL,
		origin_latitude DOUBLE PRECISION,
		origin_longitude DOUBLE PRECISION,
		max_distance_miles INTEGER NOT NULL,
		min_bedrooms INTEGER NOT NULL,
		max_bedrooms INTEGER NOT NULL,
		min_guests INTEGER,
		max_price_per_week DOUBLE PRECISION NOT NULL,
		date_start DATE NOT NULL,
		date_end DATE NOT NULL,
		max_beach_walk_minutes INTEGER NOT NULL,
		required_amenities JSONB NOT NULL DEFAULT '[]',
		scoring_weights JSONB NOT NULL DEFAULT '{}',
		name TEXT DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// =============================================================================
// Properties
// =============================================================================

const propertyColumns = `id, source, name, url, address, latitude, longitude,
	beach_walk_minutes, distance_from_origin_miles, region, bedrooms, bathrooms,
	max_guests, price_per_week, cleaning_fee, total_price, review_score,
	review_count, amenities, photos, verified, photos_archived, last_updated,
	value_score`

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID, &p.Source, &p.Name, &p.URL, &p.Address, &p.Latitude, &p.Longitude,
		&p.BeachWalkMinutes, &p.DistanceFromOriginMiles, &p.Region, &p.Bedrooms, &p.Bathrooms,
		&p.MaxGuests, &p.PricePerWeek, &p.CleaningFee, &p.TotalPrice, &p.ReviewScore,
		&p.ReviewCount, &p.Amenities, &p.Photos, &p.Verified, &p.PhotosArchived, &p.LastUpdated,
		&p.ValueScore,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProperty fully overwrites any prior snapshot with the same composite
// ID and stamps last_updated with the operation time. No partial merge.
func (s *PostgresStore) UpsertProperty(ctx context.Context, p *models.Property) error {
	p.LastUpdated = time.Now()

	query := `
		INSERT INTO properties (
			id, source, name, url, address, latitude, longitude,
			beach_walk_minutes, distance_from_origin_miles, region, bedrooms, bathrooms,
			max_guests, price_per_week, cleaning_fee, total_price, review_score,
			review_count, amenities, photos, verified, photos_archived, last_updated, value_score
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		)
		ON CONFLICT (id) DO UPDATE SET
			source = EXCLUDED.source,
			name = EXCLUDED.name,
			url = EXCLUDED.url,
			address = EXCLUDED.address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			beach_walk_minutes = EXCLUDED.beach_walk_minutes,
			distance_from_origin_miles = EXCLUDED.distance_from_origin_miles,
			region = EXCLUDED.region,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			max_guests = EXCLUDED.max_guests,
			price_per_week = EXCLUDED.price_per_week,
			cleaning_fee = EXCLUDED.cleaning_fee,
			total_price = EXCLUDED.total_price,
			review_score = EXCLUDED.review_score,
			review_count = EXCLUDED.review_count,
			amenities = EXCLUDED.amenities,
			photos = EXCLUDED.photos,
			verified = EXCLUDED.verified,
			photos_archived = EXCLUDED.photos_archived,
			last_updated = EXCLUDED.last_updated,
			value_score = EXCLUDED.value_score`

	_, err := s.pool.Exec(ctx, query,
		p.ID, p.Source, p.Name, p.URL, p.Address, p.Latitude, p.Longitude,
		p.BeachWalkMinutes, p.DistanceFromOriginMiles, p.Region, p.Bedrooms, p.Bathrooms,
		p.MaxGuests, p.PricePerWeek, p.CleaningFee, p.TotalPrice, p.ReviewScore,
		p.ReviewCount, p.Amenities, p.Photos, p.Verified, p.PhotosArchived, p.LastUpdated,
		p.ValueScore,
	)
	return err
}

func (s *PostgresStore) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	p, err := scanProperty(s.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProperties returns one page of filtered results, the unpaginated
// filtered total, and max(last_updated) across the whole table.
func (s *PostgresStore) ListProperties(ctx context.Context, filter models.PropertyFilter, sort models.SortKey, skip, limit int) (*models.PropertyPage, error) {
	where := ""
	var args []any
	addClause := func(clause string, arg any) {
		args = append(args, arg)
		cond := fmt.Sprintf(clause, len(args))
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	if filter.Source != "" {
		addClause("source = $%d", filter.Source)
	}
	if filter.MinBedrooms > 0 {
		addClause("bedrooms >= $%d", filter.MinBedrooms)
	}
	if filter.MaxPrice > 0 {
		addClause("total_price <= $%d", filter.MaxPrice)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM properties` + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	orderBy := orderClause(sort)
	pageArgs := append(args, limit, skip)
	query := fmt.Sprintf(`SELECT %s FROM properties%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		propertyColumns, where, orderBy, len(args)+1, len(args)+2)

	rows, err := s.pool.Query(ctx, query, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	properties := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lastRefreshed, err := s.LastRefreshed(ctx)
	if err != nil {
		return nil, err
	}

	return &models.PropertyPage{
		Properties:    properties,
		Total:         total,
		LastRefreshed: lastRefreshed,
	}, nil
}

func orderClause(sort models.SortKey) string {
	switch sort {
	case models.SortPrice:
		return "total_price ASC, id"
	case models.SortReviews:
		return "review_score DESC NULLS LAST, id"
	case models.SortBeach:
		return "beach_walk_minutes ASC NULLS LAST, id"
	default:
		return "value_score DESC NULLS LAST, id"
	}
}

// LastRefreshed is the freshness timestamp: the most recent last_updated
// across every stored property, nil when the store is empty.
func (s *PostgresStore) LastRefreshed(ctx context.Context) (*time.Time, error) {
	var t *time.Time
	if err := s.pool.QueryRow(ctx, `SELECT MAX(last_updated) FROM properties`).Scan(&t); err != nil {
		return nil, fmt.Errorf("last refreshed: %w", err)
	}
	return t, nil
}

// AllProperties loads the full store snapshot for ranking and rescoring.
func (s *PostgresStore) AllProperties(ctx context.Context) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

func (s *PostgresStore) DeleteProperty(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteAllProperties(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM properties`)
	return err
}

// UpdateValueScore writes a recomputed score without touching last_updated;
// scoring is derived data, not a refresh.
func (s *PostgresStore) UpdateValueScore(ctx context.Context, id string, score *float64) error {
	_, err := s.pool.Exec(ctx, `UPDATE properties SET value_score = $2 WHERE id = $1`, id, score)
	return err
}

// PropertiesWithUnarchivedPhotos returns candidates for the photo worker.
func (s *PostgresStore) PropertiesWithUnarchivedPhotos(ctx context.Context, limit int) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + `
		FROM properties
		WHERE photos_archived = FALSE AND jsonb_array_length(photos) > 0
		ORDER BY last_updated
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

func (s *PostgresStore) MarkPhotosArchived(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `UPDATE properties SET photos_archived = TRUE WHERE id = $1`, id)
	return err
}

// =============================================================================
// Search configs
// =============================================================================

const searchConfigColumns = `id, origin_city, origin_state, origin_latitude,
	origin_longitude, max_distance_miles, min_bedrooms, max_bedrooms, min_guests,
	max_price_per_week, date_start, date_end, max_beach_walk_minutes,
	required_amenities, scoring_weights, name, created_at, updated_at`

func scanSearchConfig(row pgx.Row) (*models.SearchConfig, error) {
	var c models.SearchConfig
	err := row.Scan(
		&c.ID, &c.OriginCity, &c.OriginState, &c.OriginLatitude,
		&c.OriginLongitude, &c.MaxDistanceMiles, &c.MinBedrooms, &c.MaxBedrooms, &c.MinGuests,
		&c.MaxPricePerWeek, &c.DateStart, &c.DateEnd, &c.MaxBeachWalkMinutes,
		&c.RequiredAmenities, &c.ScoringWeights, &c.Name, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CurrentSearchConfig returns the most recently updated config, or nil when
// none has ever been saved. An empty store is not an error.
func (s *PostgresStore) CurrentSearchConfig(ctx context.Context) (*models.SearchConfig, error) {
	query := `SELECT ` + searchConfigColumns + `
		FROM search_configs ORDER BY updated_at DESC LIMIT 1`

	c, err := scanSearchConfig(s.pool.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PostgresStore) GetSearchConfig(ctx context.Context, id int64) (*models.SearchConfig, error) {
	query := `SELECT ` + searchConfigColumns + ` FROM search_configs WHERE id = $1`

	c, err := scanSearchConfig(s.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateSearchConfig inserts a new immutable row. Prior rows are never
// mutated; the newest updated_at wins as the current config.
func (s *PostgresStore) CreateSearchConfig(ctx context.Context, c *models.SearchConfig) error {
	query := `
		INSERT INTO search_configs (
			origin_city, origin_state, origin_latitude, origin_longitude,
			max_distance_miles, min_bedrooms, max_bedrooms, min_guests,
			max_price_per_week, date_start, date_end, max_beach_walk_minutes,
			required_amenities, scoring_weights, name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`

	return s.pool.QueryRow(ctx, query,
		c.OriginCity, c.OriginState, c.OriginLatitude, c.OriginLongitude,
		c.MaxDistanceMiles, c.MinBedrooms, c.MaxBedrooms, c.MinGuests,
		c.MaxPricePerWeek, c.DateStart, c.DateEnd, c.MaxBeachWalkMinutes,
		c.RequiredAmenities, c.ScoringWeights, c.Name,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}
