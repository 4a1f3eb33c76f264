package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/agromart/core"
	"github.com/lborres/agromart/sandbox"
)

const farmColumns = `id, farmer_id, name, description, location, size_hectares, soil_type, irrigation_type,
	is_active, created_at, updated_at`

func scanFarm(row pgx.Row) (core.Farm, error) {
	var f core.Farm
	err := row.Scan(&f.ID, &f.FarmerID, &f.Name, &f.Description, &f.Location, &f.SizeHectares, &f.SoilType,
		&f.IrrigationType, &f.IsActive, &f.CreatedAt.Time, &f.UpdatedAt.Time)
	return f, err
}

func (a *Adapter) CreateFarm(ctx context.Context, f *core.Farm) error {
	query := `INSERT INTO farms (farmer_id, name, description, location, size_hectares, soil_type, irrigation_type, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, created_at, updated_at`
	return a.pool.QueryRow(ctx, query,
		f.FarmerID, f.Name, f.Description, f.Location, f.SizeHectares, f.SoilType, f.IrrigationType, f.IsActive,
	).Scan(&f.ID, &f.CreatedAt.Time, &f.UpdatedAt.Time)
}

func (a *Adapter) GetFarm(ctx context.Context, id int64) (*core.Farm, error) {
	f, err := scanFarm(a.pool.QueryRow(ctx, `SELECT `+farmColumns+` FROM farms WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sandbox.ErrFarmNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (a *Adapter) ListFarmsByFarmer(ctx context.Context, farmerID int64) ([]core.Farm, error) {
	rows, err := a.pool.Query(ctx, `SELECT `+farmColumns+` FROM farms WHERE farmer_id = $1 ORDER BY id`, farmerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Farm, error) {
		return scanFarm(row)
	})
}

func (a *Adapter) CreateListing(ctx context.Context, l *core.Listing) error {
	query := `INSERT INTO listings (title, description, produce_type, quantity_kg, unit_price_ngn, total_price_ngn,
	              harvest_date, expiry_date, status, is_organic, quality_grade, farmer_id, farm_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING id, created_at, updated_at`
	return a.pool.QueryRow(ctx, query,
		l.Title, l.Description, l.ProduceType, l.QuantityKg, l.UnitPriceNGN, l.TotalPriceNGN,
		l.HarvestDate.Time, l.ExpiryDate.Time, l.Status, l.IsOrganic, l.QualityGrade, l.FarmerID, l.FarmID,
	).Scan(&l.ID, &l.CreatedAt.Time, &l.UpdatedAt.Time)
}

func (a *Adapter) ListActiveListings(ctx context.Context) ([]core.Listing, error) {
	query := `SELECT id, title, description, produce_type, quantity_kg, unit_price_ngn, total_price_ngn,
	              harvest_date, expiry_date, status, is_organic, quality_grade, farmer_id, farm_id, created_at, updated_at
	          FROM listings WHERE status = $1 ORDER BY created_at DESC, id DESC`

	rows, err := a.pool.Query(ctx, query, core.ListingActive)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Listing, error) {
		var l core.Listing
		err := row.Scan(&l.ID, &l.Title, &l.Description, &l.ProduceType, &l.QuantityKg, &l.UnitPriceNGN, &l.TotalPriceNGN,
			&l.HarvestDate.Time, &l.ExpiryDate.Time, &l.Status, &l.IsOrganic, &l.QualityGrade, &l.FarmerID, &l.FarmID,
			&l.CreatedAt.Time, &l.UpdatedAt.Time)
		return l, err
	})
}
