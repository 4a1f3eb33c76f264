package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lborres/agromart/core"
)

// MarketService owns farms and produce listings. Creating either
// requires a KYC-verified farmer.
type MarketService struct {
	farms    FarmStorage
	listings ListingStorage
	logger   *zap.Logger
}

func NewMarketService(farms FarmStorage, listings ListingStorage, logger *zap.Logger) *MarketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketService{farms: farms, listings: listings, logger: logger}
}

func (s *MarketService) Farms(ctx context.Context, owner *core.User) ([]core.Farm, error) {
	farms, err := s.farms.ListFarmsByFarmer(ctx, owner.ID)
	return nonNil(farms), err
}

func (s *MarketService) CreateFarm(ctx context.Context, owner *core.User, input core.FarmInput) (*core.Farm, error) {
	if !owner.IsVerified {
		return nil, fmt.Errorf("%w to create farms", ErrVerificationRequired)
	}
	if err := core.ValidateFarm(input); err != nil {
		return nil, err
	}

	farm := &core.Farm{
		FarmerID:       owner.ID,
		Name:           strings.TrimSpace(input.Name),
		Location:       strings.TrimSpace(input.Location),
		SizeHectares:   input.SizeHectares,
		SoilType:       input.SoilType,
		IrrigationType: input.IrrigationType,
		Description:    strings.TrimSpace(input.Description),
		IsActive:       true,
	}
	if err := s.farms.CreateFarm(ctx, farm); err != nil {
		return nil, fmt.Errorf("failed to create farm: %w", err)
	}

	s.logger.Info("farm created", zap.Int64("farm_id", farm.ID), zap.Int64("owner_id", owner.ID))
	return farm, nil
}

// Listings is public, newest first
func (s *MarketService) Listings(ctx context.Context) ([]core.Listing, error) {
	listings, err := s.listings.ListActiveListings(ctx)
	return nonNil(listings), err
}

func (s *MarketService) CreateListing(ctx context.Context, owner *core.User, input core.ListingInput) (*core.Listing, error) {
	if !owner.IsVerified {
		return nil, fmt.Errorf("%w to create listings", ErrVerificationRequired)
	}
	if err := core.ValidateListing(input); err != nil {
		return nil, err
	}

	farm, err := s.farms.GetFarm(ctx, input.FarmID)
	if errors.Is(err, ErrFarmNotFound) || (err == nil && farm.FarmerID != owner.ID) {
		return nil, ErrFarmOwnership
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load farm: %w", err)
	}

	// validated above
	harvest, _ := core.ParseTimestamp(input.HarvestDate)
	expiry, _ := core.ParseTimestamp(input.ExpiryDate)

	listing := &core.Listing{
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		ProduceType:   input.ProduceType,
		QuantityKg:    input.QuantityKg,
		UnitPriceNGN:  input.UnitPriceNGN,
		TotalPriceNGN: input.QuantityKg * input.UnitPriceNGN,
		HarvestDate:   core.NewTimestamp(harvest),
		ExpiryDate:    core.NewTimestamp(expiry),
		Status:        core.ListingActive,
		IsOrganic:     input.IsOrganic,
		QualityGrade:  input.QualityGrade,
		FarmerID:      owner.ID,
		FarmID:        farm.ID,
	}
	if err := s.listings.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.logger.Info("listing created", zap.Int64("listing_id", listing.ID), zap.Int64("owner_id", owner.ID))
	return listing, nil
}

// nonNil keeps empty results encoding as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
