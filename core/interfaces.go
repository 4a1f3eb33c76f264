package core

import (
	"context"
	"io"
)

// Ports define interfaces for external dependencies

// ============================================
// CREDENTIAL PORT (durable token storage)
// ============================================

// CredentialStore persists the bearer token across restarts.
// Load returns "" with a nil error when nothing is stored.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// ============================================
// REMOTE API PORTS
// ============================================

// RegisterInput is the full registration payload
type RegisterInput struct {
	Email                string `json:"email"`
	Username             string `json:"username"`
	Password             string `json:"password"`
	ConfirmPassword      string `json:"-"`
	FullName             string `json:"full_name"`
	Phone                string `json:"phone"`
	Role                 Role   `json:"role"`
	BusinessName         string `json:"business_name,omitempty"`
	BusinessAddress      string `json:"business_address,omitempty"`
	BusinessRegistration string `json:"business_registration,omitempty"`
}

// AuthAPI covers the auth/* endpoints
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Me(ctx context.Context, token string) (*User, error)
	Logout(ctx context.Context, token string) error
}

// Upload is one file part of a KYC submission
type Upload struct {
	Name   string
	Reader io.Reader
}

// KYCSubmission is the multipart payload of kyc/upload
type KYCSubmission struct {
	DocumentType         DocumentType
	DocumentNumber       string
	DocumentFile         *Upload
	SelfieFile           *Upload
	BusinessRegistration *Upload
	BusinessAddress      string
}

// ReviewInput is an admin decision on one application
type ReviewInput struct {
	Status     KYCStatus `json:"status"`
	AdminNotes string    `json:"admin_notes"`
}

type FarmInput struct {
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Location       string  `json:"location"`
	SizeHectares   float64 `json:"size_hectares"`
	SoilType       string  `json:"soil_type,omitempty"`
	IrrigationType string  `json:"irrigation_type,omitempty"`
}

// ListingInput creates a listing on one of the caller's farms. Dates are
// YYYY-MM-DD; full datetimes are accepted too.
type ListingInput struct {
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	ProduceType  ProduceType `json:"produce_type"`
	QuantityKg   float64     `json:"quantity_kg"`
	UnitPriceNGN float64     `json:"unit_price_ngn"`
	HarvestDate  string      `json:"harvest_date"`
	ExpiryDate   string      `json:"expiry_date"`
	IsOrganic    bool        `json:"is_organic"`
	QualityGrade string      `json:"quality_grade,omitempty"`
	FarmID       int64       `json:"farm_id"`
}

// MarketAPI covers the page resources. token may be "" where the
// endpoint allows anonymous access. KYCStatus returns nil, nil when the
// caller has never applied.
type MarketAPI interface {
	Farms(ctx context.Context, token string) ([]Farm, error)
	CreateFarm(ctx context.Context, token string, input FarmInput) (*Farm, error)
	Listings(ctx context.Context, token string) ([]Listing, error)
	CreateListing(ctx context.Context, token string, input ListingInput) (*Listing, error)
	KYCStatus(ctx context.Context, token string) (*KYCApplication, error)
	SubmitKYC(ctx context.Context, token string, sub KYCSubmission) (*KYCApplication, error)
	KYCQueue(ctx context.Context, token string) ([]KYCApplication, error)
	ReviewKYC(ctx context.Context, token string, id int64, input ReviewInput) (*KYCApplication, error)
}

// API is everything the client needs from the remote side
type API interface {
	AuthAPI
	MarketAPI
}
