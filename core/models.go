package core

import "slices"

// Role determines which pages and actions a user may reach
type Role string

const (
	RoleFarmer     Role = "farmer"
	RoleAggregator Role = "aggregator"
	RoleBuyer      Role = "buyer"
	RoleLogistics  Role = "logistics"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleAggregator, RoleBuyer, RoleLogistics, RoleAdmin:
		return true
	}
	return false
}

// KYCStatus is the state of a KYC application, mirrored on the user profile
type KYCStatus string

const (
	KYCStatusPending     KYCStatus = "pending"
	KYCStatusUnderReview KYCStatus = "under_review"
	KYCStatusApproved    KYCStatus = "approved"
	KYCStatusRejected    KYCStatus = "rejected"
)

// Active reports whether the application is still awaiting a decision.
func (s KYCStatus) Active() bool {
	return s == KYCStatusPending || s == KYCStatusUnderReview
}

// Terminal reports whether s is a review decision.
func (s KYCStatus) Terminal() bool {
	return s == KYCStatusApproved || s == KYCStatusRejected
}

type DocumentType string

const (
	DocumentNationalID     DocumentType = "national_id"
	DocumentDriversLicense DocumentType = "drivers_license"
	DocumentPassport       DocumentType = "passport"
	DocumentCACCertificate DocumentType = "cac_certificate"
	DocumentUtilityBill    DocumentType = "utility_bill"
	DocumentBankStatement  DocumentType = "bank_statement"
	DocumentOther          DocumentType = "other"
)

// DocumentTypes lists the accepted document types in display order
var DocumentTypes = []DocumentType{
	DocumentNationalID,
	DocumentDriversLicense,
	DocumentPassport,
	DocumentCACCertificate,
	DocumentUtilityBill,
	DocumentBankStatement,
	DocumentOther,
}

func (d DocumentType) Valid() bool {
	return slices.Contains(DocumentTypes, d)
}

// User is the profile resolved from a credential
type User struct {
	ID                   int64     `json:"id"`
	Email                string    `json:"email"`
	Username             string    `json:"username"`
	FullName             string    `json:"full_name"`
	Phone                string    `json:"phone,omitempty"`
	Role                 Role      `json:"role"`
	IsActive             bool      `json:"is_active"`
	IsVerified           bool      `json:"is_verified"`
	KYCStatus            KYCStatus `json:"kyc_status"`
	BusinessName         string    `json:"business_name,omitempty"`
	BusinessAddress      string    `json:"business_address,omitempty"`
	BusinessRegistration string    `json:"business_registration,omitempty"`
	CreatedAt            Timestamp `json:"created_at"`
	UpdatedAt            Timestamp `json:"updated_at"`
}

// AuthResult is returned by login and registration
type AuthResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// ExpiresIn is the credential lifetime in seconds
	ExpiresIn int64 `json:"expires_in"`
	User      *User `json:"user"`
}

// KYCApplication is a submitted set of identity documents. The file
// fields hold server-side references, not contents.
type KYCApplication struct {
	ID                   int64        `json:"id"`
	UserID               int64        `json:"user_id"`
	DocumentType         DocumentType `json:"document_type"`
	DocumentNumber       string       `json:"document_number"`
	DocumentFilePath     string       `json:"document_file_path"`
	SelfieFilePath       string       `json:"selfie_file_path,omitempty"`
	BusinessRegistration string       `json:"business_registration,omitempty"`
	BusinessAddress      string       `json:"business_address,omitempty"`
	Status               KYCStatus    `json:"status"`
	AdminNotes           string       `json:"admin_notes,omitempty"`
	ReviewedBy           *int64       `json:"reviewed_by,omitempty"`
	ReviewedAt           *Timestamp   `json:"reviewed_at,omitempty"`
	CreatedAt            Timestamp    `json:"created_at"`
	UpdatedAt            Timestamp    `json:"updated_at"`
}

type Farm struct {
	ID             int64     `json:"id"`
	FarmerID       int64     `json:"farmer_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Location       string    `json:"location"`
	SizeHectares   float64   `json:"size_hectares"`
	SoilType       string    `json:"soil_type,omitempty"`
	IrrigationType string    `json:"irrigation_type,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      Timestamp `json:"created_at"`
	UpdatedAt      Timestamp `json:"updated_at"`
}

type ProduceType string

const (
	ProduceGrains     ProduceType = "grains"
	ProduceVegetables ProduceType = "vegetables"
	ProduceFruits     ProduceType = "fruits"
	ProduceTubers     ProduceType = "tubers"
	ProduceLegumes    ProduceType = "legumes"
	ProduceOther      ProduceType = "other"
)

var ProduceTypes = []ProduceType{
	ProduceGrains,
	ProduceVegetables,
	ProduceFruits,
	ProduceTubers,
	ProduceLegumes,
	ProduceOther,
}

func (p ProduceType) Valid() bool {
	return slices.Contains(ProduceTypes, p)
}

type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingSold      ListingStatus = "sold"
	ListingExpired   ListingStatus = "expired"
	ListingCancelled ListingStatus = "cancelled"
)

// Listing is a quantity of produce offered for sale. Quantities are in
// kilograms and prices in naira.
type Listing struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description,omitempty"`
	ProduceType   ProduceType   `json:"produce_type"`
	QuantityKg    float64       `json:"quantity_kg"`
	UnitPriceNGN  float64       `json:"unit_price_ngn"`
	TotalPriceNGN float64       `json:"total_price_ngn"`
	HarvestDate   Timestamp     `json:"harvest_date"`
	ExpiryDate    Timestamp     `json:"expiry_date"`
	Status        ListingStatus `json:"status"`
	IsOrganic     bool          `json:"is_organic"`
	QualityGrade  string        `json:"quality_grade,omitempty"`
	FarmerID      int64         `json:"farmer_id"`
	FarmID        int64         `json:"farm_id"`
	CreatedAt     Timestamp     `json:"created_at"`
	UpdatedAt     Timestamp     `json:"updated_at"`
}
