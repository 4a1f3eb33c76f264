package core

import (
	"net/mail"
	"strings"
)

const (
	MinPasswordLength = 6

	// DateLayout is how harvest and expiry dates are entered and shown
	DateLayout = "2006-01-02"
)

// ValidateLogin is the fast-fail check run before a login request
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return invalid("email", ErrEmailRequired)
	}
	if password == "" {
		return invalid("password", ErrPasswordRequired)
	}
	return nil
}

// ValidateRegistration is the fast-fail check run before a registration
// request. The server validates again regardless.
func ValidateRegistration(input RegisterInput) error {
	if err := validateSignUpCredentials(input); err != nil {
		return err
	}
	if input.Password != input.ConfirmPassword {
		return invalid("confirm_password", ErrPasswordMismatch)
	}
	return validateProfile(input)
}

// ValidateSignUp is the server-side registration check. The password
// confirmation never leaves the client, so it is not compared here.
func ValidateSignUp(input RegisterInput) error {
	if err := validateSignUpCredentials(input); err != nil {
		return err
	}
	return validateProfile(input)
}

func validateSignUpCredentials(input RegisterInput) error {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return invalid("email", ErrEmailRequired)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("email", ErrInvalidEmail)
	}
	if strings.TrimSpace(input.Username) == "" {
		return invalid("username", ErrUsernameRequired)
	}
	if input.Password == "" {
		return invalid("password", ErrPasswordRequired)
	}
	if len(input.Password) < MinPasswordLength {
		return invalid("password", ErrPasswordTooShort)
	}
	return nil
}

func validateProfile(input RegisterInput) error {
	if strings.TrimSpace(input.FullName) == "" {
		return invalid("full_name", ErrFullNameRequired)
	}
	if !input.Role.Valid() || input.Role == RoleAdmin {
		return invalid("role", ErrInvalidRole)
	}
	if input.Role != RoleFarmer && strings.TrimSpace(input.BusinessName) == "" {
		return invalid("business_name", ErrBusinessRequired)
	}
	return nil
}

// ValidateKYCSubmission checks a submission against the caller's current
// application, which may be nil.
func ValidateKYCSubmission(sub KYCSubmission, current *KYCApplication) error {
	if current != nil {
		if current.Status.Active() {
			return invalid("", ErrApplicationActive)
		}
		if current.Status == KYCStatusApproved {
			return invalid("", ErrAlreadyVerified)
		}
	}
	if !sub.DocumentType.Valid() {
		return invalid("document_type", ErrDocumentType)
	}
	if strings.TrimSpace(sub.DocumentNumber) == "" {
		return invalid("document_number", ErrDocumentNumber)
	}
	if sub.DocumentFile == nil || sub.DocumentFile.Reader == nil {
		return invalid("document_file", ErrDocumentFile)
	}
	return nil
}

// ValidateReview requires a selected application and a terminal decision
func ValidateReview(id int64, input ReviewInput) error {
	if id <= 0 {
		return invalid("", ErrNoSelection)
	}
	if !input.Status.Terminal() {
		return invalid("status", ErrInvalidDecision)
	}
	return nil
}

func ValidateFarm(input FarmInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return invalid("name", ErrFarmNameRequired)
	}
	if strings.TrimSpace(input.Location) == "" {
		return invalid("location", ErrFarmLocationRequired)
	}
	if input.SizeHectares <= 0 {
		return invalid("size_hectares", ErrInvalidQuantity)
	}
	return nil
}

func ValidateListing(input ListingInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return invalid("title", ErrTitleRequired)
	}
	if !input.ProduceType.Valid() {
		return invalid("produce_type", ErrProduceType)
	}
	if input.QuantityKg <= 0 {
		return invalid("quantity_kg", ErrInvalidQuantity)
	}
	if input.UnitPriceNGN <= 0 {
		return invalid("unit_price_ngn", ErrInvalidPrice)
	}
	if input.FarmID <= 0 {
		return invalid("farm_id", ErrFarmRequired)
	}
	harvest, err := ParseTimestamp(input.HarvestDate)
	if err != nil || harvest.IsZero() {
		return invalid("harvest_date", ErrDatesRequired)
	}
	expiry, err := ParseTimestamp(input.ExpiryDate)
	if err != nil || expiry.IsZero() {
		return invalid("expiry_date", ErrDatesRequired)
	}
	if !expiry.After(harvest) {
		return invalid("expiry_date", ErrExpiryBeforeHarvest)
	}
	return nil
}
