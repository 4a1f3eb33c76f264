package sandbox

import (
	"context"
	"io"
	"time"

	"github.com/lborres/agromart/core"
)

// Ports implemented by adapters (memory here, pgx in adapters/pgx)

type UserStorage interface {
	// CreateUser assigns ID and CreatedAt
	CreateUser(ctx context.Context, u *core.User) error

	GetUserByID(ctx context.Context, id int64) (*core.User, error)
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
	GetUserByUsername(ctx context.Context, username string) (*core.User, error)

	UpdateUser(ctx context.Context, u *core.User) error
}

type AccountStorage interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetAccountByUserID(ctx context.Context, userID int64) (*Account, error)
}

type SessionStorage interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSessionByHash(ctx context.Context, tokenHash string) (*Session, error)
	DeleteSessionByHash(ctx context.Context, tokenHash string) error

	// Cleanup
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

type KYCStorage interface {
	// CreateApplication assigns ID and CreatedAt and marks the applicant's
	// profile pending. It fails with core.ErrApplicationActive when the
	// user already has an application awaiting review.
	CreateApplication(ctx context.Context, a *core.KYCApplication) error

	// LatestApplication returns the user's most recent application
	LatestApplication(ctx context.Context, userID int64) (*core.KYCApplication, error)
	ListApplications(ctx context.Context) ([]core.KYCApplication, error)

	// ReviewApplication records a decision on an application that is
	// still awaiting review, and mirrors it on the applicant's profile.
	// It fails with ErrNotReviewable otherwise.
	ReviewApplication(ctx context.Context, id, reviewerID int64, input core.ReviewInput, reviewedAt time.Time) (*core.KYCApplication, error)
}

type FarmStorage interface {
	CreateFarm(ctx context.Context, f *core.Farm) error
	GetFarm(ctx context.Context, id int64) (*core.Farm, error)
	ListFarmsByFarmer(ctx context.Context, farmerID int64) ([]core.Farm, error)
}

type ListingStorage interface {
	CreateListing(ctx context.Context, l *core.Listing) error
	// ListActiveListings returns listings with status active, newest first
	ListActiveListings(ctx context.Context) ([]core.Listing, error)
}

type Storage interface {
	UserStorage
	AccountStorage
	SessionStorage
	KYCStorage
	FarmStorage
	ListingStorage

	Ping(ctx context.Context) error
}

// DocumentStore keeps uploaded KYC files and returns a reference to
// each one.
type DocumentStore interface {
	Put(ctx context.Context, ownerID int64, name string, r io.Reader) (string, error)
	Get(ctx context.Context, ref string) (*Document, error)
	Delete(ctx context.Context, ref string) error
}

// SessionCache fronts SessionStorage for token lookups
type SessionCache interface {
	Get(tokenHash string) (*Session, error)
	Set(tokenHash string, session *Session) error
	Delete(tokenHash string) error
}
