package sandbox

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/lborres/agromart/core"
)

// MemoryStorage keeps everything in process. Records are copied in and
// out so callers never share state with the store.
type MemoryStorage struct {
	mu sync.RWMutex

	users        map[int64]*core.User
	accounts     map[int64]*Account
	sessions     map[string]*Session
	applications []*core.KYCApplication
	farms        []*core.Farm
	listings     []*core.Listing

	nextUser, nextApplication, nextFarm, nextListing int64

	now func() time.Time
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:    make(map[int64]*core.User),
		accounts: make(map[int64]*Account),
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (m *MemoryStorage) Ping(context.Context) error { return nil }

func (m *MemoryStorage) CreateUser(_ context.Context, u *core.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrUserExists
		}
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
	}

	m.nextUser++
	u.ID = m.nextUser
	u.CreatedAt = core.NewTimestamp(m.now())
	u.UpdatedAt = u.CreatedAt
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

func (m *MemoryStorage) GetUserByID(_ context.Context, id int64) (*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (m *MemoryStorage) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryStorage) GetUserByUsername(_ context.Context, username string) (*core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryStorage) UpdateUser(_ context.Context, u *core.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	u.UpdatedAt = core.NewTimestamp(m.now())
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

func (m *MemoryStorage) CreateAccount(_ context.Context, a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[a.UserID]; !ok {
		return ErrUserNotFound
	}
	now := m.now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	stored := *a
	m.accounts[a.UserID] = &stored
	return nil
}

func (m *MemoryStorage) GetAccountByUserID(_ context.Context, userID int64) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	out := *a
	return &out, nil
}

func (m *MemoryStorage) CreateSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *s
	m.sessions[s.TokenHash] = &stored
	return nil
}

func (m *MemoryStorage) GetSessionByHash(_ context.Context, tokenHash string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[tokenHash]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := *s
	return &out, nil
}

func (m *MemoryStorage) DeleteSessionByHash(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[tokenHash]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, tokenHash)
	return nil
}

func (m *MemoryStorage) DeleteExpiredSessions(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for hash, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, hash)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStorage) latest(userID int64) *core.KYCApplication {
	for i := len(m.applications) - 1; i >= 0; i-- {
		if m.applications[i].UserID == userID {
			return m.applications[i]
		}
	}
	return nil
}

func (m *MemoryStorage) CreateApplication(_ context.Context, a *core.KYCApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[a.UserID]
	if !ok {
		return ErrUserNotFound
	}
	if cur := m.latest(a.UserID); cur != nil && cur.Status.Active() {
		return core.ErrApplicationActive
	}

	m.nextApplication++
	a.ID = m.nextApplication
	a.CreatedAt = core.NewTimestamp(m.now())
	a.UpdatedAt = a.CreatedAt
	stored := *a
	m.applications = append(m.applications, &stored)

	user.KYCStatus = a.Status
	user.UpdatedAt = a.CreatedAt
	return nil
}

func (m *MemoryStorage) LatestApplication(_ context.Context, userID int64) (*core.KYCApplication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a := m.latest(userID)
	if a == nil {
		return nil, ErrApplicationNotFound
	}
	out := *a
	return &out, nil
}

func (m *MemoryStorage) ListApplications(context.Context) ([]core.KYCApplication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.KYCApplication, 0, len(m.applications))
	for _, a := range m.applications {
		out = append(out, *a)
	}
	return out, nil
}

func (m *MemoryStorage) ReviewApplication(_ context.Context, id, reviewerID int64, input core.ReviewInput, reviewedAt time.Time) (*core.KYCApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.applications, func(a *core.KYCApplication) bool { return a.ID == id })
	if idx < 0 {
		return nil, ErrApplicationNotFound
	}
	a := m.applications[idx]
	if !a.Status.Active() {
		return nil, ErrNotReviewable
	}

	at := core.NewTimestamp(reviewedAt)
	reviewer := reviewerID
	a.Status = input.Status
	a.AdminNotes = input.AdminNotes
	a.ReviewedBy = &reviewer
	a.ReviewedAt = &at
	a.UpdatedAt = at

	if user, ok := m.users[a.UserID]; ok {
		user.KYCStatus = input.Status
		user.IsVerified = input.Status == core.KYCStatusApproved
		user.UpdatedAt = at
	}

	out := *a
	return &out, nil
}

func (m *MemoryStorage) CreateFarm(_ context.Context, f *core.Farm) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextFarm++
	f.ID = m.nextFarm
	f.CreatedAt = core.NewTimestamp(m.now())
	f.UpdatedAt = f.CreatedAt
	stored := *f
	m.farms = append(m.farms, &stored)
	return nil
}

func (m *MemoryStorage) GetFarm(_ context.Context, id int64) (*core.Farm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, f := range m.farms {
		if f.ID == id {
			out := *f
			return &out, nil
		}
	}
	return nil, ErrFarmNotFound
}

func (m *MemoryStorage) ListFarmsByFarmer(_ context.Context, farmerID int64) ([]core.Farm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []core.Farm{}
	for _, f := range m.farms {
		if f.FarmerID == farmerID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *MemoryStorage) CreateListing(_ context.Context, l *core.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextListing++
	l.ID = m.nextListing
	l.CreatedAt = core.NewTimestamp(m.now())
	l.UpdatedAt = l.CreatedAt
	stored := *l
	m.listings = append(m.listings, &stored)
	return nil
}

func (m *MemoryStorage) ListActiveListings(context.Context) ([]core.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []core.Listing{}
	for i := len(m.listings) - 1; i >= 0; i-- {
		if l := m.listings[i]; l.Status == core.ListingActive {
			out = append(out, *l)
		}
	}
	return out, nil
}
