package users_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/goliatone/go-users"
	"github.com/stretchr/testify/mock"
)

// testLogger discards everything.
type testLogger struct{}

func (testLogger) Debug(format string, args ...any) {}
func (testLogger) Info(format string, args ...any)  {}
func (testLogger) Warn(format string, args ...any)  {}
func (testLogger) Error(format string, args ...any) {}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MockUserStore implements users.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByUsername(ctx context.Context, username string) (*users.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*users.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) Save(ctx context.Context, user *users.User) (*users.User, error) {
	args := m.Called(ctx, user)
	if u := args.Get(0); u != nil {
		return u.(*users.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// memUsers is an in memory Users repository for flows that touch more of
// the persistence surface than a mock comfortably covers. Only the methods
// the portal routes use are implemented; the embedded interface panics on
// anything else.
type memUsers struct {
	users.Users

	mu      sync.Mutex
	records map[string]*users.User
}

func newMemUsers(seed ...*users.User) *memUsers {
	m := &memUsers{records: map[string]*users.User{}}
	for _, u := range seed {
		u.EnsureDefaults()
		m.records[u.Username] = u
	}
	return m
}

func (m *memUsers) find(match func(*users.User) bool) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.records {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, users.ErrUserNotFound
}

func (m *memUsers) FindByUsername(ctx context.Context, username string) (*users.User, error) {
	return m.find(func(u *users.User) bool { return u.Username == username })
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return m.find(func(u *users.User) bool { return u.Email == email })
}

func (m *memUsers) FindByUserID(ctx context.Context, userID string) (*users.User, error) {
	return m.find(func(u *users.User) bool { return u.UserID == userID })
}

func (m *memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	return err == nil, nil
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUsers) Save(ctx context.Context, record *users.User) (*users.User, error) {
	record.EnsureDefaults()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, u := range m.records {
		if u.ID == record.ID && key != record.Username {
			delete(m.records, key)
		}
	}

	clone := *record
	m.records[record.Username] = &clone

	return record, nil
}

func (m *memUsers) ListUsers(ctx context.Context) ([]*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*users.User, 0, len(m.records))
	for _, u := range m.records {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memUsers) DeleteByUserID(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, u := range m.records {
		if u.UserID == userID {
			delete(m.records, key)
			return nil
		}
	}
	return users.ErrUserNotFound
}

// recordingMailer captures sent emails.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	firstName string
	password  string
	email     string
}

func (m *recordingMailer) SendNewPassword(ctx context.Context, firstName, password, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{firstName: firstName, password: password, email: email})
	return nil
}

func (m *recordingMailer) last() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// memImageStore keeps uploads in memory.
type memImageStore struct {
	mu     sync.Mutex
	images map[string]string
}

func newMemImageStore() *memImageStore {
	return &memImageStore{images: map[string]string{}}
}

func (s *memImageStore) Save(username string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[username] = string(data)

	return s.Path(username), nil
}

func (s *memImageStore) Path(username string) string {
	return "/images/" + username + "/" + username + users.ProfileImageExtension
}

// fakePasswords verifies against cleartext pairs, no hashing involved.
type fakePasswords struct {
	passwords map[string]string
}

func (f fakePasswords) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (f fakePasswords) ComparePasswordAndHash(password, hash string) error {
	if expected, ok := f.passwords[hash]; ok && expected == password {
		return nil
	}
	return users.ErrMismatchedHashAndPassword
}
