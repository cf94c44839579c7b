package authservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/finance/internal/domain"
	"github.com/GlebRadaev/finance/internal/pg"
	"github.com/GlebRadaev/finance/pkg/auth"
)

type mocks struct {
	repo      *MockRepo
	ledger    *MockAccountOpener
	txManager *pg.MockTXManager
	hasher    *auth.MockHashServiceInterface
	jwt       *auth.MockJWTServiceInterface
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		repo:      NewMockRepo(ctrl),
		ledger:    NewMockAccountOpener(ctrl),
		txManager: pg.NewMockTXManager(ctrl),
		hasher:    auth.NewMockHashServiceInterface(ctrl),
		jwt:       auth.NewMockJWTServiceInterface(ctrl),
	}
	service := New(m.repo, m.ledger, m.txManager, m.hasher, m.jwt, time.Hour)
	return service, m
}

func (m *mocks) runInTx() {
	m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
			return fn(ctx)
		})
}

func TestRegister(t *testing.T) {
	startingCash := decimal.RequireFromString("10000.00")

	tests := []struct {
		name          string
		username      string
		password      string
		confirmation  string
		prepareMock   func(m *mocks)
		expectedUser  *domain.User
		expectedError error
	}{
		{
			name:         "Successful registration",
			username:     "alice",
			password:     "secret",
			confirmation: "secret",
			prepareMock: func(m *mocks) {
				m.hasher.EXPECT().HashPassword("secret").Return("hashed", nil)
				m.runInTx()
				m.repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(nil, nil)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, user *domain.User) (*domain.User, error) {
					user.ID = 1
					return user, nil
				})
				m.ledger.EXPECT().OpenAccount(gomock.Any(), 1).Return(startingCash, nil)
			},
			expectedUser: &domain.User{
				ID:           1,
				Username:     "alice",
				PasswordHash: "hashed",
				Cash:         startingCash,
			},
		},
		{
			name:          "Missing username",
			username:      "  ",
			password:      "secret",
			confirmation:  "secret",
			prepareMock:   func(m *mocks) {},
			expectedError: ErrMissingCredentials,
		},
		{
			name:          "Missing password",
			username:      "alice",
			prepareMock:   func(m *mocks) {},
			expectedError: ErrMissingCredentials,
		},
		{
			name:          "Confirmation mismatch",
			username:      "alice",
			password:      "secret",
			confirmation:  "secreT",
			prepareMock:   func(m *mocks) {},
			expectedError: ErrPasswordMismatch,
		},
		{
			name:         "User already exists",
			username:     "alice",
			password:     "secret",
			confirmation: "secret",
			prepareMock: func(m *mocks) {
				m.hasher.EXPECT().HashPassword("secret").Return("hashed", nil)
				m.runInTx()
				m.repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(&domain.User{Username: "alice"}, nil)
			},
			expectedError: domain.ErrUserExists,
		},
		{
			name:         "Error hashing password",
			username:     "alice",
			password:     "secret",
			confirmation: "secret",
			prepareMock: func(m *mocks) {
				m.hasher.EXPECT().HashPassword("secret").Return("", errors.New("hashing error"))
			},
			expectedError: errors.New("hashing error"),
		},
		{
			name:         "Error creating user",
			username:     "alice",
			password:     "secret",
			confirmation: "secret",
			prepareMock: func(m *mocks) {
				m.hasher.EXPECT().HashPassword("secret").Return("hashed", nil)
				m.runInTx()
				m.repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(nil, nil)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("creation failed"))
			},
			expectedError: errors.New("creation failed"),
		},
		{
			name:         "Error opening account",
			username:     "alice",
			password:     "secret",
			confirmation: "secret",
			prepareMock: func(m *mocks) {
				m.hasher.EXPECT().HashPassword("secret").Return("hashed", nil)
				m.runInTx()
				m.repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(nil, nil)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, user *domain.User) (*domain.User, error) {
					user.ID = 1
					return user, nil
				})
				m.ledger.EXPECT().OpenAccount(gomock.Any(), 1).Return(decimal.Zero, domain.ErrStoreUnavailable)
			},
			expectedError: domain.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			user, err := service.Register(context.Background(), tt.username, tt.password, tt.confirmation)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	stored := &domain.User{
		ID:           1,
		Username:     "alice",
		PasswordHash: "hashed",
	}

	tests := []struct {
		name          string
		username      string
		password      string
		prepareMock   func(m *mocks)
		expectedUser  *domain.User
		expectedError error
	}{
		{
			name:     "Successful authentication",
			username: "alice",
			password: "secret",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(stored, nil)
				m.hasher.EXPECT().ComparePassword("hashed", "secret").Return(true)
			},
			expectedUser: stored,
		},
		{
			name:     "User not found",
			username: "bob",
			password: "secret",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().FindByUsername(gomock.Any(), "bob").Return(nil, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "Incorrect password",
			username: "alice",
			password: "wrong",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(stored, nil)
				m.hasher.EXPECT().ComparePassword("hashed", "wrong").Return(false)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "Store error",
			username: "alice",
			password: "secret",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().FindByUsername(gomock.Any(), "alice").Return(nil, errors.New("db error"))
			},
			expectedError: domain.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			user, err := service.Authenticate(context.Background(), tt.username, tt.password)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user)
			}
		})
	}
}

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name          string
		userID        int
		prepareMock   func(m *mocks)
		expectedToken string
		expectedError error
	}{
		{
			name:   "Successful token generation",
			userID: 1,
			prepareMock: func(m *mocks) {
				m.jwt.EXPECT().GenerateJWT(1, gomock.Any()).DoAndReturn(func(_ int, exp time.Time) (string, error) {
					assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)
					return "generated-token", nil
				})
			},
			expectedToken: "generated-token",
		},
		{
			name:   "Error generating token",
			userID: 1,
			prepareMock: func(m *mocks) {
				m.jwt.EXPECT().GenerateJWT(1, gomock.Any()).Return("", errors.New("can't generate token"))
			},
			expectedError: errors.New("can't generate token"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			token, err := service.GenerateToken(tt.userID)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedToken, token)
			}
		})
	}
}
