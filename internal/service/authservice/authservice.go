package authservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/finance/internal/domain"
	"github.com/GlebRadaev/finance/internal/pg"
	"github.com/GlebRadaev/finance/pkg/auth"
)

//go:generate mockgen -source=authservice.go -destination=mock_authservice.go -package=authservice

var (
	ErrMissingCredentials = errors.New("must provide username and password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid username and/or password")
)

type Repo interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// AccountOpener credits the starting cash of a new account.
type AccountOpener interface {
	OpenAccount(ctx context.Context, userID int) (decimal.Decimal, error)
}

type Service struct {
	userRepo    Repo
	ledger      AccountOpener
	txManager   pg.TXManager
	hashService auth.HashServiceInterface
	jwtService  auth.JWTServiceInterface
	tokenTTL    time.Duration
}

func New(
	repo Repo,
	ledger AccountOpener,
	txManager pg.TXManager,
	hashService auth.HashServiceInterface,
	jwtService auth.JWTServiceInterface,
	tokenTTL time.Duration,
) *Service {
	return &Service{
		userRepo:    repo,
		ledger:      ledger,
		txManager:   txManager,
		hashService: hashService,
		jwtService:  jwtService,
		tokenTTL:    tokenTTL,
	}
}

func (s *Service) Register(ctx context.Context, username, password, confirmation string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if password != confirmation {
		return nil, ErrPasswordMismatch
	}

	hashedPassword, err := s.hashService.HashPassword(password)
	if err != nil {
		zap.L().Error("can't hash password", zap.Error(err))
		return nil, err
	}

	var user *domain.User
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		existingUser, err := s.userRepo.FindByUsername(ctx, username)
		if err != nil {
			zap.L().Error("can't find user", zap.Error(err))
			return err
		}
		if existingUser != nil {
			zap.L().Info("user already exists", zap.String("username", username))
			return domain.ErrUserExists
		}

		user, err = s.userRepo.Create(ctx, &domain.User{
			Username:     username,
			PasswordHash: hashedPassword,
		})
		if err != nil {
			zap.L().Error("can't create user", zap.Error(err))
			return err
		}

		user.Cash, err = s.ledger.OpenAccount(ctx, user.ID)
		if err != nil {
			zap.L().Error("can't open account", zap.Int("userID", user.ID), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("user successfully registered", zap.String("username", username))
	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		zap.L().Error("can't find user", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if user == nil {
		zap.L().Warn("invalid credentials", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	if ok := s.hashService.ComparePassword(user.PasswordHash, password); !ok {
		zap.L().Warn("invalid credentials", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	zap.L().Info("user successfully authenticated", zap.String("username", username))
	return user, nil
}

func (s *Service) GenerateToken(userID int) (string, error) {
	expirationTime := time.Now().Add(s.tokenTTL)

	token, err := s.jwtService.GenerateJWT(userID, expirationTime)
	if err != nil {
		zap.L().Error("can't generate token", zap.Error(err))
		return "", err
	}
	return token, nil
}
