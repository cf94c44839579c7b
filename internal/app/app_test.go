package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GlebRadaev/finance/internal/config"
)

type ApplicationSuite struct {
	suite.Suite
	app *Application
	cfg *config.Config
}

func TestApplication(t *testing.T) {
	suite.Run(t, &ApplicationSuite{})
}

func (s *ApplicationSuite) SetupTest() {
	s.app = New()
	s.cfg = &config.Config{
		Address:      "127.0.0.1:0",
		QuoteAddress: "http://localhost:9999",
		QuoteToken:   "test-key",
		QuoteTimeout: time.Second,
		JWTSecret:    "secret",
		TokenTTL:     time.Hour,
		StartingCash: "10000.00",
	}
}

func (s *ApplicationSuite) TestSetup_InMemory() {
	err := s.app.setup(context.Background(), s.cfg)

	s.Require().NoError(err)
	s.NotNil(s.app.repo)
	s.NotNil(s.app.srv)
	s.NotNil(s.app.api)
	s.NotNil(s.app.auditor)
}

func (s *ApplicationSuite) TestSetup_WarnsOnDefaultJWTSecret() {
	core, logs := observer.New(zapcore.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	s.cfg.JWTSecret = config.DefaultJWTSecret
	s.Require().NoError(s.app.setup(context.Background(), s.cfg))

	s.Equal(1, logs.FilterMessageSnippet("JWT_SECRET").Len())
}

func (s *ApplicationSuite) TestSetup_CustomJWTSecretIsQuiet() {
	core, logs := observer.New(zapcore.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	s.Require().NoError(s.app.setup(context.Background(), s.cfg))

	s.Zero(logs.FilterMessageSnippet("JWT_SECRET").Len())
}

func (s *ApplicationSuite) TestSetup_MissingAPIKey() {
	s.cfg.QuoteToken = ""

	err := s.app.setup(context.Background(), s.cfg)

	s.ErrorIs(err, ErrMissingAPIKey)
	s.Nil(s.app.srv)
}

func (s *ApplicationSuite) TestSetup_InvalidStartingCash() {
	s.cfg.StartingCash = "lots"

	err := s.app.setup(context.Background(), s.cfg)

	s.Require().Error(err)
	s.Contains(err.Error(), "invalid starting cash")
}

func (s *ApplicationSuite) TestSetup_BadDatabaseDSN() {
	s.cfg.Database = "://not-a-dsn"

	err := s.app.setup(context.Background(), s.cfg)

	s.Require().Error(err)
	s.Contains(err.Error(), "can't build pgx pool")
}

func (s *ApplicationSuite) TestGracefulShutdown() {
	ctx, cancel := context.WithCancel(context.Background())
	s.Require().NoError(s.app.setup(ctx, s.cfg))
	s.Require().NoError(s.app.startHTTPServer(ctx))
	s.app.startAuditor(ctx)

	cancel()
	err := s.app.Wait(ctx, cancel)

	s.NoError(err)
}

func (s *ApplicationSuite) TestWait() {
	ctx, cancel := context.WithCancel(context.Background())

	s.app.errCh = make(chan error)
	go func() {
		s.app.errCh <- fmt.Errorf("mock error")
	}()

	err := s.app.Wait(ctx, cancel)

	s.Require().Error(err)
	s.Contains(err.Error(), "mock error")
}
