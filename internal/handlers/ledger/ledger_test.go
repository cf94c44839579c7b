package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/finance/internal/domain"
	"github.com/GlebRadaev/finance/internal/dto"
	"github.com/GlebRadaev/finance/pkg/auth"
	"github.com/GlebRadaev/finance/pkg/utils"
)

func NewMock(t *testing.T) (*LedgerHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	return handler, service
}

func newRequest(method, url, body string, userID int) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader([]byte(body)))
	if userID != 0 {
		req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, userID))
	}
	return req
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGetPortfolio(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		userID        int
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name:   "Portfolio returned",
			userID: 1,
			prepareMock: func() {
				service.EXPECT().GetPortfolio(gomock.Any(), 1).Return(&domain.Portfolio{
					Positions: []domain.Position{
						{Symbol: "AAA", Name: "Triple A Inc", Shares: 10, CurrentPrice: dec("50.00")},
					},
					Cash:       dec("9500.00"),
					TotalValue: dec("10000.00"),
				}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Unauthorized",
			prepareMock:   func() {},
			expectedCode:  http.StatusUnauthorized,
			expectedError: "Unauthorized",
		},
		{
			name:   "Quotes unavailable",
			userID: 1,
			prepareMock: func() {
				service.EXPECT().GetPortfolio(gomock.Any(), 1).Return(nil, domain.ErrQuoteUnavailable)
			},
			expectedCode:  http.StatusServiceUnavailable,
			expectedError: "quote service unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			rr := httptest.NewRecorder()
			handler.GetPortfolio(rr, newRequest(http.MethodGet, "/api/user/portfolio", "", tt.userID))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Error)
				return
			}
			var resp dto.PortfolioResponseDTO
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, "9500.00", resp.Cash)
			assert.Equal(t, "$10,000.00", resp.TotalDisplay)
			require.Len(t, resp.Positions, 1)
			assert.Equal(t, "500.00", resp.Positions[0].Value)
		})
	}
}

func TestDeposit(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
		expectedCash  string
	}{
		{
			name: "Deposit as string",
			body: `{"amount":"150.00"}`,
			prepareMock: func() {
				service.EXPECT().Deposit(gomock.Any(), 1, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ int, amount decimal.Decimal) (decimal.Decimal, error) {
						assert.True(t, amount.Equal(dec("150")))
						return dec("10150.00"), nil
					})
			},
			expectedCode: http.StatusOK,
			expectedCash: "10150.00",
		},
		{
			name: "Deposit as number",
			body: `{"amount":25.5}`,
			prepareMock: func() {
				service.EXPECT().Deposit(gomock.Any(), 1, gomock.Any()).Return(dec("10025.50"), nil)
			},
			expectedCode: http.StatusOK,
			expectedCash: "10025.50",
		},
		{
			name: "Too many decimal places",
			body: `{"amount":"150.005"}`,
			prepareMock: func() {
				service.EXPECT().Deposit(gomock.Any(), 1, gomock.Any()).Return(decimal.Zero, domain.ErrInvalidAmount)
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid amount",
		},
		{
			name:          "Missing amount",
			body:          `{}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid amount",
		},
		{
			name:          "Not a number",
			body:          `{"amount":"lots"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid request body",
		},
		{
			name: "Store down",
			body: `{"amount":"1"}`,
			prepareMock: func() {
				service.EXPECT().Deposit(gomock.Any(), 1, gomock.Any()).Return(decimal.Zero, domain.ErrStoreUnavailable)
			},
			expectedCode:  http.StatusServiceUnavailable,
			expectedError: "ledger store unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			rr := httptest.NewRecorder()
			handler.Deposit(rr, newRequest(http.MethodPost, "/api/user/deposit", tt.body, 1))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Error)
				return
			}
			var resp dto.CashResponseDTO
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.expectedCash, resp.Cash)
		})
	}
}

func TestGetHistory(t *testing.T) {
	handler, service := NewMock(t)
	executedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
		expected     []dto.TransactionDTO
	}{
		{
			name: "History returned",
			prepareMock: func() {
				service.EXPECT().GetHistory(gomock.Any(), 1).Return([]domain.Transaction{
					{ID: 1, Symbol: "AAA", Name: "Triple A Inc", Shares: 10, Price: dec("50"), Total: dec("500"), ExecutedAt: executedAt},
					{ID: 2, Symbol: "AAA", Name: "Triple A Inc", Shares: -10, Price: dec("60"), Total: dec("-600"), ExecutedAt: executedAt},
				}, nil)
			},
			expectedCode: http.StatusOK,
			expected: []dto.TransactionDTO{
				{ID: 1, Symbol: "AAA", Name: "Triple A Inc", Shares: 10, Price: "50.00", Total: "500.00", ExecutedAt: executedAt},
				{ID: 2, Symbol: "AAA", Name: "Triple A Inc", Shares: -10, Price: "60.00", Total: "-600.00", ExecutedAt: executedAt},
			},
		},
		{
			name: "No transactions",
			prepareMock: func() {
				service.EXPECT().GetHistory(gomock.Any(), 1).Return(nil, nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name: "Internal error",
			prepareMock: func() {
				service.EXPECT().GetHistory(gomock.Any(), 1).Return(nil, errors.New("boom"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			rr := httptest.NewRecorder()
			handler.GetHistory(rr, newRequest(http.MethodGet, "/api/user/history", "", 1))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expected != nil {
				var resp []dto.TransactionDTO
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expected, resp)
			}
		})
	}
}

func TestGetDeposits(t *testing.T) {
	handler, service := NewMock(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	service.EXPECT().GetDeposits(gomock.Any(), 1).Return([]domain.Deposit{
		{ID: 1, UserID: 1, Amount: dec("10000"), DepositedAt: at},
	}, nil)
	rr := httptest.NewRecorder()
	handler.GetDeposits(rr, newRequest(http.MethodGet, "/api/user/deposits", "", 1))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []dto.DepositDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, []dto.DepositDTO{{ID: 1, Amount: "10000.00", DepositedAt: at}}, resp)

	service.EXPECT().GetDeposits(gomock.Any(), 1).Return(nil, nil)
	rr = httptest.NewRecorder()
	handler.GetDeposits(rr, newRequest(http.MethodGet, "/api/user/deposits", "", 1))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
