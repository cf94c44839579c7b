package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondWithJSON(t *testing.T) {
	tests := []struct {
		name         string
		code         int
		payload      any
		expectedBody string
	}{
		{
			name:         "Object payload",
			code:         http.StatusOK,
			payload:      map[string]string{"symbol": "AAA"},
			expectedBody: `{"symbol":"AAA"}`,
		},
		{
			name:         "No content has empty body",
			code:         http.StatusNoContent,
			payload:      Response{Error: "nothing"},
			expectedBody: "",
		},
		{
			name:         "Unmarshalable payload",
			code:         http.StatusOK,
			payload:      make(chan int),
			expectedBody: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondWithJSON(w, tt.code, tt.payload)

			if tt.name == "Unmarshalable payload" {
				assert.Equal(t, http.StatusInternalServerError, w.Code)
				return
			}
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestRespondWithError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithError(w, http.StatusPaymentRequired, "not enough cash")

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body Response
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "not enough cash", body.Error)
}
