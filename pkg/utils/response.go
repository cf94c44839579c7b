package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type Response struct {
	Error string `json:"error" example:"invalid symbol"`
}

func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("failed to marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if code == http.StatusNoContent {
		return
	}
	if _, err := w.Write(response); err != nil {
		zap.L().Error("failed to write response", zap.Error(err))
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, Response{Error: message})
}
