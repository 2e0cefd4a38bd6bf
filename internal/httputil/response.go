// Package httputil contains shared HTTP utilities for consistent response formatting across handlers.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeValidationError = "VALIDATION_ERROR"
	CodeInvalidID       = "INVALID_ID"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "DUPLICATE_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Meta    any    `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool          `json:"success"`
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func WritePaginated(w http.ResponseWriter, data any, meta PageMeta) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Data: data, Meta: meta})
}

func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Resource created successfully",
		Data:    data,
	})
}

func WriteUpdated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Resource updated successfully",
		Data:    data,
	})
}

func WriteDeleted(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Resource deleted successfully",
	})
}

func WriteJSONError(w http.ResponseWriter, status int, code, message string, details ...ErrorDetail) {
	WriteJSON(w, status, ErrorResponse{
		Success: false,
		Code:    code,
		Message: message,
		Details: details,
	})
}
