package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/iav0207/fcards2-sub001/internal/api/shared"
	"github.com/iav0207/fcards2-sub001/internal/domain"
)

// getPathUUID extracts and parses a UUID path parameter.
//
// Parameters:
//   - r: The HTTP request
//   - paramName: The name of the path parameter to extract
//
// Returns:
//   - (uuid.UUID, nil): The parsed UUID if valid
//   - (uuid.Nil, error): wrapping domain.ErrInvalidID if the parameter is missing or malformed
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrInvalidID, paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidID, paramName)
	}
	return id, nil
}

// queryTags splits a comma separated tags parameter. Blank entries are dropped.
func queryTags(r *http.Request) []string {
	raw := r.URL.Query().Get("tags")
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// queryBool parses a boolean query parameter. A missing parameter is false.
func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", domain.ErrValidation, name)
	}
	return v, nil
}

// decodeAndValidate reads a JSON body into v and validates it. Failures are
// wrapped as domain.ErrValidation.
func decodeAndValidate(r *http.Request, v any) error {
	if err := shared.DecodeJSON(r, v); err != nil {
		return fmt.Errorf("%w: invalid request format: %w", domain.ErrValidation, err)
	}
	if err := shared.ValidateRequest(v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return nil
}

// respondError writes err as a sanitized JSON error with its status and code.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err,
		shared.WithCode(ErrorCode(err)))
}
