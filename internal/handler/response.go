package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"rag-console/internal/model"
	"rag-console/pkg/apierror"
)

// JSON envelope shared with the middleware's 401 and 429 bodies.
func writeJSON(w http.ResponseWriter, status int, body model.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, model.APIResponse{Success: true, Data: data})
}

// writeError reports err under its APIError code, or as a 502 when the failure
// came from somewhere the console cannot classify.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apierror.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apierror.New("UPSTREAM_ERROR", genericErrorMessage, err.Error(), statusFor(err))
	}

	writeJSON(w, apiErr.HTTPStatus, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
}
