package controller

import (
	"encoding/json"
	"net/http"

	"github.com/danmakutv/server/pkg/validator"
)

func (c controller) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (c controller) writeError(w http.ResponseWriter, status int, message string) {
	c.writeJSON(w, status, map[string]string{"error": message})
}

func (c controller) writeValidationErrors(w http.ResponseWriter, errs []validator.ValidationError) {
	c.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
}

// decodeAndValidate decodes the request body into v and runs struct
// validation; it writes the error response itself on failure.
func (c controller) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		c.writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}

	if errs, ok := c.validate.Validate(v); !ok {
		c.writeValidationErrors(w, errs)
		return false
	}

	return true
}
