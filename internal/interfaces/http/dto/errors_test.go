package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/supplytrace/backend/internal/domain/shared"
)

func TestHTTPStatusForKind(t *testing.T) {
	tests := []struct {
		name string
		kind shared.ErrorKind
		want int
	}{
		{"validation maps to 400", shared.ErrorKindValidation, http.StatusBadRequest},
		{"not found maps to 404", shared.ErrorKindNotFound, http.StatusNotFound},
		{"permission maps to 403", shared.ErrorKindPermission, http.StatusForbidden},
		{"status maps to 422", shared.ErrorKindStatus, http.StatusUnprocessableEntity},
		{"business rule maps to 422", shared.ErrorKindBusinessRule, http.StatusUnprocessableEntity},
		{"concurrency maps to 409", shared.ErrorKindConcurrency, http.StatusConflict},
		{"unknown maps to 500", shared.ErrorKind("STRANGE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusForKind(tt.kind))
		})
	}
}
