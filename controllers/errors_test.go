package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mentorhub/forum/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    *services.Error
		status int
		code   int
	}{
		{"missing", &services.Error{Kind: services.KindNotFound, Cause: services.CauseMissing}, http.StatusNotFound, 40401},
		{"already deleted", &services.Error{Kind: services.KindNotFound, Cause: services.CauseAlreadyDeleted}, http.StatusNotFound, 40402},
		{"ownership", &services.Error{Kind: services.KindUnauthorized, Cause: services.CauseOwnership}, http.StatusForbidden, 40301},
		{"route origin", &services.Error{Kind: services.KindUnauthorized, Cause: services.CauseRouteOrigin}, http.StatusForbidden, 40302},
		{"category scope", &services.Error{Kind: services.KindUnauthorized, Cause: services.CauseCategoryScope}, http.StatusForbidden, 40303},
		{"login", &services.Error{Kind: services.KindUnauthorized, Cause: services.CauseRole, Message: services.ReasonLoginRequired}, http.StatusUnauthorized, 40106},
		{"role", &services.Error{Kind: services.KindUnauthorized, Cause: services.CauseRole, Message: services.ReasonAdminOnly}, http.StatusForbidden, 40304},
		{"validation", &services.Error{Kind: services.KindValidation}, http.StatusBadRequest, 40020},
		{"store", &services.Error{Kind: services.KindStoreFailure}, http.StatusInternalServerError, 50020},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
