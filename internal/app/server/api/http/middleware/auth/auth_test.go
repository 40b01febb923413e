package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"workpro/internal/domain/identity"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

type stubVerifier map[string]identity.Identity

func (s stubVerifier) Verify(token string) (identity.Identity, error) {
	id, ok := s[token]
	if !ok {
		return identity.Identity{}, errors.New("unknown token")
	}
	return id, nil
}

type whoamiOutput struct {
	Body struct {
		TenantID string `json:"tenantId"`
		UserID   string `json:"userId"`
	}
}

func TestAuth_Middleware(t *testing.T) {
	verifier := stubVerifier{"good": {TenantID: "t1", UserID: "u1"}}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantTenant string
	}{
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusOK, wantTenant: "t1"},
		{name: "no header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			_, api := humatest.New(t)
			mw := New(verifier, slog.Default())
			huma.Register(api, huma.Operation{
				OperationID: "whoami",
				Method:      http.MethodGet,
				Path:        "/whoami",
				Middlewares: huma.Middlewares{mw.Middleware()},
			}, func(ctx context.Context, _ *struct{}) (*whoamiOutput, error) {
				id, ok := GetIdentity(ctx)
				if !ok {
					return nil, huma.Error401Unauthorized("Unauthorized")
				}
				out := &whoamiOutput{}
				out.Body.TenantID = id.TenantID
				out.Body.UserID = id.UserID
				return out, nil
			})

			var args []any
			if tt.header != "" {
				args = append(args, "Authorization: "+tt.header)
			}

			// Act
			resp := api.Get("/whoami", args...)

			// Assert
			assert.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantTenant != "" {
				assert.Contains(t, resp.Body.String(), `"tenantId":"`+tt.wantTenant+`"`)
			}
		})
	}
}

func TestGetIdentity_Missing(t *testing.T) {
	_, ok := GetIdentity(context.Background())

	assert.False(t, ok)
}
