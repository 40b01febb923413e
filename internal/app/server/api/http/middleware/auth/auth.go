package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"workpro/internal/domain/identity"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Verifier проверяет токен доступа и извлекает из него арендатора и пользователя
type Verifier interface {
	Verify(token string) (identity.Identity, error)
}

type Auth struct {
	tokens Verifier
	log    *slog.Logger
}

func New(tokens Verifier, log *slog.Logger) *Auth {
	return &Auth{
		tokens: tokens,
		log:    log.With("component", "auth_middleware"),
	}
}

type contextKey string

const identityKey contextKey = "identity"

// Middleware возвращает middleware для Huma с сигнатурой func(ctx Context, next func(Context))
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			a.log.Debug("missing bearer token", "path", ctx.URL().Path)
			a.unauthorized(ctx)
			return
		}

		id, err := a.tokens.Verify(token)
		if err != nil {
			a.log.Warn("token rejected", "path", ctx.URL().Path, "error", err)
			a.unauthorized(ctx)
			return
		}

		next(huma.WithContext(ctx, WithIdentity(ctx.Context(), id)))
	}
}

func (a *Auth) unauthorized(ctx huma.Context) {
	ctx.SetHeader("Content-Type", "application/problem+json")
	ctx.SetStatus(http.StatusUnauthorized)

	err := json.NewEncoder(ctx.BodyWriter()).Encode(huma.ErrorModel{
		Title:  http.StatusText(http.StatusUnauthorized),
		Status: http.StatusUnauthorized,
		Detail: identity.ErrMissingTenantContext.Error(),
	})
	if err != nil {
		a.log.Error("failed to write unauthorized response", "error", err)
	}
}

func WithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity возвращает арендатора и пользователя, установленные middleware
func GetIdentity(ctx context.Context) (identity.Identity, bool) {
	id, ok := ctx.Value(identityKey).(identity.Identity)
	return id, ok
}
