// Package identity описывает арендатора и пользователя, от имени которых выполняется запрос.
package identity

import "errors"

var ErrMissingTenantContext = errors.New("missing tenant context")

// Identity заполняется на границе HTTP после проверки токена.
type Identity struct {
	TenantID string
	UserID   string
}

func (i Identity) Validate() error {
	if i.TenantID == "" || i.UserID == "" {
		return ErrMissingTenantContext
	}
	return nil
}
