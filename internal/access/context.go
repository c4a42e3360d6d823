package access

import "pm-dashboard/internal/models"

// AuthContext: кто выполняет запрос. Передаётся явно в каждое действие.
type AuthContext struct {
	Identity *models.Identity
	Profile  *models.Profile
}

func (a AuthContext) Authenticated() bool { return a.Identity != nil }

func (a AuthContext) UserID() string {
	if a.Identity == nil {
		return ""
	}
	return a.Identity.ID
}

func (a AuthContext) Email() string {
	if a.Identity == nil {
		return ""
	}
	return a.Identity.Email
}
