package access

import (
	"strings"

	"pm-dashboard/internal/models"
)

const (
	PathLogin           = "/login"
	PathSignup          = "/signup"
	PathAuthCallback    = "/auth/callback"
	PathPendingApproval = "/pending-approval"
	PathHome            = "/"
	AdminPrefix         = "/admin"
)

var publicPaths = []string{PathLogin, PathSignup, PathAuthCallback}

type Outcome string

const (
	Allow           Outcome = "allow"
	RedirectLogin   Outcome = "redirect_login"
	RedirectPending Outcome = "redirect_pending"
	RedirectHome    Outcome = "redirect_home"
)

type Decision struct {
	Outcome Outcome
	Target  string
}

func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Decide: чистая функция от (identity, profile, path). profile == nil, если
// чтение упало; считаем, что не одобрен.
func Decide(identity *models.Identity, profile *models.Profile, path string) Decision {
	if identity == nil {
		if IsPublic(path) {
			return Decision{Outcome: Allow}
		}
		return Decision{Outcome: RedirectLogin, Target: PathLogin}
	}

	approved := profile.Approved()
	onPending := matches(path, PathPendingApproval)

	if !approved && !onPending {
		return Decision{Outcome: RedirectPending, Target: PathPendingApproval}
	}
	if matches(path, AdminPrefix) && !profile.IsAdmin() {
		return Decision{Outcome: RedirectHome, Target: PathHome}
	}
	if approved && (onPending || IsPublic(path)) {
		return Decision{Outcome: RedirectHome, Target: PathHome}
	}
	return Decision{Outcome: Allow}
}

func IsPublic(path string) bool {
	for _, p := range publicPaths {
		if matches(path, p) {
			return true
		}
	}
	return false
}

// matches: точное совпадение или вложенный путь (/signup/request).
func matches(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
