// File: internal/services/navigation/decide.go
package navigation

import (
	"strings"

	"github.com/iyunix/go-onyom/internal/domain"
)

const (
	PathRoot       = "/"
	PathLogin      = "/auth/login"
	PathSignUp     = "/auth/signup"
	PathVerify     = "/auth/verify"
	PathOnboarding = "/onboarding"
	PathDefaultApp = "/app/chat"
)

type pathClass int

const (
	classPublic pathClass = iota
	classOnboarding
	classProtected
)

// classify treats anything it does not recognize as protected.
func classify(path string) pathClass {
	switch {
	case path == PathRoot || path == "/auth" || strings.HasPrefix(path, "/auth/"):
		return classPublic
	case path == PathOnboarding || strings.HasPrefix(path, PathOnboarding+"/"):
		return classOnboarding
	default:
		return classProtected
	}
}

// Decide returns where a user with session should be sent from path, or
// false when they should stay. It never returns path itself and returns
// nothing until the session has been initialized.
func Decide(session domain.Session, path string) (string, bool) {
	if !session.Initialized {
		return "", false
	}
	if path == "" {
		path = PathRoot
	}
	class := classify(path)

	var target string
	switch {
	case session.Phase == domain.PendingVerification:
		if class == classProtected {
			target = PathVerify
		}
	case !session.IsAuthenticated():
		if class != classPublic {
			target = PathLogin
		}
	case !session.OnboardingComplete:
		if class != classOnboarding {
			target = PathOnboarding
		}
	default:
		if class != classProtected {
			target = PathDefaultApp
		}
	}

	if target == "" || target == path {
		return "", false
	}
	return target, true
}
