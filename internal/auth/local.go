// Package auth provides the local authentication context. The conversational
// core only needs a stable user id; on this standalone build it comes from
// the configured profile rather than a remote identity provider.
package auth

import "github.com/lembremed/lembremed/internal/core"

type Local struct {
	user *core.User
}

// NewLocal builds an auth context for the given profile id. An empty id means
// signed out: CurrentUser returns nil.
func NewLocal(userID string) *Local {
	if userID == "" {
		return &Local{}
	}
	return &Local{user: &core.User{ID: userID}}
}

func (l *Local) CurrentUser() *core.User {
	return l.user
}
