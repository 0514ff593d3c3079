// Package auth resolves the user behind an HTTP request from its bearer
// token.
package auth

import (
	"net/http"
	"strings"
	"sync"

	"github.com/juiceshop/findit/internal/config"
)

// User is an authenticated shop user.
type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

// Users maps bearer tokens to users.
type Users struct {
	mu     sync.RWMutex
	tokens map[string]User
}

// NewUsers seeds a registry from configuration.
func NewUsers(seed []config.UserConfig) *Users {
	u := &Users{tokens: make(map[string]User, len(seed))}
	for _, s := range seed {
		u.tokens[s.Token] = User{ID: s.ID, Email: s.Email}
	}
	return u
}

// Put registers or replaces the user for token.
func (u *Users) Put(token string, user User) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tokens[token] = user
}

// Revoke forgets token.
func (u *Users) Revoke(token string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.tokens, token)
}

// From returns the user whose token is in the request's Authorization
// header.
func (u *Users) From(r *http.Request) (*User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return nil, false
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	user, ok := u.tokens[token]
	if !ok {
		return nil, false
	}
	return &user, true
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
