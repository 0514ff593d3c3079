package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juiceshop/findit/internal/config"
)

func TestUsers_From(t *testing.T) {
	users := NewUsers([]config.UserConfig{
		{ID: 1, Email: "admin@juice-sh.op", Token: "admin-token"},
	})

	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{"valid bearer", "Bearer admin-token", "admin@juice-sh.op", true},
		{"lowercase scheme", "bearer admin-token", "admin@juice-sh.op", true},
		{"unknown token", "Bearer nope", "", false},
		{"basic scheme", "Basic admin-token", "", false},
		{"missing header", "", "", false},
		{"empty token", "Bearer ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			user, ok := users.From(r)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, user.Email)
			}
		})
	}
}

func TestUsers_PutRevoke(t *testing.T) {
	users := NewUsers(nil)
	users.Put("t", User{ID: 2, Email: "jim@juice-sh.op"})

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer t")
	user, ok := users.From(r)
	require.True(t, ok)
	assert.Equal(t, 2, user.ID)

	users.Revoke("t")
	_, ok = users.From(r)
	assert.False(t, ok)
}
