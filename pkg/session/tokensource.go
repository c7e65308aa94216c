package session

import (
	"golang.org/x/oauth2"

	"github.com/platinummonkey/warden/pkg/auth"
)

type managerTokenSource struct {
	store *Store
}

// TokenSource exposes the current access token as bearer credentials.
// Each call reads the live session, so a refreshed token is picked up
// by the next request.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return managerTokenSource{store: m.store}
}

func (ts managerTokenSource) Token() (*oauth2.Token, error) {
	s := ts.store.Current()
	if !s.Authenticated {
		return nil, ErrNotAuthenticated
	}

	tok := &oauth2.Token{
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
	}
	if exp, err := auth.ExpiresAt(s.AccessToken); err == nil {
		tok.Expiry = exp
	}
	return tok, nil
}
