package session

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource adapts the managed session to the oauth2 package, so any
// oauth2-aware HTTP client (oauth2.NewClient, api wrappers) rides the
// same single-flight refresh and teardown rules as everything else.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &managerTokenSource{ctx: ctx, manager: m}
}

type managerTokenSource struct {
	ctx     context.Context
	manager *Manager
}

var _ oauth2.TokenSource = (*managerTokenSource)(nil)

func (ts *managerTokenSource) Token() (*oauth2.Token, error) {
	pair, err := ts.manager.ensurePair(ts.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		Expiry:      pair.AccessExpiresAt,
	}, nil
}
