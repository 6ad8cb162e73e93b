package audit

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

// Fetcher retrieves the audit trail from the backend; satisfied by
// auth.Client.
type Fetcher interface {
	SecurityEvents(ctx context.Context, accessToken string) ([]Event, error)
}

// TokenProvider supplies a currently valid access token; satisfied by
// session.Manager.
type TokenProvider interface {
	EnsureAccessToken(ctx context.Context) (string, error)
}

// Log is a read-only consumer of the backend's security-event feed. It
// rides the managed session's credentials and never writes events.
type Log struct {
	api    Fetcher
	tokens TokenProvider
}

// NewLog initializes a Log with required dependencies.
func NewLog(api Fetcher, tokens TokenProvider) (*Log, error) {
	if api == nil {
		return nil, errors.New("[NewLog] api is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewLog] token provider is required")
	}
	return &Log{api: api, tokens: tokens}, nil
}

// Events returns the audit trail, newest first.
func (l *Log) Events(ctx context.Context) ([]Event, error) {
	accessToken, err := l.tokens.EnsureAccessToken(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Events] obtaining access token")
	}

	events, err := l.api.SecurityEvents(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted, nil
}

// EventsByType returns the audit trail filtered to the given event
// types, newest first.
func (l *Log) EventsByType(ctx context.Context, eventTypes ...string) ([]Event, error) {
	events, err := l.Events(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		wanted[t] = true
	}

	filtered := make([]Event, 0, len(events))
	for _, e := range events {
		if wanted[e.EventType] {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}
