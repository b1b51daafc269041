// Package session holds the in-memory authorization state for one client
// process: who is logged in and which authorities they carry. The profile
// is never persisted; it is re-resolved from the credential on every run.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/chungyifen/tax-refund/internal/client/api"
	"github.com/chungyifen/tax-refund/internal/errs"
	"github.com/chungyifen/tax-refund/internal/model"
)

// Pipeline is the slice of the request pipeline the session needs.
type Pipeline interface {
	Login(ctx context.Context, username, password string) (api.LoginResponse, error)
	Whoami(ctx context.Context) (model.Profile, error)
	Logout(ctx context.Context) error
}

// CredentialStore is the durable credential owned by the session lifecycle.
type CredentialStore interface {
	Read() (string, bool)
	Write(token string) error
	Clear() error
}

type fetchCall struct {
	done    chan struct{}
	profile model.Profile
	err     error
}

// Session is the process-wide session state. All methods are safe for
// concurrent use; concurrent FetchAndResolve calls share one whoami request.
type Session struct {
	pipe  Pipeline
	creds CredentialStore

	mu       sync.Mutex
	profile  model.Profile
	resolved bool
	inflight *fetchCall
}

// New constructs an unresolved session.
func New(pipe Pipeline, creds CredentialStore) *Session {
	return &Session{pipe: pipe, creds: creds}
}

// HasResolvedRoles reports whether a profile with a non-empty role set is held.
func (s *Session) HasResolvedRoles() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved && len(s.profile.Roles) > 0
}

// Profile returns the resolved profile, or ok=false when unresolved.
func (s *Session) Profile() (model.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.resolved
}

// FetchAndResolve resolves the profile through the whoami endpoint. A
// response without roles fails with errs.ErrInvalidProfile and leaves state
// untouched; transport failures propagate unchanged (the credential is the
// caller's to clear). Callers arriving while a fetch is in flight wait for
// and share its outcome instead of issuing a duplicate request.
func (s *Session) FetchAndResolve(ctx context.Context) (model.Profile, error) {
	s.mu.Lock()
	if s.resolved {
		p := s.profile
		s.mu.Unlock()
		return p, nil
	}
	if c := s.inflight; c != nil {
		s.mu.Unlock()
		select {
		case <-c.done:
			return c.profile, c.err
		case <-ctx.Done():
			return model.Profile{}, ctx.Err()
		}
	}
	c := &fetchCall{done: make(chan struct{})}
	s.inflight = c
	s.mu.Unlock()

	p, err := s.pipe.Whoami(ctx)
	if err == nil && len(p.Roles) == 0 {
		p, err = model.Profile{}, errs.ErrInvalidProfile
	}

	s.mu.Lock()
	s.inflight = nil
	if err == nil {
		s.profile = p
		s.resolved = true
	}
	s.mu.Unlock()

	c.profile, c.err = p, err
	close(c.done)
	return p, err
}

// Login authenticates and stores the issued credential. It deliberately
// does not resolve the profile: that happens on the next navigation, which
// keeps "authenticated" and "authorized" apart.
func (s *Session) Login(ctx context.Context, username, password string) error {
	resp, err := s.pipe.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("login response carries no access token")
	}
	return s.creds.Write(resp.AccessToken)
}

// Logout tells the server best-effort and always clears local state. A
// failing server call is not surfaced: the user must never be stuck logged
// in because the network is down.
func (s *Session) Logout(ctx context.Context) error {
	_ = s.pipe.Logout(ctx)
	return s.Reset()
}

// Reset clears the credential and the in-memory profile without contacting
// the server. Used when a profile fetch authoritatively fails.
func (s *Session) Reset() error {
	s.mu.Lock()
	s.profile = model.Profile{}
	s.resolved = false
	s.mu.Unlock()
	return s.creds.Clear()
}
