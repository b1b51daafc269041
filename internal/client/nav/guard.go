package nav

import (
	"context"

	"github.com/chungyifen/tax-refund/internal/model"
)

// Action is the guard's verdict for one navigation attempt.
type Action int

const (
	// Allow lets the destination view render.
	Allow Action = iota
	// Redirect sends the client elsewhere, typically to the login page.
	Redirect
)

// Decision is the outcome of one guard evaluation. For Redirect, Target is
// the path to go to instead; for Allow, Route describes the destination.
type Decision struct {
	Action Action
	Route  Route
	Target string
}

// CredentialReader is the store slice the guard consults. Absence of a
// credential is a normal unauthenticated state.
type CredentialReader interface {
	Read() (token string, ok bool)
}

// SessionState is the session slice the guard drives.
type SessionState interface {
	HasResolvedRoles() bool
	FetchAndResolve(ctx context.Context) (model.Profile, error)
	Reset() error
}

// ProgressIndicator marks the visible lifetime of a navigation. Done runs
// exactly once per evaluation, after the decision settles.
type ProgressIndicator interface {
	Start()
	Done()
}

// NopIndicator ignores progress events.
type NopIndicator struct{}

// Start implements ProgressIndicator.
func (NopIndicator) Start() {}

// Done implements ProgressIndicator.
func (NopIndicator) Done() {}

// Notifier surfaces guard failures to the user, best-effort.
type Notifier interface {
	Notify(message string)
}

const fallbackAuthMessage = "authentication failed, please log in again"

// Guard evaluates navigation attempts against credential and session state.
type Guard struct {
	creds    CredentialReader
	session  SessionState
	progress ProgressIndicator
	notify   Notifier
}

// New constructs a Guard. Nil progress or notifier disable those side
// effects.
func New(creds CredentialReader, session SessionState, progress ProgressIndicator, notify Notifier) *Guard {
	if progress == nil {
		progress = NopIndicator{}
	}
	g := &Guard{creds: creds, session: session, progress: progress, notify: notify}
	return g
}

func (g *Guard) say(msg string) {
	if g.notify != nil {
		g.notify.Notify(msg)
	}
}

// Navigate decides whether the client may proceed to target.
//
// The evaluation order is fixed: credential presence, login-page bounce,
// resolved-roles check, then a profile fetch. A successful fetch replays
// the evaluation once; the replay must land on the resolved-roles branch,
// so a second fetch is never issued for the same attempt.
func (g *Guard) Navigate(ctx context.Context, target string) Decision {
	g.progress.Start()
	defer g.progress.Done()

	loginRedirect := Decision{Action: Redirect, Target: "/login?redirect=" + target}

	for attempt := 0; attempt < 2; attempt++ {
		route := Resolve(target)

		_, hasCred := g.creds.Read()
		if !hasCred {
			if route.Public {
				return Decision{Action: Allow, Route: route, Target: route.Path}
			}
			return loginRedirect
		}

		// Authenticated users never see the login page.
		if route.Path == "/login" {
			return Decision{Action: Redirect, Target: "/"}
		}

		if g.session.HasResolvedRoles() {
			return Decision{Action: Allow, Route: route, Target: route.Path}
		}

		if _, err := g.session.FetchAndResolve(ctx); err != nil {
			_ = g.session.Reset()
			msg := err.Error()
			if msg == "" {
				msg = fallbackAuthMessage
			}
			g.say(msg)
			return loginRedirect
		}
		// Resolve succeeded: replay the evaluation for the original target.
	}

	// The bounded replay did not settle; treat as an authorization failure
	// rather than loop.
	g.say(fallbackAuthMessage)
	return loginRedirect
}
