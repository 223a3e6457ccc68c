// Package session resolves who the visitor is before the first view
// renders: guest, signed-in user (with or without a profile row), or
// admin. The resolution runs once per program start and its result is the
// single source of truth for what navigation may show.
package session

import (
	"context"
	"errors"
	"strings"

	"labmate-cli/internal/api"
	"labmate-cli/internal/creds"
	"labmate-cli/internal/model"
)

// Role is the effective access tier, resolved client-side from the
// service's raw role string. Anything the service reports that isn't
// "admin" (it commonly says "observer") lands on the baseline User tier.
type Role int

const (
	Guest Role = iota
	User
	Admin
)

func (r Role) String() string {
	switch r {
	case Admin:
		return "admin"
	case User:
		return "user"
	default:
		return "guest"
	}
}

// ProfileStatus is only meaningful for User: admins and guests have no
// profile row by construction.
type ProfileStatus int

const (
	NotApplicable ProfileStatus = iota
	Missing
	Present
)

func (p ProfileStatus) String() string {
	switch p {
	case Missing:
		return "missing"
	case Present:
		return "present"
	default:
		return "n/a"
	}
}

// State is what the navigation layer gates on. Invariant: Profile is
// NotApplicable exactly when Role != User.
type State struct {
	Role        Role
	Profile     ProfileStatus
	DisplayName string
}

// Locked reports whether navigation must be pinned to the profile editor.
func (s State) Locked() bool {
	return s.Role == User && s.Profile == Missing
}

// Result carries the resolved state plus whatever the resolution already
// fetched, so views don't re-request it.
type Result struct {
	State    State
	Identity model.Identity
	Profile  *model.Profile
}

// Bootstrap runs the resolution machine:
//
//	guest hint stored  -> Guest, zero network calls
//	whoami 401         -> ErrUnauthenticated, stored session wiped
//	role "admin"       -> Admin
//	any other role     -> User, then the profile probe decides
//	                      Present (cached) vs Missing
//
// A missing or expired access token is retried through the refresh token
// first; only when that fails is the session over. On success the durable
// hints (role, display name) are rewritten for the next start.
func Bootstrap(ctx context.Context, client *api.Client, store *creds.Store) (Result, error) {
	if store.Meta(ctx, creds.KeyRoleHint) == creds.RoleHintGuest {
		return Result{State: State{Role: Guest, Profile: NotApplicable}}, nil
	}

	if _, ok := store.AccessToken(ctx); !ok {
		refreshOnce(ctx, client, store)
	}

	ident, err := client.WhoAmI(ctx)
	if errors.Is(err, api.ErrUnauthenticated) {
		// The bearer is dead server-side; keep nothing that could make
		// the next start think otherwise.
		_ = store.ClearSession(ctx)
		return Result{}, err
	}
	if err != nil {
		return Result{}, err
	}

	if strings.EqualFold(ident.Role, "admin") {
		res := Result{
			State:    State{Role: Admin, Profile: NotApplicable, DisplayName: ident.Email},
			Identity: ident,
		}
		writeHints(ctx, store, res.State)
		return res, nil
	}

	res := Result{
		State:    State{Role: User, DisplayName: ident.Email},
		Identity: ident,
	}
	profile, ok, err := client.FetchMyProfile(ctx)
	if err != nil {
		return Result{}, err
	}
	if ok {
		res.State.Profile = Present
		res.Profile = profile
		if name := profile.DisplayName(); name != "" {
			res.State.DisplayName = name
		}
	} else {
		res.State.Profile = Missing
	}
	writeHints(ctx, store, res.State)
	return res, nil
}

// refreshOnce tries to mint a new token pair from the stored refresh
// token. Failure is not reported: the follow-up whoami decides whether
// the session is over.
func refreshOnce(ctx context.Context, client *api.Client, store *creds.Store) {
	rt, ok := store.RefreshToken(ctx)
	if !ok {
		return
	}
	tok, err := client.Refresh(ctx, rt)
	if err != nil {
		return
	}
	_ = store.SaveTokens(ctx, tok)
}

// writeHints persists the coarse session hints. Best effort: a failed
// write costs one extra network round on the next start, nothing more.
func writeHints(ctx context.Context, store *creds.Store, st State) {
	_ = store.SetMeta(ctx, creds.KeyRoleHint, st.Role.String())
	_ = store.SetMeta(ctx, creds.KeyDisplayName, st.DisplayName)
}

// EnterGuest records the visitor's choice to browse without an account.
// The next Bootstrap resolves to Guest without touching the network.
func EnterGuest(ctx context.Context, store *creds.Store) error {
	return store.SetMeta(ctx, creds.KeyRoleHint, creds.RoleHintGuest)
}

// SaveLogin stores a fresh token pair and drops any stale guest hint, so
// the next Bootstrap resolves the real account instead of short-circuiting.
func SaveLogin(ctx context.Context, store *creds.Store, tok model.Token) error {
	if err := store.SaveTokens(ctx, tok); err != nil {
		return err
	}
	return store.ClearMeta(ctx, creds.KeyRoleHint)
}

// Logout wipes tokens and hints; the device id survives.
func Logout(ctx context.Context, store *creds.Store) error {
	return store.ClearSession(ctx)
}
