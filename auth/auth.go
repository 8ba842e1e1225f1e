// Package auth emulates just enough of the hosted authentication provider
// for ResearchHub to run against the local fallback store.
//
// Tokens are opaque strings that are neither signed nor encrypted: anyone
// who can construct a string in the expected format can impersonate any
// user. That is acceptable only because this package exists for local and
// offline development; it must never be used in production. For the same
// reason sign-in accepts any password without verifying it, even though
// sign-up stores a bcrypt hash for shape parity with the real provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/researchhub/localbase/docstore"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserNotFound is returned when no user matches the given email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned by SignUp for an already-registered email.
	ErrUserExists = errors.New("user already exists")
	// ErrProfileNotFound is returned when a user has no profile record.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidToken is returned for malformed tokens and tokens whose user
	// no longer exists.
	ErrInvalidToken = errors.New("invalid token")

	errInvalidRole = errors.New("role must be researcher, participant or admin")
)

// Credentials are the sign-in inputs. Password is accepted but not checked.
type Credentials struct {
	Email    string
	Password string
}

// Session is what a successful sign-in or sign-up returns: the opaque token
// plus a denormalized user+profile view.
type Session struct {
	Token    string          `json:"token"`
	IssuedAt time.Time       `json:"issued_at"`
	User     docstore.Record `json:"user"`
	Profile  docstore.Record `json:"profile,omitempty"`
}

// UserDetail is the denormalized user+profile view returned by GetUser.
type UserDetail struct {
	User    docstore.Record `json:"user"`
	Profile docstore.Record `json:"profile,omitempty"`
}

// SignUpParams are the inputs to SignUp. Role defaults to participant.
type SignUpParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// Adapter implements the provider operations over the record store.
// Unlike the query builder, adapter methods return Go errors: they represent
// precondition violations of one logical operation, not data-access
// outcomes.
type Adapter struct {
	store docstore.Store
}

// NewAdapter creates an adapter backed by store.
func NewAdapter(store docstore.Store) *Adapter {
	return &Adapter{store: store}
}

// SignInWithPassword looks up the user by email and issues a fallback
// token. The password is not verified. Returns ErrUserNotFound if no user
// matches.
func (a *Adapter) SignInWithPassword(ctx context.Context, creds Credentials) (*Session, error) {
	user, err := a.findUser(ctx, "email", creds.Email)
	if err != nil {
		return nil, err
	}
	profile, err := a.findProfile(ctx, user.ID())
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	now := time.Now()
	return &Session{
		Token:    mintToken(user.ID(), now),
		IssuedAt: now,
		User:     sanitizeUser(user),
		Profile:  profile,
	}, nil
}

// GetUser resolves a previously issued token back to the denormalized
// user+profile view. Returns ErrInvalidToken for malformed tokens and for
// tokens whose user id no longer resolves.
func (a *Adapter) GetUser(ctx context.Context, token string) (*UserDetail, error) {
	userID, _, err := parseToken(token)
	if err != nil {
		return nil, err
	}
	user, err := a.findUser(ctx, "id", userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown user %q", ErrInvalidToken, userID)
		}
		return nil, err
	}
	profile, err := a.findProfile(ctx, user.ID())
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	return &UserDetail{User: sanitizeUser(user), Profile: profile}, nil
}

// UpdateProfile shallow-merges patch onto the profile with the matching
// user_id, stamps updated_at and persists the full collection. Returns the
// updated profile, or ErrProfileNotFound.
func (a *Adapter) UpdateProfile(ctx context.Context, userID string, patch docstore.Record) (docstore.Record, error) {
	var updated docstore.Record
	_, err := a.store.Update(ctx, docstore.Profiles, func(rows []docstore.Record) ([]docstore.Record, error) {
		for i, rec := range rows {
			if rec.StringField("user_id") != userID {
				continue
			}
			merged := rec.Clone()
			for k, v := range patch {
				merged[k] = v
			}
			merged["updated_at"] = time.Now().UTC().Format(time.RFC3339)
			rows[i] = merged
			updated = merged.Clone()
			return rows, nil
		}
		return nil, fmt.Errorf("%w: user %q", ErrProfileNotFound, userID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SignUp creates a user and its profile, then signs the new user in. If
// writing the profile fails the user record is removed again, so no
// half-created account survives. Returns ErrUserExists if the email is
// already registered.
func (a *Adapter) SignUp(ctx context.Context, params SignUpParams) (*Session, error) {
	role := params.Role
	if role == "" {
		role = "participant"
	}
	switch role {
	case "researcher", "participant", "admin":
	default:
		return nil, fmt.Errorf("%w: got %q", errInvalidRole, params.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	userID := uuid.NewString()
	user := docstore.Record{
		"id":    userID,
		"email": params.Email,
		"metadata": map[string]any{
			"full_name": joinName(params.FirstName, params.LastName),
		},
		"password_hash": string(hash),
	}
	_, err = a.store.Update(ctx, docstore.Users, func(rows []docstore.Record) ([]docstore.Record, error) {
		for _, rec := range rows {
			if rec.StringField("email") == params.Email {
				return nil, fmt.Errorf("%w: %s", ErrUserExists, params.Email)
			}
		}
		return append(rows, user), nil
	})
	if err != nil {
		return nil, err
	}

	profile := docstore.Record{
		"id":         "prf-" + userID,
		"user_id":    userID,
		"first_name": params.FirstName,
		"last_name":  params.LastName,
		"role":       role,
		"status":     "active",
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	_, err = a.store.Update(ctx, docstore.Profiles, func(rows []docstore.Record) ([]docstore.Record, error) {
		return append(rows, profile), nil
	})
	if err != nil {
		// Remove the user again so a failed sign-up doesn't leave an
		// account without a profile behind.
		if _, rbErr := a.store.Update(ctx, docstore.Users, func(rows []docstore.Record) ([]docstore.Record, error) {
			kept := rows[:0]
			for _, rec := range rows {
				if rec.ID() != userID {
					kept = append(kept, rec)
				}
			}
			return kept, nil
		}); rbErr != nil {
			slog.WarnContext(ctx, "Failed to remove user after profile write error", "user_id", userID, "err", rbErr)
		}
		return nil, err
	}

	now := time.Now()
	return &Session{
		Token:    mintToken(userID, now),
		IssuedAt: now,
		User:     sanitizeUser(user),
		Profile:  profile.Clone(),
	}, nil
}

// SignOut accepts any token and always succeeds: the fallback keeps no
// server-side session state to invalidate.
func (a *Adapter) SignOut(context.Context, string) error {
	return nil
}

// findUser scans the users collection for the first record whose field
// equals value.
func (a *Adapter) findUser(ctx context.Context, field, value string) (docstore.Record, error) {
	rows, err := a.store.Read(ctx, docstore.Users)
	if err != nil {
		return nil, err
	}
	for _, rec := range rows {
		if rec.StringField(field) == value {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%w: %s=%q", ErrUserNotFound, field, value)
}

// findProfile returns the first profile referencing userID.
func (a *Adapter) findProfile(ctx context.Context, userID string) (docstore.Record, error) {
	rows, err := a.store.Read(ctx, docstore.Profiles)
	if err != nil {
		return nil, err
	}
	for _, rec := range rows {
		if rec.StringField("user_id") == userID {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%w: user %q", ErrProfileNotFound, userID)
}

// sanitizeUser strips credential material from the outgoing view.
func sanitizeUser(user docstore.Record) docstore.Record {
	out := user.Clone()
	delete(out, "password_hash")
	return out
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
