// Package access decides whether a caller may act on a resource, given the
// caller's identity, role claim and the resource's owning user.
package access

import (
	"context"
	"fmt"

	"github.com/xmoure/blog-api-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Caller is the verified identity attached to a request. An empty Subject means
// the request is anonymous.
type Caller struct {
	Subject string
	Role    string
}

// NewCaller builds a Caller, resolving an absent role claim to RoleUser.
func NewCaller(subject, role string) Caller {
	if role == "" {
		role = RoleUser
	}
	return Caller{Subject: subject, Role: role}
}

func (c Caller) Authenticated() bool { return c.Subject != "" }
func (c Caller) IsAdmin() bool       { return c.Role == RoleAdmin }

type Action int

const (
	// ActionCreate needs an authenticated caller with a local user record.
	ActionCreate Action = iota
	ActionDelete
	ActionFeature
	ActionEdit
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionDelete:
		return "delete"
	case ActionFeature:
		return "feature"
	case ActionEdit:
		return "edit"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

type Decision int

const (
	Permit Decision = iota
	RejectUnauthenticated
	RejectForbidden
	RejectNotFound
)

func (d Decision) String() string {
	switch d {
	case Permit:
		return "permit"
	case RejectUnauthenticated:
		return "unauthenticated"
	case RejectForbidden:
		return "forbidden"
	case RejectNotFound:
		return "not_found"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// Verdict is a Decision plus the caller's local user record when it was resolved.
// Admin decisions on delete/feature do not resolve the record.
type Verdict struct {
	Decision Decision
	User     *models.User
}

func (v Verdict) Permitted() bool { return v.Decision == Permit }

// UserLookup resolves an external identity to the local user record.
// It returns (nil, nil) when no record exists.
type UserLookup interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
}

type Policy struct {
	users UserLookup
}

func NewPolicy(users UserLookup) *Policy {
	return &Policy{users: users}
}

// Decide applies the ownership and role rules for action on a resource owned by owner.
// owner is ignored for ActionCreate. The returned error is reserved for storage failures.
func (p *Policy) Decide(ctx context.Context, caller Caller, action Action, owner primitive.ObjectID) (Verdict, error) {
	if !caller.Authenticated() {
		return Verdict{Decision: RejectUnauthenticated}, nil
	}
	switch action {
	case ActionDelete, ActionFeature:
		if caller.IsAdmin() {
			return Verdict{Decision: Permit}, nil
		}
		if action == ActionFeature {
			return Verdict{Decision: RejectForbidden}, nil
		}
	}

	u, err := p.users.GetByExternalID(ctx, caller.Subject)
	if err != nil {
		return Verdict{}, fmt.Errorf("resolve caller %q: %w", caller.Subject, err)
	}
	if u == nil {
		return Verdict{Decision: RejectNotFound}, nil
	}
	if action == ActionCreate || u.ID == owner {
		return Verdict{Decision: Permit, User: u}, nil
	}
	return Verdict{Decision: RejectForbidden, User: u}, nil
}

// Authenticate is Decide for ActionCreate.
func (p *Policy) Authenticate(ctx context.Context, caller Caller) (Verdict, error) {
	return p.Decide(ctx, caller, ActionCreate, primitive.NilObjectID)
}
