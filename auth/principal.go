package auth

import (
	"context"
	"regexp"

	"restaurant-api/models"
)

// RoleSet is the set of role names held by a principal.
type RoleSet map[models.RoleName]struct{}

func NewRoleSet(names ...models.RoleName) RoleSet {
	set := make(RoleSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(name models.RoleName) bool {
	_, ok := s[name]
	return ok
}

// Principal is the authenticated caller of a request.
type Principal struct {
	ID    string
	Email string
	Roles RoleSet
}

// PrincipalFromUser materializes the caller's roles once, at resolution time.
func PrincipalFromUser(u *models.User) *Principal {
	return &Principal{
		ID:    u.ID,
		Email: u.Email,
		Roles: NewRoleSet(u.RoleNames()...),
	}
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the request's principal, or nil for anonymous callers.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// KeyKind tells which user field a path identifier refers to.
type KeyKind int

const (
	KeyID KeyKind = iota
	KeyEmail
)

// LookupKey identifies a user either by email or by internal id.
type LookupKey struct {
	Kind  KeyKind
	Value string
}

var emailPattern = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)

// ClassifyLookupKey treats email-shaped identifiers as emails and anything else as an id.
func ClassifyLookupKey(s string) LookupKey {
	if emailPattern.MatchString(s) {
		return LookupKey{Kind: KeyEmail, Value: s}
	}
	return LookupKey{Kind: KeyID, Value: s}
}

// Field is the store column the key is matched against.
func (k LookupKey) Field() string {
	if k.Kind == KeyEmail {
		return "email"
	}
	return "id"
}
