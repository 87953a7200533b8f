// Package guard mirrors the server role gate for Go clients that render views. Its decisions are
// advisory: they only avoid rendering what the server would refuse anyway.
package guard

import (
	"academy/domain"
	"context"
	"errors"
)

const DefaultFallbackPath = "/login"

var ErrNoIdentity = errors.New("identity not resolved")

type Identity struct {
	Email        string
	Roles        []string
	Organization domain.OrganizationDescriptor
}

func (i *Identity) HasAnyRole(roles ...string) bool {
	if i == nil {
		return false
	}
	for _, held := range i.Roles {
		for _, r := range roles {
			if held == r {
				return true
			}
		}
	}
	return false
}

type IdentityResolver interface {
	ResolveIdentity(ctx context.Context) (*Identity, error)
}

type IdentityResolverFunc func(ctx context.Context) (*Identity, error)

func (f IdentityResolverFunc) ResolveIdentity(ctx context.Context) (*Identity, error) {
	return f(ctx)
}

type Outcome int

const (
	Loading Outcome = iota
	Render
	Redirect
	Hide
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case Hide:
		return "hide"
	default:
		return "unknown"
	}
}

type Decision struct {
	Outcome  Outcome
	Path     string
	Identity *Identity
}

// Guard protects one view. An empty AllowedRoles admits every resolved identity.
type Guard struct {
	AllowedRoles   []string
	FallbackPath   string
	RedirectOnDeny bool
}

func (g Guard) Allows(identity *Identity) bool {
	if identity == nil {
		return false
	}
	return len(g.AllowedRoles) == 0 || identity.HasAnyRole(g.AllowedRoles...)
}

// Evaluate resolves the identity and decides between rendering and the configured deny outcome.
func (g Guard) Evaluate(ctx context.Context, resolver IdentityResolver) Decision {
	identity, err := resolver.ResolveIdentity(ctx)
	if err != nil || !g.Allows(identity) {
		return g.deny(identity)
	}
	return Decision{Outcome: Render, Identity: identity}
}

// Watch reports Loading, then the final decision. When ctx is done before the identity is
// resolved the pending result is dropped and ctx.Err() is returned.
func (g Guard) Watch(ctx context.Context, resolver IdentityResolver, render func(Decision)) error {
	render(Decision{Outcome: Loading})

	result := make(chan Decision, 1)
	go func() {
		result <- g.Evaluate(ctx, resolver)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case d := <-result:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		render(d)
		return nil
	}
}

func (g Guard) deny(identity *Identity) Decision {
	if !g.RedirectOnDeny {
		return Decision{Outcome: Hide, Identity: identity}
	}
	path := g.FallbackPath
	if path == "" {
		path = DefaultFallbackPath
	}
	return Decision{Outcome: Redirect, Path: path, Identity: identity}
}
