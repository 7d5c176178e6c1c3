// Package router classifies resource identifiers.
//
// A [Router] is built once from a fixed list of [Route] registrations and is
// read-only afterwards, so a single instance can be shared by every caller.
// Identifiers look like
//
//	content://<authority>/<path>
//
// and route patterns are slash separated path templates where "#" matches one
// all-digit segment and "*" matches any one segment.
package router

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Scheme is the only accepted identifier scheme.
const Scheme = "content"

// Kind is the shape of a matched identifier.
type Kind uint8

// Identifier shapes.
const (
	Unmatched Kind = iota
	Collection
	Item
)

func (k Kind) String() string {
	switch k {
	case Collection:
		return "collection"
	case Item:
		return "item"
	default:
		return "unmatched"
	}
}

// Route registers a path pattern.
type Route struct {
	// Pattern is the path template relative to the authority, e.g. "pets/#".
	Pattern string

	// Kind is reported for identifiers matching Pattern.
	Kind Kind
}

// Match is the verdict for one identifier.
type Match struct {
	Kind Kind

	// Pattern is the registered pattern that matched, empty when Unmatched.
	Pattern string

	// Segments are the identifier's path segments, nil when Unmatched.
	Segments []string
}

// LastSegment returns the trailing path segment (the row id for items).
func (m Match) LastSegment() string {
	if len(m.Segments) == 0 {
		return ""
	}

	return m.Segments[len(m.Segments)-1]
}

// Router maps identifiers to registered routes.
type Router struct {
	authority string
	routes    []compiledRoute
}

type compiledRoute struct {
	route    Route
	segments []string
}

var errInvalidRoute = errors.New("invalid route")

// New builds a Router for authority. Routes are tried in registration order.
func New(authority string, routes ...Route) (*Router, error) {
	if authority == "" {
		return nil, fmt.Errorf("%w: authority is empty", errInvalidRoute)
	}

	compiled := make([]compiledRoute, 0, len(routes))

	for _, r := range routes {
		if r.Kind == Unmatched {
			return nil, fmt.Errorf("%w: %q registered as unmatched", errInvalidRoute, r.Pattern)
		}

		segments := splitPath(r.Pattern)
		if len(segments) == 0 {
			return nil, fmt.Errorf("%w: empty pattern", errInvalidRoute)
		}

		for _, seg := range segments {
			if seg == "" {
				return nil, fmt.Errorf("%w: %q has an empty segment", errInvalidRoute, r.Pattern)
			}
		}

		compiled = append(compiled, compiledRoute{route: r, segments: segments})
	}

	return &Router{authority: authority, routes: compiled}, nil
}

// Authority returns the authority identifiers must carry.
func (r *Router) Authority() string {
	return r.authority
}

// URI builds the identifier for path under this router's authority.
func (r *Router) URI(path string) string {
	return Scheme + "://" + r.authority + "/" + strings.Trim(path, "/")
}

// Match classifies identifier. Anything that is not a content URI for this
// router's authority, or whose path fits no route, is Unmatched.
func (r *Router) Match(identifier string) Match {
	u, err := url.Parse(identifier)
	if err != nil || u.Scheme != Scheme || u.Host != r.authority || u.Opaque != "" {
		return Match{Kind: Unmatched}
	}

	segments := splitPath(u.Path)

	for _, cr := range r.routes {
		if matchSegments(cr.segments, segments) {
			return Match{Kind: cr.route.Kind, Pattern: cr.route.Pattern, Segments: segments}
		}
	}

	return Match{Kind: Unmatched}
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}

	for i, p := range pattern {
		switch p {
		case "#":
			if !isDigits(path[i]) {
				return false
			}
		case "*":
			if path[i] == "" {
				return false
			}
		default:
			if p != path[i] {
				return false
			}
		}
	}

	return true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}

	return strings.Split(p, "/")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
