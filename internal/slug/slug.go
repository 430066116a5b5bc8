// Package slug derives collection-unique, URL-safe identifiers from post titles.
package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// ErrProbeExhausted is returned when a bounded Resolver runs out of attempts.
var ErrProbeExhausted = errors.New("slug probe exhausted")

// Checker answers point queries against the existing slug set.
type Checker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, slug string) (bool, error)

func (f CheckerFunc) SlugExists(ctx context.Context, slug string) (bool, error) {
	return f(ctx, slug)
}

// Normalize trims and lowercases title, drops anything outside [a-z0-9\s-]
// and turns every whitespace run into a single hyphen.
func Normalize(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = disallowed.ReplaceAllString(s, "")
	return whitespace.ReplaceAllString(s, "-")
}

// Candidate returns the n-th probe for base: base itself for n <= 1, base-n otherwise.
func Candidate(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// Result is a resolved slug and the number of point queries spent finding it.
type Result struct {
	Slug     string
	Attempts int
}

// Resolver probes base, base-2, base-3, ... until a free candidate is found.
type Resolver struct {
	checker Checker
	// MaxAttempts bounds the probe loop; zero means unbounded.
	MaxAttempts int
	// Observe, when set, receives the attempt count of every finished probe.
	Observe func(attempts int)
}

func NewResolver(c Checker) *Resolver {
	return &Resolver{checker: c}
}

// Resolve returns the first free candidate for title. The result is a pure function
// of title and the slug set seen by the checker.
func (r *Resolver) Resolve(ctx context.Context, title string) (Result, error) {
	base := Normalize(title)
	for n := 1; r.MaxAttempts <= 0 || n <= r.MaxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return Result{Attempts: n - 1}, err
		}
		candidate := Candidate(base, n)
		taken, err := r.checker.SlugExists(ctx, candidate)
		if err != nil {
			return Result{Attempts: n}, fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if !taken {
			r.observe(n)
			return Result{Slug: candidate, Attempts: n}, nil
		}
	}
	r.observe(r.MaxAttempts)
	return Result{Attempts: r.MaxAttempts}, fmt.Errorf("%w after %d attempts for %q", ErrProbeExhausted, r.MaxAttempts, base)
}

func (r *Resolver) observe(n int) {
	if r.Observe != nil {
		r.Observe(n)
	}
}
