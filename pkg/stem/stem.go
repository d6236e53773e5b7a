// Package stem turns a surface word into dictionary lookup keys.
package stem

import (
	"context"
	"errors"
	"strings"
	"unicode"
)

// Resolver returns the candidate dictionary forms of a word, most likely
// first. It returns an empty slice when nothing is found and must return
// the same stems for the same word.
type Resolver interface {
	Resolve(ctx context.Context, word string) ([]string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, word string) ([]string, error)

func (f ResolverFunc) Resolve(ctx context.Context, word string) ([]string, error) {
	return f(ctx, word)
}

// Chain merges the stems of several resolvers, keeping first-seen order.
// A failing resolver is skipped; Chain only fails when every resolver does.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, word string) ([]string, error) {
	var out []string
	var errs []error
	for _, r := range c {
		stems, err := r.Resolve(ctx, word)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = appendUnique(out, stems...)
	}
	if len(errs) > 0 && len(errs) == len(c) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Clean trims whitespace and surrounding punctuation from a tapped word.
func Clean(word string) string {
	return strings.TrimFunc(word, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

func appendUnique(dst []string, stems ...string) []string {
	for _, s := range stems {
		if s == "" {
			continue
		}
		dup := false
		for _, d := range dst {
			if d == s {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, s)
		}
	}
	return dst
}
