// Package resolve maps target references typed at the console to entities
// the viewer can see.
package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/turncore/engine/area"
	"github.com/nathoo/turncore/engine/entity"
)

// AmbiguityError indicates multiple entities matched a reference.
type AmbiguityError struct {
	Ref        string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("which %s? (%s)", e.Ref, strings.Join(e.Candidates, ", "))
}

// NotFoundError indicates no visible entity matched a reference.
type NotFoundError struct {
	Ref string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("you don't see %q here", e.Ref)
}

// Target resolves ref to one entity in a that viewer can see. ref may be
// an entity index, an actor ID or a display name. Names match whole or by
// any single word, so "rat" finds "Giant Rat".
func Target(a *area.State, viewer *entity.EntityState, ref string) (*entity.EntityState, error) {
	ref = strings.TrimSpace(ref)
	if a == nil || ref == "" {
		return nil, &NotFoundError{Ref: ref}
	}

	if idx, err := strconv.Atoi(ref); err == nil {
		e := a.CheckGetEntity(idx)
		if e == nil || !canSee(a, viewer, e) {
			return nil, &NotFoundError{Ref: ref}
		}
		return e, nil
	}

	refLower := strings.ToLower(ref)
	var exact, partial []*entity.EntityState
	for _, e := range a.Entities() {
		if e == viewer || !canSee(a, viewer, e) {
			continue
		}
		switch matchName(e, refLower) {
		case matchExact:
			exact = append(exact, e)
		case matchWord:
			partial = append(partial, e)
		}
	}
	// Exact matches shadow word matches: "rat" picks "Rat" over "Rat King".
	matches := exact
	if len(matches) == 0 {
		matches = partial
	}

	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Ref: ref}
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, e := range matches {
			names[i] = fmt.Sprintf("%d %s", e.Index, e.Name())
		}
		return nil, &AmbiguityError{Ref: ref, Candidates: names}
	}
}

func canSee(a *area.State, viewer, e *entity.EntityState) bool {
	return viewer == nil || a.HasVisibility(viewer, e)
}

type match int

const (
	matchNone match = iota
	matchWord
	matchExact
)

// matchName compares a lowercased reference against the entity's display
// name and actor ID.
func matchName(e *entity.EntityState, refLower string) match {
	name := strings.ToLower(e.Name())
	id := strings.ToLower(e.Actor.Def.ID)
	if name == refLower || id == refLower {
		return matchExact
	}
	// "giant rat" matches actor ID "giant_rat".
	if strings.ReplaceAll(refLower, " ", "_") == id {
		return matchExact
	}
	for _, word := range strings.Fields(name) {
		if word == refLower {
			return matchWord
		}
	}
	return matchNone
}
