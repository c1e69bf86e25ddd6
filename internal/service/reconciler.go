package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cambiacartas-api/internal/model"
	"cambiacartas-api/internal/repository"
)

// ErrInvalidInput signals an empty or unparseable card reference.
var ErrInvalidInput = errors.New("invalid input")

// AmbiguousError signals that a name matches multiple printings and the
// caller must pick one (or choose all printings).
type AmbiguousError struct {
	Name       string
	Candidates []model.CatalogEntry
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q matches %d printings", e.Name, len(e.Candidates))
}

// ResolveRequest is a card reference to resolve to catalog entries.
type ResolveRequest struct {
	Name    string
	SetName string
	SetCode string
	// AllPrintings selects every printing of the name, yielding one
	// entry per printing instead of an ambiguity error.
	AllPrintings bool
}

// Reconciler turns free-form card references into canonical catalog ids:
// mirror store first, external catalog as fallback, placeholder as last
// resort so bulk operations never block on catalog resolution.
type Reconciler struct {
	mirror  repository.CardMirrorRepository
	catalog CatalogClient
}

// NewReconciler creates a reconciler.
func NewReconciler(mirror repository.CardMirrorRepository, catalog CatalogClient) *Reconciler {
	return &Reconciler{mirror: mirror, catalog: catalog}
}

// Resolve resolves an interactive card reference. When the name matches
// multiple printings and no set narrows it down, it returns
// AmbiguousError with the candidate list rather than guessing.
func (r *Reconciler) Resolve(ctx context.Context, req ResolveRequest) ([]model.CatalogEntry, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty card name", ErrInvalidInput)
	}
	setName := strings.TrimSpace(req.SetName)

	if req.AllPrintings {
		printings := r.catalog.ListPrintings(ctx, name)
		if len(printings) == 0 {
			entry, err := r.placeholder(ctx, name, setName)
			if err != nil {
				return nil, err
			}
			return []model.CatalogEntry{*entry}, nil
		}
		r.mirrorAll(ctx, printings)
		return printings, nil
	}

	if entry, err := r.mirror.FindCardByName(ctx, name, setName); err == nil {
		return []model.CatalogEntry{*entry}, nil
	}

	if setName != "" || req.SetCode != "" {
		entry, err := r.catalog.LookupByName(ctx, name, strings.TrimSpace(req.SetCode))
		if err == nil {
			r.mirrorOne(ctx, entry)
			return []model.CatalogEntry{*entry}, nil
		}

		placeholder, err := r.placeholder(ctx, name, setName)
		if err != nil {
			return nil, err
		}
		return []model.CatalogEntry{*placeholder}, nil
	}

	printings := r.catalog.ListPrintings(ctx, name)
	switch len(printings) {
	case 0:
		entry, err := r.placeholder(ctx, name, "")
		if err != nil {
			return nil, err
		}
		return []model.CatalogEntry{*entry}, nil
	case 1:
		r.mirrorOne(ctx, &printings[0])
		return printings, nil
	default:
		r.mirrorAll(ctx, printings)
		return nil, &AmbiguousError{Name: name, Candidates: printings}
	}
}

// ResolveDirect resolves a bulk-import reference without surfacing
// ambiguity: exact-name catalog lookup, placeholder fallback. A
// placeholder guarantees forward progress for bulk operations.
func (r *Reconciler) ResolveDirect(ctx context.Context, name, setName, setCode string) (*model.CatalogEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty card name", ErrInvalidInput)
	}
	setName = strings.TrimSpace(setName)

	if entry, err := r.mirror.FindCardByName(ctx, name, setName); err == nil {
		return entry, nil
	}

	entry, err := r.catalog.LookupByName(ctx, name, strings.TrimSpace(setCode))
	if err == nil {
		r.mirrorOne(ctx, entry)
		return entry, nil
	}

	return r.placeholder(ctx, name, setName)
}

func (r *Reconciler) placeholder(ctx context.Context, name, setName string) (*model.CatalogEntry, error) {
	entry, err := r.mirror.CreatePlaceholder(ctx, name, setName)
	if err != nil {
		return nil, fmt.Errorf("failed to create placeholder for %q: %w", name, err)
	}
	return entry, nil
}

func (r *Reconciler) mirrorOne(ctx context.Context, entry *model.CatalogEntry) {
	if err := r.mirror.UpsertCard(ctx, entry); err != nil {
		log.Printf("[Reconciler] Mirror upsert failed for %s: %v", entry.ID, err)
	}
}

func (r *Reconciler) mirrorAll(ctx context.Context, entries []model.CatalogEntry) {
	if err := r.mirror.BatchUpsertCards(ctx, entries); err != nil {
		log.Printf("[Reconciler] Mirror batch upsert failed: %v", err)
	}
}
