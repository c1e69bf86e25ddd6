package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"cambiacartas-api/internal/decklist"
)

// Import formats and targets.
const (
	FormatText = "txt"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	TargetInventory = "inventory"
	TargetWishlist  = "wishlist"
)

// ImportRowResult describes the outcome of one import row.
type ImportRowResult struct {
	Line        int    `json:"line"`
	Name        string `json:"name"`
	CatalogID   string `json:"catalog_id,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ImportReport summarizes a bulk import. Failed rows are reported next
// to the successful ones; a bad row never aborts the batch.
type ImportReport struct {
	Total        int               `json:"total"`
	Imported     int               `json:"imported"`
	Placeholders int               `json:"placeholders"`
	Failed       int               `json:"failed"`
	Rows         []ImportRowResult `json:"rows"`
}

// ImporterService turns decklist files into inventory or wishlist
// records, resolving each row against the catalog as it goes.
type ImporterService struct {
	reconciler *Reconciler
	collection *CollectionService
}

// NewImporterService creates an importer.
func NewImporterService(reconciler *Reconciler, collection *CollectionService) *ImporterService {
	return &ImporterService{
		reconciler: reconciler,
		collection: collection,
	}
}

// Import parses r in the given format and adds every resolvable row to
// the owner's inventory or wishlist.
func (s *ImporterService) Import(ctx context.Context, ownerID, format, target string, r io.Reader) (*ImportReport, error) {
	target = strings.ToLower(strings.TrimSpace(target))
	if target != TargetInventory && target != TargetWishlist {
		return nil, fmt.Errorf("%w: unknown import target %q", ErrInvalidInput, target)
	}

	var rows []decklist.Row
	var parseErrs []decklist.RowError

	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatText, "text", "":
		rows, parseErrs = decklist.ParseText(r)
	case FormatCSV:
		rows, parseErrs = decklist.ParseCSV(r)
	case FormatXLSX:
		rows, parseErrs = decklist.ParseXLSX(r)
	default:
		return nil, fmt.Errorf("%w: unknown import format %q", ErrInvalidInput, format)
	}

	report := &ImportReport{Total: len(rows) + len(parseErrs)}
	for _, perr := range parseErrs {
		report.Failed++
		report.Rows = append(report.Rows, ImportRowResult{
			Line:  perr.Line,
			Name:  perr.Input,
			Error: perr.Reason,
		})
	}

	for _, row := range rows {
		result := s.importRow(ctx, ownerID, target, row)
		if result.Error != "" {
			report.Failed++
		} else {
			report.Imported++
			if result.Placeholder {
				report.Placeholders++
			}
		}
		report.Rows = append(report.Rows, result)
	}

	log.Printf("[Importer] Import for %s: %d rows, %d imported, %d placeholders, %d failed",
		ownerID, report.Total, report.Imported, report.Placeholders, report.Failed)

	return report, nil
}

func (s *ImporterService) importRow(ctx context.Context, ownerID, target string, row decklist.Row) ImportRowResult {
	result := ImportRowResult{Line: row.Line, Name: row.Name}

	entry, err := s.reconciler.ResolveDirect(ctx, row.Name, row.SetName, "")
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.CatalogID = entry.ID
	result.Placeholder = entry.IsPlaceholder()

	switch target {
	case TargetWishlist:
		_, err = s.collection.AddWishlist(ctx, ownerID, entry.ID, row.Quantity, 0)
	default:
		_, err = s.collection.AddInventory(ctx, ownerID, InventoryParams{
			CatalogID: entry.ID,
			Quantity:  row.Quantity,
			Condition: row.Condition,
			Language:  row.Language,
			Price:     row.Price,
			ForTrade:  row.ForTrade,
		})
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}
