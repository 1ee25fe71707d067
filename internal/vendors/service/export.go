package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"vendorhub/internal/vendors/models"
	dErrors "vendorhub/pkg/domain-errors"
)

const exportSheet = "Vendors"

var exportHeader = []any{
	"ID", "Name", "Contact Email", "Phone", "Category", "Status",
	"Verified", "Verified At", "Average Rating", "Total Reviews", "Created At",
}

// ExportXLSX writes the filtered vendor list as a single-sheet workbook.
func (s *Service) ExportXLSX(ctx context.Context, filter models.ListFilter, w io.Writer) (int, error) {
	vendors, err := s.List(ctx, filter)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to prepare export")
	}

	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to prepare export")
	}
	if err := sw.SetRow("A1", exportHeader); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to write export header")
	}
	for i, v := range vendors {
		verifiedAt := ""
		if v.VerifiedAt != nil {
			verifiedAt = v.VerifiedAt.UTC().Format("2006-01-02 15:04:05")
		}
		row := []any{
			v.ID.String(), v.Name, v.ContactEmail, v.Phone, v.BusinessCategory, string(v.Status),
			v.IsVerified, verifiedAt, v.AverageRating, v.TotalReviews,
			v.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return 0, dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("failed to write export row %d", i+1))
		}
	}
	if err := sw.Flush(); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to flush export")
	}
	if err := f.Write(w); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to write export")
	}
	return len(vendors), nil
}
