package sheets

import (
	"context"
)

// MirrorRow is one spreadsheet row of the mirror tab, columns A through H.
type MirrorRow struct {
	ID          int64  // A
	CreatedAt   string // B, RFC 3339
	Date        string // C, YYYY-MM-DD
	Description string // D
	Amount      string // E, decimal with comma separator, signed
	Type        string // F, INCOME or EXPENSE
	Account     string // G
	Category    string // H
}

// Ports for outbound adapters.
type (
	RowAppender interface {
		Append(ctx context.Context, row MirrorRow) (rowRef string, err error)
	}

	// RowFinder locates a mirrored transaction by its ID. A zero row number
	// means the ID is not present in the sheet.
	RowFinder interface {
		FindRowByID(ctx context.Context, id int64) (rowNumber int64, err error)
	}

	// RowDeleter removes the row holding the given transaction ID, if any.
	RowDeleter interface {
		DeleteByID(ctx context.Context, id int64) (deleted bool, err error)
	}
)

// Mirror combines everything the worker needs from a sheet backend.
type Mirror interface {
	RowAppender
	RowFinder
	RowDeleter
}
