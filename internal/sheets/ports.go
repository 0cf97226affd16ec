package sheets

import (
	"context"

	"tally/internal/core"
)

// Ports for outbound export adapters.
type (
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// TransactionDeleter removes an exported row. Rows are located by
	// content (date, description, amount), since the export target has
	// no notion of our IDs.
	TransactionDeleter interface {
		Delete(ctx context.Context, tx core.Transaction) error
	}
)
