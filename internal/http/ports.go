package http

import (
	"context"

	"libraryapi/internal/circulation"
	"libraryapi/internal/entity"
)

//go:generate mockgen -source=ports.go -destination=mock_circulation.go -package=http

// Circulation is the contract the handlers need from the workflow
// orchestrator.
type Circulation interface {
	Borrow(ctx context.Context, req circulation.BorrowRequest) (circulation.BorrowOutcome, error)
	Return(ctx context.Context, req circulation.ReturnRequest) (circulation.ReturnOutcome, error)
	GetFine(ctx context.Context, actor circulation.Actor, recordID string) (circulation.FineStatement, error)
	ListOpenRecords(ctx context.Context, actor circulation.Actor, userID string) ([]entity.BorrowRecord, error)
}
