package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"libraryapi/internal/circulation"
)

type BorrowHandler struct {
	svc Circulation
}

func NewBorrowHandler(svc Circulation) *BorrowHandler {
	return &BorrowHandler{svc: svc}
}

type borrowRequestBody struct {
	BookID string `json:"book_id" validate:"required_without=CopyID"`
	CopyID string `json:"copy_id"`
	UserID string `json:"user_id"`
}

// Create handles POST /borrows. Members borrow a book for themselves by
// book_id; librarians may lend a specific copy_id to a user_id.
func (h *BorrowHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body borrowRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON body", nil)
		return
	}
	if details := ValidateStruct(body); details != nil {
		JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid request", details)
		return
	}

	outcome, err := h.svc.Borrow(r.Context(), circulation.BorrowRequest{
		Actor:  ActorFrom(r),
		UserID: body.UserID,
		BookID: body.BookID,
		CopyID: body.CopyID,
	})
	if err != nil {
		JSONDomainError(w, err)
		return
	}
	if outcome.Waitlisted {
		JSONSuccess(w, outcome, map[string]any{"message": "no copies available, added to waitlist"})
		return
	}
	JSONSuccessCreated(w, outcome)
}

type returnRequestBody struct {
	BorrowID  string `json:"borrow_id"`
	Barcode   string `json:"barcode" validate:"omitempty,barcode"`
	User      string `json:"user"`
	Condition string `json:"condition" validate:"omitempty,oneof=New Good Worn Damaged"`
	Remarks   string `json:"remarks" validate:"max=500"`
	FinePaid  bool   `json:"fine_paid"`
}

// Return handles PUT /borrows/return. The record resolves either by
// borrow_id or by barcode plus user (email or username).
func (h *BorrowHandler) Return(w http.ResponseWriter, r *http.Request) {
	var body returnRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON body", nil)
		return
	}
	if details := ValidateStruct(body); details != nil {
		JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid request", details)
		return
	}

	outcome, err := h.svc.Return(r.Context(), circulation.ReturnRequest{
		Actor:     ActorFrom(r),
		RecordID:  body.BorrowID,
		Barcode:   body.Barcode,
		UserRef:   body.User,
		Condition: body.Condition,
		Remarks:   body.Remarks,
		FinePaid:  body.FinePaid,
	})
	if err != nil {
		JSONDomainError(w, err)
		return
	}
	JSONSuccess(w, outcome, nil)
}

// Fine handles GET /borrows/{id}/fine.
// Crude path param extraction with net/http's ServeMux.
func (h *BorrowHandler) Fine(w http.ResponseWriter, r *http.Request) {
	const prefix = "/borrows/"
	const suffix = "/fine"
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		http.NotFound(w, r)
		return
	}
	recordID := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if recordID == "" || strings.Contains(recordID, "/") {
		http.NotFound(w, r)
		return
	}

	statement, err := h.svc.GetFine(r.Context(), ActorFrom(r), recordID)
	if err != nil {
		JSONDomainError(w, err)
		return
	}
	JSONSuccess(w, statement, nil)
}

// ListMine handles GET /me/borrows.
func (h *BorrowHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r)
	records, err := h.svc.ListOpenRecords(r.Context(), actor, actor.UserID)
	if err != nil {
		JSONDomainError(w, err)
		return
	}
	JSONSuccess(w, records, map[string]any{"count": len(records)})
}

// ListForUser handles GET /users/{id}/borrows.
func (h *BorrowHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	const prefix = "/users/"
	const suffix = "/borrows"
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if userID == "" || strings.Contains(userID, "/") {
		http.NotFound(w, r)
		return
	}

	records, err := h.svc.ListOpenRecords(r.Context(), ActorFrom(r), userID)
	if err != nil {
		JSONDomainError(w, err)
		return
	}
	JSONSuccess(w, records, map[string]any{"count": len(records)})
}
