package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"libraryapi/internal/circulation"
	"libraryapi/internal/entity"
	"libraryapi/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// serve runs the handler behind the auth middleware, the way it is mounted
// in main.
func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	AuthMiddleware(testSecret)(h).ServeHTTP(w, r)
	return w
}

func memberToken() string {
	return testutil.GenerateTestToken(testSecret, testutil.TestMember.ID, entity.RoleMember)
}

func librarianToken() string {
	return testutil.GenerateTestToken(testSecret, testutil.TestLibrarian.ID, entity.RoleLibrarian)
}

func TestBorrowHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewMockCirculation(ctrl)
		handler := NewBorrowHandler(svc)

		due := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
		svc.EXPECT().
			Borrow(gomock.Any(), circulation.BorrowRequest{
				Actor:  circulation.Actor{UserID: testutil.TestMember.ID, Role: entity.RoleMember},
				BookID: "book-1",
			}).
			Return(circulation.BorrowOutcome{
				RecordID:  "rec-1",
				BookTitle: "Clean Architecture",
				Barcode:   "CA-1",
				DueDate:   due,
			}, nil)

		r := testutil.NewRequestWithAuth(http.MethodPost, "/borrows",
			map[string]any{"book_id": "book-1"}, memberToken())
		w := serve(handler.Create, r)

		assert.Equal(t, http.StatusCreated, w.Code)
		body := testutil.DecodeBody(w)
		assert.Equal(t, true, body["success"])
		data := body["data"].(map[string]any)
		assert.Equal(t, "rec-1", data["borrow_id"])
		assert.Equal(t, "CA-1", data["barcode"])
	})

	t.Run("waitlisted returns 200 with message", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewMockCirculation(ctrl)
		handler := NewBorrowHandler(svc)

		svc.EXPECT().
			Borrow(gomock.Any(), gomock.Any()).
			Return(circulation.BorrowOutcome{Waitlisted: true, BookTitle: "Popular"}, nil)

		r := testutil.NewRequestWithAuth(http.MethodPost, "/borrows",
			map[string]any{"book_id": "book-1"}, memberToken())
		w := serve(handler.Create, r)

		assert.Equal(t, http.StatusOK, w.Code)
		body := testutil.DecodeBody(w)
		data := body["data"].(map[string]any)
		assert.Equal(t, true, data["waitlisted"])
		meta := body["meta"].(map[string]any)
		assert.Contains(t, meta["message"], "waitlist")
	})

	t.Run("missing ids rejected before the service", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewMockCirculation(ctrl)
		handler := NewBorrowHandler(svc)

		r := testutil.NewRequestWithAuth(http.MethodPost, "/borrows",
			map[string]any{}, memberToken())
		w := serve(handler.Create, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		handler := NewBorrowHandler(NewMockCirculation(ctrl))

		r := httptest.NewRequest(http.MethodPost, "/borrows", nil)
		r.Header.Set("Authorization", "Bearer "+memberToken())
		w := serve(handler.Create, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("domain errors map to status codes", func(t *testing.T) {
		cases := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{"limit exceeded", fmt.Errorf("user holds 3 open loans: %w", circulation.ErrLimitExceeded), http.StatusUnprocessableEntity, "LIMIT_EXCEEDED"},
			{"not found", fmt.Errorf("book x: %w", circulation.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
			{"conflict", fmt.Errorf("copy taken: %w", circulation.ErrConflict), http.StatusConflict, "CONFLICT"},
			{"forbidden", fmt.Errorf("desk only: %w", circulation.ErrForbidden), http.StatusForbidden, "FORBIDDEN"},
			{"internal", errors.New("pg down"), http.StatusInternalServerError, "INTERNAL"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()
				svc := NewMockCirculation(ctrl)
				handler := NewBorrowHandler(svc)

				svc.EXPECT().Borrow(gomock.Any(), gomock.Any()).Return(circulation.BorrowOutcome{}, tc.err)

				r := testutil.NewRequestWithAuth(http.MethodPost, "/borrows",
					map[string]any{"book_id": "book-1"}, memberToken())
				w := serve(handler.Create, r)

				assert.Equal(t, tc.wantStatus, w.Code)
				body := testutil.DecodeBody(w)
				assert.Equal(t, false, body["success"])
				errBody := body["error"].(map[string]any)
				assert.Equal(t, tc.wantCode, errBody["code"])
			})
		}
	})

	t.Run("missing token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		handler := NewBorrowHandler(NewMockCirculation(ctrl))

		r := testutil.NewRequest(http.MethodPost, "/borrows", map[string]any{"book_id": "book-1"})
		w := serve(handler.Create, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		handler := NewBorrowHandler(NewMockCirculation(ctrl))

		token := testutil.GenerateExpiredToken(testSecret, testutil.TestMember.ID, entity.RoleMember)
		r := testutil.NewRequestWithAuth(http.MethodPost, "/borrows",
			map[string]any{"book_id": "book-1"}, token)
		w := serve(handler.Create, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBorrowHandler_Return(t *testing.T) {
	t.Run("success by record id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewMockCirculation(ctrl)
		handler := NewBorrowHandler(svc)

		svc.EXPECT().
			Return(gomock.Any(), circulation.ReturnRequest{
				Actor:    circulation.Actor{UserID: testutil.TestLibrarian.ID, Role: entity.RoleLibrarian},
				RecordID: "rec-1",
				FinePaid: true,
			}).
			Return(circulation.ReturnOutcome{
				RecordID:          "rec-1",
				Fine:              15,
				FinePaymentStatus: entity.FinePaid,
				Barcode:           "CA-1",
			}, nil)

		r := testutil.NewRequestWithAuth(http.MethodPut, "/borrows/return",
			map[string]any{"borrow_id": "rec-1", "fine_paid": true}, librarianToken())
		w := serve(handler.Return, r)

		assert.Equal(t, http.StatusOK, w.Code)
		body := testutil.DecodeBody(w)
		data := body["data"].(map[string]any)
		assert.Equal(t, 15.0, data["fine"])
		assert.Equal(t, "PAID", data["fine_payment_status"])
	})

	t.Run("success by barcode and user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewMockCirculation(ctrl)
		handler := NewBorrowHandler(svc)

		svc.EXPECT().
			Return(gomock.Any(), circulation.ReturnRequest{
				Actor:     circulation.Actor{UserID: testutil.TestLibrarian.ID, Role: entity.RoleLibrarian},
				Barcode:   "CA-1",
				UserRef:   "member1",
				Condition: "Worn",
			}).
			Return(circulation.ReturnOutcome{RecordID: "rec-1", Barcode: "CA-1"}, nil)

		r := testutil.NewRequestWithAuth(http.MethodPut, "/borrows/return",
			map[string]any{"barcode": "CA-1", "user": "member1", "condition": "Worn"}, librarianToken())
		w := serve(handler.Return, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bad condition value rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		handler := NewBorrowHandler(NewMockCirculation(ctrl))

		r := testutil.NewRequestWithAuth(http.MethodPut, "/borrows/return",
			map[string]any{"borrow_id": "rec-1", "condition": "Shredded"}, librarianToken())
		w := serve(handler.Return, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad barcode format rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		handler := NewBorrowHandler(NewMockCirculation(ctrl))

		r := testutil.NewRequestWithAuth(http.MethodPut, "/borrows/return",
			map[string]any{"barcode": "!!", "user": "member1"}, librarianToken())
		w := serve(handler.Return, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("double return maps to 409", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewMockCirculation(ctrl)
		handler := NewBorrowHandler(svc)

		svc.EXPECT().Return(gomock.Any(), gomock.Any()).
			Return(circulation.ReturnOutcome{}, fmt.Errorf("already returned: %w", circulation.ErrInvalidState))

		r := testutil.NewRequestWithAuth(http.MethodPut, "/borrows/return",
			map[string]any{"borrow_id": "rec-1"}, librarianToken())
		w := serve(handler.Return, r)

		assert.Equal(t, http.StatusConflict, w.Code)
		body := testutil.DecodeBody(w)
		errBody := body["error"].(map[string]any)
		assert.Equal(t, "INVALID_STATE", errBody["code"])
	})
}

func TestBorrowHandler_Fine(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewMockCirculation(ctrl)
		handler := NewBorrowHandler(svc)

		svc.EXPECT().
			GetFine(gomock.Any(),
				circulation.Actor{UserID: testutil.TestMember.ID, Role: entity.RoleMember},
				"rec-1").
			Return(circulation.FineStatement{
				RecordID: "rec-1",
				Fine:     10,
				Status:   entity.FinePending,
			}, nil)

		r := testutil.NewRequestWithAuth(http.MethodGet, "/borrows/rec-1/fine", nil, memberToken())
		w := serve(handler.Fine, r)

		assert.Equal(t, http.StatusOK, w.Code)
		body := testutil.DecodeBody(w)
		data := body["data"].(map[string]any)
		assert.Equal(t, 10.0, data["fine"])
	})

	t.Run("malformed path", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		handler := NewBorrowHandler(NewMockCirculation(ctrl))

		r := testutil.NewRequestWithAuth(http.MethodGet, "/borrows//fine", nil, memberToken())
		w := serve(handler.Fine, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("another member's record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewMockCirculation(ctrl)
		handler := NewBorrowHandler(svc)

		svc.EXPECT().GetFine(gomock.Any(), gomock.Any(), "rec-2").
			Return(circulation.FineStatement{}, fmt.Errorf("belongs to another user: %w", circulation.ErrForbidden))

		r := testutil.NewRequestWithAuth(http.MethodGet, "/borrows/rec-2/fine", nil, memberToken())
		w := serve(handler.Fine, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestBorrowHandler_ListMine(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := NewMockCirculation(ctrl)
	handler := NewBorrowHandler(svc)

	svc.EXPECT().
		ListOpenRecords(gomock.Any(),
			circulation.Actor{UserID: testutil.TestMember.ID, Role: entity.RoleMember},
			testutil.TestMember.ID).
		Return([]entity.BorrowRecord{{ID: "rec-1"}, {ID: "rec-2"}}, nil)

	r := testutil.NewRequestWithAuth(http.MethodGet, "/me/borrows", nil, memberToken())
	w := serve(handler.ListMine, r)

	assert.Equal(t, http.StatusOK, w.Code)
	body := testutil.DecodeBody(w)
	meta := body["meta"].(map[string]any)
	assert.Equal(t, 2.0, meta["count"])
	records := body["data"].([]any)
	require.Len(t, records, 2)
}

func TestBorrowHandler_ListForUser(t *testing.T) {
	t.Run("librarian lists a member's loans", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewMockCirculation(ctrl)
		handler := NewBorrowHandler(svc)

		svc.EXPECT().
			ListOpenRecords(gomock.Any(),
				circulation.Actor{UserID: testutil.TestLibrarian.ID, Role: entity.RoleLibrarian},
				"user-9").
			Return([]entity.BorrowRecord{{ID: "rec-1"}}, nil)

		r := testutil.NewRequestWithAuth(http.MethodGet, "/users/user-9/borrows", nil, librarianToken())
		w := serve(handler.ListForUser, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("member blocked from other users", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewMockCirculation(ctrl)
		handler := NewBorrowHandler(svc)

		svc.EXPECT().ListOpenRecords(gomock.Any(), gomock.Any(), "user-9").
			Return(nil, fmt.Errorf("own loans only: %w", circulation.ErrForbidden))

		r := testutil.NewRequestWithAuth(http.MethodGet, "/users/user-9/borrows", nil, memberToken())
		w := serve(handler.ListForUser, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("malformed path", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		handler := NewBorrowHandler(NewMockCirculation(ctrl))

		r := testutil.NewRequestWithAuth(http.MethodGet, "/users/a/b/borrows", nil, librarianToken())
		w := serve(handler.ListForUser, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
