package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/yourorg/toolshare/internal/domain"
	"github.com/yourorg/toolshare/internal/repository"
)

func newTestService() *LendingService {
	return NewLendingService(
		repository.NewMemoryStore[*domain.UserProfile](),
		repository.NewMemoryStore[*domain.ToolListing](),
		repository.NewMemoryStore[*domain.BorrowingTransaction](),
		nil,
		nil,
		nil,
	)
}

func mustCreateUser(t *testing.T, s *LendingService, name string) *domain.UserProfile {
	t.Helper()
	user, err := s.CreateUser(context.Background(), name, name+"@example.com")
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func mustCreateTool(t *testing.T, s *LendingService, ownerID, name string) *domain.ToolListing {
	t.Helper()
	tool, err := s.CreateTool(context.Background(), ownerID, name, "a "+name, "good")
	if err != nil {
		t.Fatalf("create tool failed: %v", err)
	}
	return tool
}

func TestCreateUserValidation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "", "a@example.com"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty username, got %v", err)
	}
	if _, err := s.CreateUser(ctx, strings.Repeat("x", 51), "a@example.com"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for oversized username, got %v", err)
	}
	if _, err := s.CreateUser(ctx, "alice", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty contact, got %v", err)
	}

	user, err := s.CreateUser(ctx, "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if user.UserID == "" {
		t.Fatalf("expected generated user id")
	}
	if len(user.ToolsOwned) != 0 || len(user.ToolsBorrowed) != 0 {
		t.Fatalf("expected empty tool sets on new user")
	}
}

func TestCreateToolUpdatesOwner(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	tool := mustCreateTool(t, s, owner.UserID, "drill")

	if !tool.Availability {
		t.Fatalf("expected new tool to be available")
	}

	got, err := s.GetUser(ctx, owner.UserID)
	if err != nil {
		t.Fatalf("get owner failed: %v", err)
	}
	if !got.OwnsTool(tool.ToolID) {
		t.Fatalf("expected tool %s in owner's ToolsOwned, got %v", tool.ToolID, got.ToolsOwned)
	}
}

func TestCreateToolMissingOwner(t *testing.T) {
	s := newTestService()
	if _, err := s.CreateTool(context.Background(), "no-such-user", "drill", "a drill", "good"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for missing owner, got %v", err)
	}
}

func TestBorrowAndReturnLifecycle(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	borrower := mustCreateUser(t, s, "bob")
	tool := mustCreateTool(t, s, owner.UserID, "drill")

	txn, err := s.CreateTransaction(ctx, borrower.UserID, tool.ToolID)
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}
	if txn.Status != domain.StatusPending {
		t.Fatalf("expected pending status, got %s", txn.Status)
	}
	if txn.ReturnDate != nil {
		t.Fatalf("expected nil return date on new transaction")
	}

	gotTool, _ := s.GetTool(ctx, tool.ToolID)
	if gotTool.Availability {
		t.Fatalf("expected tool to be unavailable after borrow")
	}

	gotBorrower, _ := s.GetUser(ctx, borrower.UserID)
	if len(gotBorrower.ToolsBorrowed) != 1 || gotBorrower.ToolsBorrowed[0] != tool.ToolID {
		t.Fatalf("expected borrower ToolsBorrowed=[%s], got %v", tool.ToolID, gotBorrower.ToolsBorrowed)
	}

	available, err := s.ViewAvailableTools(ctx)
	if err != nil {
		t.Fatalf("view available failed: %v", err)
	}
	for _, a := range available {
		if a.ToolID == tool.ToolID {
			t.Fatalf("expected borrowed tool to be excluded from available listing")
		}
	}

	msg, err := s.ReturnTool(ctx, txn.TransactionID)
	if err != nil {
		t.Fatalf("return failed: %v", err)
	}
	if msg == "" {
		t.Fatalf("expected confirmation message")
	}

	gotTool, _ = s.GetTool(ctx, tool.ToolID)
	if !gotTool.Availability {
		t.Fatalf("expected tool to be available after return")
	}

	gotTxn, _ := s.GetTransaction(ctx, txn.TransactionID)
	if gotTxn.Status != domain.StatusReturned {
		t.Fatalf("expected returned status, got %s", gotTxn.Status)
	}
	if gotTxn.ReturnDate == nil {
		t.Fatalf("expected return date to be set")
	}

	gotBorrower, _ = s.GetUser(ctx, borrower.UserID)
	if len(gotBorrower.ToolsBorrowed) != 0 {
		t.Fatalf("expected empty ToolsBorrowed after return, got %v", gotBorrower.ToolsBorrowed)
	}
}

func TestReturnIsNotIdempotent(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	borrower := mustCreateUser(t, s, "bob")
	tool := mustCreateTool(t, s, owner.UserID, "drill")

	txn, err := s.CreateTransaction(ctx, borrower.UserID, tool.ToolID)
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	if _, err := s.ReturnTool(ctx, txn.TransactionID); err != nil {
		t.Fatalf("first return failed: %v", err)
	}
	if _, err := s.ReturnTool(ctx, txn.TransactionID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state on second return, got %v", err)
	}
}

func TestReturnMissingTransaction(t *testing.T) {
	s := newTestService()
	if _, err := s.ReturnTool(context.Background(), "no-such-txn"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBorrowUnavailableToolIsConflict(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	borrower := mustCreateUser(t, s, "bob")
	tool := mustCreateTool(t, s, owner.UserID, "drill")

	if _, err := s.CreateTransaction(ctx, borrower.UserID, tool.ToolID); err != nil {
		t.Fatalf("first borrow failed: %v", err)
	}

	// A second borrow is a conflict even for a valid borrower
	if _, err := s.CreateTransaction(ctx, owner.UserID, tool.ToolID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for unavailable tool, got %v", err)
	}

	// And for an unknown borrower the tool state still decides first
	if _, err := s.CreateTransaction(ctx, "no-such-user", tool.ToolID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for unavailable tool with unknown borrower, got %v", err)
	}
}

func TestBorrowMissingToolIsConflict(t *testing.T) {
	s := newTestService()
	borrower := mustCreateUser(t, s, "bob")
	if _, err := s.CreateTransaction(context.Background(), borrower.UserID, "no-such-tool"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for absent tool, got %v", err)
	}
}

func TestBorrowMissingBorrowerIsNotFound(t *testing.T) {
	s := newTestService()
	owner := mustCreateUser(t, s, "alice")
	tool := mustCreateTool(t, s, owner.UserID, "drill")

	if _, err := s.CreateTransaction(context.Background(), "no-such-user", tool.ToolID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for missing borrower, got %v", err)
	}

	// The failed borrow must leave the tool untouched
	got, _ := s.GetTool(context.Background(), tool.ToolID)
	if !got.Availability {
		t.Fatalf("expected tool to remain available after failed borrow")
	}
}

func TestConcurrentBorrowsExactlyOneWins(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	tool := mustCreateTool(t, s, owner.UserID, "drill")

	const borrowers = 8
	ids := make([]string, borrowers)
	for i := range ids {
		ids[i] = mustCreateUser(t, s, "borrower"+string(rune('a'+i))).UserID
	}

	var wg sync.WaitGroup
	results := make(chan error, borrowers)
	for _, id := range ids {
		wg.Add(1)
		go func(borrowerID string) {
			defer wg.Done()
			_, err := s.CreateTransaction(ctx, borrowerID, tool.ToolID)
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected borrow error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning borrow, got %d", wins)
	}
	if conflicts != borrowers-1 {
		t.Fatalf("expected %d conflicts, got %d", borrowers-1, conflicts)
	}
}

func TestDeleteToolGuardedByActiveTransaction(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	borrower := mustCreateUser(t, s, "bob")
	tool := mustCreateTool(t, s, owner.UserID, "drill")

	txn, err := s.CreateTransaction(ctx, borrower.UserID, tool.ToolID)
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	if err := s.DeleteTool(ctx, tool.ToolID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict deleting tool with pending transaction, got %v", err)
	}

	if _, err := s.ReturnTool(ctx, txn.TransactionID); err != nil {
		t.Fatalf("return failed: %v", err)
	}

	if err := s.DeleteTool(ctx, tool.ToolID); err != nil {
		t.Fatalf("delete after return failed: %v", err)
	}
	if _, err := s.GetTool(ctx, tool.ToolID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected tool to be gone, got %v", err)
	}

	gotOwner, _ := s.GetUser(ctx, owner.UserID)
	if gotOwner.OwnsTool(tool.ToolID) {
		t.Fatalf("expected tool removed from owner's ToolsOwned")
	}
}

func TestDeleteUserGuardedByActiveTransaction(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	borrower := mustCreateUser(t, s, "bob")
	tool := mustCreateTool(t, s, owner.UserID, "drill")

	txn, err := s.CreateTransaction(ctx, borrower.UserID, tool.ToolID)
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	// Borrower is blocked by the pending transaction
	if err := s.DeleteUser(ctx, borrower.UserID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict deleting borrower, got %v", err)
	}
	// So is the owner of the borrowed tool
	if err := s.DeleteUser(ctx, owner.UserID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict deleting owner, got %v", err)
	}

	if _, err := s.ReturnTool(ctx, txn.TransactionID); err != nil {
		t.Fatalf("return failed: %v", err)
	}

	if err := s.DeleteUser(ctx, borrower.UserID); err != nil {
		t.Fatalf("delete borrower after return failed: %v", err)
	}
	if _, err := s.GetUser(ctx, borrower.UserID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected borrower to be gone, got %v", err)
	}
}

func TestDeleteMissingTargets(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if err := s.DeleteUser(ctx, "no-such-user"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.DeleteTool(ctx, "no-such-tool"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, "no-such-txn"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteTransactionOnlyWhenReturned(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	borrower := mustCreateUser(t, s, "bob")
	tool := mustCreateTool(t, s, owner.UserID, "drill")

	txn, err := s.CreateTransaction(ctx, borrower.UserID, tool.ToolID)
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	if err := s.DeleteTransaction(ctx, txn.TransactionID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict deleting pending transaction, got %v", err)
	}

	if _, err := s.ReturnTool(ctx, txn.TransactionID); err != nil {
		t.Fatalf("return failed: %v", err)
	}
	if err := s.DeleteTransaction(ctx, txn.TransactionID); err != nil {
		t.Fatalf("delete returned transaction failed: %v", err)
	}
}

func TestUpdateUserMergesFields(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	user := mustCreateUser(t, s, "alice")

	newName := "alice2"
	updated, err := s.UpdateUser(ctx, user.UserID, UserUpdate{Username: &newName})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Username != "alice2" {
		t.Fatalf("expected username updated, got %s", updated.Username)
	}
	if updated.ContactInfo != user.ContactInfo {
		t.Fatalf("expected contact info unchanged, got %s", updated.ContactInfo)
	}
	if updated.UserID != user.UserID {
		t.Fatalf("expected user id unchanged")
	}
}

func TestUpdateToolMergesFields(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	tool := mustCreateTool(t, s, owner.UserID, "drill")

	newName := "hammer drill"
	updated, err := s.UpdateTool(ctx, tool.ToolID, ToolUpdate{ToolName: &newName})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ToolName != "hammer drill" {
		t.Fatalf("expected name updated, got %s", updated.ToolName)
	}
	if updated.ToolID != tool.ToolID || updated.OwnerID != tool.OwnerID {
		t.Fatalf("expected identity fields unchanged")
	}
	if updated.Description != tool.Description || updated.Condition != tool.Condition {
		t.Fatalf("expected untouched fields unchanged")
	}
}

func TestUpdateTransactionStatusTransitions(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	borrower := mustCreateUser(t, s, "bob")
	tool := mustCreateTool(t, s, owner.UserID, "drill")

	txn, err := s.CreateTransaction(ctx, borrower.UserID, tool.ToolID)
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	bogus := "lost"
	if _, err := s.UpdateTransaction(ctx, txn.TransactionID, TransactionUpdate{Status: &bogus}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown status, got %v", err)
	}

	approved := domain.StatusApproved
	updated, err := s.UpdateTransaction(ctx, txn.TransactionID, TransactionUpdate{Status: &approved})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if updated.Status != domain.StatusApproved {
		t.Fatalf("expected approved, got %s", updated.Status)
	}

	// Approval alone never touches availability
	gotTool, _ := s.GetTool(ctx, tool.ToolID)
	if gotTool.Availability {
		t.Fatalf("expected tool to stay unavailable while approved")
	}

	// Status cannot move backward
	pending := domain.StatusPending
	if _, err := s.UpdateTransaction(ctx, txn.TransactionID, TransactionUpdate{Status: &pending}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state moving back to pending, got %v", err)
	}

	returned := domain.StatusReturned
	if _, err := s.UpdateTransaction(ctx, txn.TransactionID, TransactionUpdate{Status: &returned}); err != nil {
		t.Fatalf("move to returned failed: %v", err)
	}
	if _, err := s.UpdateTransaction(ctx, txn.TransactionID, TransactionUpdate{Status: &approved}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state leaving returned, got %v", err)
	}
}

// flakyStore wraps a record store and fails the next failInserts writes
type flakyStore[T any] struct {
	domain.RecordStore[T]
	failInserts int
}

func (s *flakyStore[T]) Insert(id string, value T) error {
	if s.failInserts > 0 {
		s.failInserts--
		return errors.New("store write failed")
	}
	return s.RecordStore.Insert(id, value)
}

func TestReturnRollsBackOnToolSaveFailure(t *testing.T) {
	toolStore := &flakyStore[*domain.ToolListing]{RecordStore: repository.NewMemoryStore[*domain.ToolListing]()}
	s := NewLendingService(
		repository.NewMemoryStore[*domain.UserProfile](),
		toolStore,
		repository.NewMemoryStore[*domain.BorrowingTransaction](),
		nil,
		nil,
		nil,
	)
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	borrower := mustCreateUser(t, s, "bob")
	tool := mustCreateTool(t, s, owner.UserID, "drill")
	txn, err := s.CreateTransaction(ctx, borrower.UserID, tool.ToolID)
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	toolStore.failInserts = 1
	if _, err := s.ReturnTool(ctx, txn.TransactionID); err == nil {
		t.Fatalf("expected return to fail when the tool save fails")
	}

	// The failed return must leave the transaction pending so a retry works
	gotTxn, _ := s.GetTransaction(ctx, txn.TransactionID)
	if gotTxn.Status != domain.StatusPending {
		t.Fatalf("expected transaction restored to pending, got %s", gotTxn.Status)
	}
	if gotTxn.ReturnDate != nil {
		t.Fatalf("expected return date cleared, got %v", gotTxn.ReturnDate)
	}
	gotTool, _ := s.GetTool(ctx, tool.ToolID)
	if gotTool.Availability {
		t.Fatalf("expected tool still unavailable after failed return")
	}

	if _, err := s.ReturnTool(ctx, txn.TransactionID); err != nil {
		t.Fatalf("retried return failed: %v", err)
	}
	gotTxn, _ = s.GetTransaction(ctx, txn.TransactionID)
	if gotTxn.Status != domain.StatusReturned {
		t.Fatalf("expected returned after retry, got %s", gotTxn.Status)
	}
	gotTool, _ = s.GetTool(ctx, tool.ToolID)
	if !gotTool.Availability {
		t.Fatalf("expected tool available after retry")
	}
}

func TestReturnRollsBackOnBorrowerSaveFailure(t *testing.T) {
	userStore := &flakyStore[*domain.UserProfile]{RecordStore: repository.NewMemoryStore[*domain.UserProfile]()}
	s := NewLendingService(
		userStore,
		repository.NewMemoryStore[*domain.ToolListing](),
		repository.NewMemoryStore[*domain.BorrowingTransaction](),
		nil,
		nil,
		nil,
	)
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	borrower := mustCreateUser(t, s, "bob")
	tool := mustCreateTool(t, s, owner.UserID, "drill")
	txn, err := s.CreateTransaction(ctx, borrower.UserID, tool.ToolID)
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	userStore.failInserts = 1
	if _, err := s.ReturnTool(ctx, txn.TransactionID); err == nil {
		t.Fatalf("expected return to fail when the borrower save fails")
	}

	gotTxn, _ := s.GetTransaction(ctx, txn.TransactionID)
	if gotTxn.Status != domain.StatusPending || gotTxn.ReturnDate != nil {
		t.Fatalf("expected transaction restored to pending, got %+v", gotTxn)
	}
	gotTool, _ := s.GetTool(ctx, tool.ToolID)
	if gotTool.Availability {
		t.Fatalf("expected tool availability rolled back to false")
	}
	gotBorrower, _ := s.GetUser(ctx, borrower.UserID)
	if len(gotBorrower.ToolsBorrowed) != 1 {
		t.Fatalf("expected ToolsBorrowed untouched, got %v", gotBorrower.ToolsBorrowed)
	}

	if _, err := s.ReturnTool(ctx, txn.TransactionID); err != nil {
		t.Fatalf("retried return failed: %v", err)
	}
	gotBorrower, _ = s.GetUser(ctx, borrower.UserID)
	if len(gotBorrower.ToolsBorrowed) != 0 {
		t.Fatalf("expected ToolsBorrowed cleared after retry, got %v", gotBorrower.ToolsBorrowed)
	}
}

func TestDeleteToolRollsBackOnOwnerSaveFailure(t *testing.T) {
	userStore := &flakyStore[*domain.UserProfile]{RecordStore: repository.NewMemoryStore[*domain.UserProfile]()}
	s := NewLendingService(
		userStore,
		repository.NewMemoryStore[*domain.ToolListing](),
		repository.NewMemoryStore[*domain.BorrowingTransaction](),
		nil,
		nil,
		nil,
	)
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	tool := mustCreateTool(t, s, owner.UserID, "drill")

	userStore.failInserts = 1
	if err := s.DeleteTool(ctx, tool.ToolID); err == nil {
		t.Fatalf("expected delete to fail when the owner save fails")
	}

	// The tool record must survive so it cannot dangle in ToolsOwned
	if _, err := s.GetTool(ctx, tool.ToolID); err != nil {
		t.Fatalf("expected tool restored after failed delete, got %v", err)
	}
	gotOwner, _ := s.GetUser(ctx, owner.UserID)
	if !gotOwner.OwnsTool(tool.ToolID) {
		t.Fatalf("expected owner's ToolsOwned unchanged after failed delete")
	}

	if err := s.DeleteTool(ctx, tool.ToolID); err != nil {
		t.Fatalf("retried delete failed: %v", err)
	}
	if _, err := s.GetTool(ctx, tool.ToolID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected tool gone after retry, got %v", err)
	}
	gotOwner, _ = s.GetUser(ctx, owner.UserID)
	if gotOwner.OwnsTool(tool.ToolID) {
		t.Fatalf("expected tool removed from ToolsOwned after retry")
	}
}

func TestViewAvailableToolsReflectsMutations(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	borrower := mustCreateUser(t, s, "bob")
	t1 := mustCreateTool(t, s, owner.UserID, "drill")
	t2 := mustCreateTool(t, s, owner.UserID, "saw")

	available, err := s.ViewAvailableTools(ctx)
	if err != nil {
		t.Fatalf("view available failed: %v", err)
	}
	if len(available) != 2 {
		t.Fatalf("expected 2 available tools, got %d", len(available))
	}

	txn, err := s.CreateTransaction(ctx, borrower.UserID, t1.ToolID)
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	// The cache must not serve the stale listing
	available, _ = s.ViewAvailableTools(ctx)
	if len(available) != 1 || available[0].ToolID != t2.ToolID {
		t.Fatalf("expected only %s available, got %v", t2.ToolID, available)
	}

	if _, err := s.ReturnTool(ctx, txn.TransactionID); err != nil {
		t.Fatalf("return failed: %v", err)
	}
	available, _ = s.ViewAvailableTools(ctx)
	if len(available) != 2 {
		t.Fatalf("expected 2 available tools after return, got %d", len(available))
	}
}
