package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/toolshare/internal/domain"
	"github.com/yourorg/toolshare/internal/observability/metrics"
	"github.com/yourorg/toolshare/internal/validate"
	"github.com/yourorg/toolshare/pkg/cache"
)

const availableToolsCacheKey = "tools:available"
const availableToolsCacheTTL = 5 * time.Second

// LendingService enforces referential integrity and state transitions across
// users, tools, and borrowing transactions. A single mutex serializes every
// mutating operation, so multi-record updates are never observed half-applied
// and two concurrent borrows of one tool cannot both win.
type LendingService struct {
	users        domain.RecordStore[*domain.UserProfile]
	tools        domain.RecordStore[*domain.ToolListing]
	transactions domain.RecordStore[*domain.BorrowingTransaction]
	events       domain.EventPublisher
	cache        *cache.Cache
	logger       *slog.Logger

	mu sync.Mutex // held for the duration of one mutating call, never across calls
}

// NewLendingService creates the lending core. The event publisher may be nil
// when no activity feed is attached.
func NewLendingService(
	users domain.RecordStore[*domain.UserProfile],
	tools domain.RecordStore[*domain.ToolListing],
	transactions domain.RecordStore[*domain.BorrowingTransaction],
	events domain.EventPublisher,
	listingCache *cache.Cache,
	logger *slog.Logger,
) *LendingService {
	if logger == nil {
		logger = slog.Default()
	}
	if listingCache == nil {
		listingCache = cache.New()
	}
	return &LendingService{
		users:        users,
		tools:        tools,
		transactions: transactions,
		events:       events,
		cache:        listingCache,
		logger:       logger,
	}
}

func (s *LendingService) publish(kind, toolID, userID string) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.ActivityEvent{
		Kind:      kind,
		ToolID:    toolID,
		UserID:    userID,
		Timestamp: time.Now(),
	})
}

func (s *LendingService) invalidateListings() {
	s.cache.Delete(availableToolsCacheKey)
}

// --- Users ---

// CreateUser registers a new user profile
func (s *LendingService) CreateUser(ctx context.Context, username, contactInfo string) (*domain.UserProfile, error) {
	if err := validate.Username(username); err != nil {
		return nil, err
	}
	if err := validate.ContactInfo(contactInfo); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	user := &domain.UserProfile{
		UserID:        uuid.NewString(),
		Username:      username,
		ContactInfo:   contactInfo,
		ToolsOwned:    []string{},
		ToolsBorrowed: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.users.Insert(user.UserID, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("user created", slog.String("user_id", user.UserID), slog.String("username", username))
	return user, nil
}

// GetUser retrieves a user profile by ID
func (s *LendingService) GetUser(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return s.users.Get(userID)
}

// ListUsers returns all user profiles
func (s *LendingService) ListUsers(ctx context.Context) ([]*domain.UserProfile, error) {
	return s.users.Values()
}

// UserUpdate carries the mutable user fields for a partial update. Identity
// fields are absent on purpose: a client cannot overwrite them.
type UserUpdate struct {
	Username    *string `json:"username"`
	ContactInfo *string `json:"contactInfo"`
}

// UpdateUser merges the provided fields onto an existing user profile
func (s *LendingService) UpdateUser(ctx context.Context, userID string, update UserUpdate) (*domain.UserProfile, error) {
	if update.Username != nil {
		if err := validate.Username(*update.Username); err != nil {
			return nil, err
		}
	}
	if update.ContactInfo != nil {
		if err := validate.ContactInfo(*update.ContactInfo); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.users.Get(userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.ContactInfo != nil {
		user.ContactInfo = *update.ContactInfo
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Insert(userID, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user. It fails while any non-returned transaction
// references the user as borrower or as owner of the borrowed tool.
func (s *LendingService) DeleteUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.users.Get(userID)
	if err != nil {
		return err
	}

	transactions, err := s.transactions.Values()
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}
	for _, txn := range transactions {
		if !txn.Active() {
			continue
		}
		if txn.BorrowerID == userID || user.OwnsTool(txn.ToolID) {
			return fmt.Errorf("active borrowing transactions exist: %w", domain.ErrConflict)
		}
	}

	if err := s.users.Remove(userID); err != nil {
		return err
	}

	s.logger.Info("user deleted", slog.String("user_id", userID))
	return nil
}

// --- Tools ---

// CreateTool lists a new tool for lending. The tool record and the owner's
// ToolsOwned update become visible together or not at all.
func (s *LendingService) CreateTool(ctx context.Context, ownerID, toolName, description, condition string) (*domain.ToolListing, error) {
	if err := validate.ToolFields(toolName, description, condition); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.users.Get(ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tool := &domain.ToolListing{
		ToolID:       uuid.NewString(),
		OwnerID:      ownerID,
		ToolName:     toolName,
		Description:  description,
		Condition:    condition,
		Availability: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.tools.Insert(tool.ToolID, tool); err != nil {
		return nil, fmt.Errorf("failed to save tool: %w", err)
	}

	owner.ToolsOwned = append(owner.ToolsOwned, tool.ToolID)
	owner.UpdatedAt = now
	if err := s.users.Insert(ownerID, owner); err != nil {
		// Undo the tool insert so the pair stays consistent
		_ = s.tools.Remove(tool.ToolID)
		return nil, fmt.Errorf("failed to save owner: %w", err)
	}

	s.invalidateListings()
	s.publish(domain.EventToolListed, tool.ToolID, ownerID)
	s.logger.Info("tool listed",
		slog.String("tool_id", tool.ToolID),
		slog.String("owner_id", ownerID),
		slog.String("tool_name", toolName),
	)
	return tool, nil
}

// GetTool retrieves a tool listing by ID
func (s *LendingService) GetTool(ctx context.Context, toolID string) (*domain.ToolListing, error) {
	return s.tools.Get(toolID)
}

// ListTools returns all tool listings
func (s *LendingService) ListTools(ctx context.Context) ([]*domain.ToolListing, error) {
	return s.tools.Values()
}

// ToolUpdate carries the mutable tool fields for a partial update. ToolID and
// OwnerID are absent on purpose: a client cannot overwrite them.
type ToolUpdate struct {
	ToolName     *string `json:"toolName"`
	Description  *string `json:"description"`
	Condition    *string `json:"condition"`
	Availability *bool   `json:"availability"`
}

// UpdateTool merges the provided fields onto an existing tool listing
func (s *LendingService) UpdateTool(ctx context.Context, toolID string, update ToolUpdate) (*domain.ToolListing, error) {
	if update.ToolName != nil {
		if err := validate.ToolName(*update.ToolName); err != nil {
			return nil, err
		}
	}
	if update.Description != nil {
		if err := validate.Description(*update.Description); err != nil {
			return nil, err
		}
	}
	if update.Condition != nil {
		if err := validate.Condition(*update.Condition); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tool, err := s.tools.Get(toolID)
	if err != nil {
		return nil, err
	}

	if update.ToolName != nil {
		tool.ToolName = *update.ToolName
	}
	if update.Description != nil {
		tool.Description = *update.Description
	}
	if update.Condition != nil {
		tool.Condition = *update.Condition
	}
	if update.Availability != nil {
		tool.Availability = *update.Availability
	}
	tool.UpdatedAt = time.Now()

	if err := s.tools.Insert(toolID, tool); err != nil {
		return nil, fmt.Errorf("failed to save tool: %w", err)
	}

	s.invalidateListings()
	return tool, nil
}

// DeleteTool removes a tool. It fails while any non-returned transaction
// references the tool. On success the tool ID is also removed from the
// owner's ToolsOwned.
func (s *LendingService) DeleteTool(ctx context.Context, toolID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tool, err := s.tools.Get(toolID)
	if err != nil {
		return err
	}

	transactions, err := s.transactions.Values()
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}
	for _, txn := range transactions {
		if txn.ToolID == toolID && txn.Active() {
			return fmt.Errorf("active borrowing transactions exist: %w", domain.ErrConflict)
		}
	}

	if err := s.tools.Remove(toolID); err != nil {
		return err
	}

	// The owner may already have been deleted; that is not an error here
	if owner, err := s.users.Get(tool.OwnerID); err == nil {
		owner.ToolsOwned = removeID(owner.ToolsOwned, toolID)
		owner.UpdatedAt = time.Now()
		if err := s.users.Insert(tool.OwnerID, owner); err != nil {
			// Undo the removal so the tool record and ToolsOwned stay in step
			_ = s.tools.Insert(toolID, tool)
			return fmt.Errorf("failed to save owner: %w", err)
		}
	}

	s.invalidateListings()
	s.publish(domain.EventToolDeleted, toolID, tool.OwnerID)
	s.logger.Info("tool deleted", slog.String("tool_id", toolID))
	return nil
}

// ViewAvailableTools returns all tools currently free to borrow. Results are
// served from a short-lived cache that every mutation invalidates.
func (s *LendingService) ViewAvailableTools(ctx context.Context) ([]*domain.ToolListing, error) {
	if cached, ok := s.cache.Get(availableToolsCacheKey); ok {
		if tools, ok := cached.([]*domain.ToolListing); ok {
			return tools, nil
		}
	}

	all, err := s.tools.Values()
	if err != nil {
		return nil, err
	}

	available := make([]*domain.ToolListing, 0, len(all))
	for _, tool := range all {
		if tool.Availability {
			available = append(available, tool)
		}
	}

	s.cache.Set(availableToolsCacheKey, available, availableToolsCacheTTL)
	return available, nil
}

// --- Transactions ---

// CreateTransaction borrows a tool: it creates a pending transaction, flips
// the tool to unavailable, and records the tool in the borrower's
// ToolsBorrowed. The tool availability check and flip happen under the
// service mutex, so of two concurrent borrows exactly one wins.
func (s *LendingService) CreateTransaction(ctx context.Context, borrowerID, toolID string) (*domain.BorrowingTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Tool state first: an unavailable or absent tool is a Conflict
	// regardless of borrower validity.
	tool, err := s.tools.Get(toolID)
	if err != nil {
		metrics.ObserveBorrow("conflict")
		return nil, fmt.Errorf("tool unavailable: %w", domain.ErrConflict)
	}
	if !tool.Availability {
		metrics.ObserveBorrow("conflict")
		return nil, fmt.Errorf("tool unavailable: %w", domain.ErrConflict)
	}

	borrower, err := s.users.Get(borrowerID)
	if err != nil {
		metrics.ObserveBorrow("not_found")
		return nil, err
	}

	now := time.Now()
	txn := &domain.BorrowingTransaction{
		TransactionID: uuid.NewString(),
		ToolID:        toolID,
		BorrowerID:    borrowerID,
		BorrowDate:    now,
		Status:        domain.StatusPending,
	}

	if err := s.transactions.Insert(txn.TransactionID, txn); err != nil {
		metrics.ObserveBorrow("error")
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	tool.Availability = false
	tool.UpdatedAt = now
	if err := s.tools.Insert(toolID, tool); err != nil {
		_ = s.transactions.Remove(txn.TransactionID)
		metrics.ObserveBorrow("error")
		return nil, fmt.Errorf("failed to save tool: %w", err)
	}

	borrower.ToolsBorrowed = append(borrower.ToolsBorrowed, toolID)
	borrower.UpdatedAt = now
	if err := s.users.Insert(borrowerID, borrower); err != nil {
		tool.Availability = true
		_ = s.tools.Insert(toolID, tool)
		_ = s.transactions.Remove(txn.TransactionID)
		metrics.ObserveBorrow("error")
		return nil, fmt.Errorf("failed to save borrower: %w", err)
	}

	s.invalidateListings()
	s.publish(domain.EventToolBorrowed, toolID, borrowerID)
	metrics.ObserveBorrow("success")
	s.logger.Info("tool borrowed",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("tool_id", toolID),
		slog.String("borrower_id", borrowerID),
	)
	return txn, nil
}

// ReturnTool completes a pending transaction: it stamps the return date,
// re-enables the tool, and clears the borrower's ToolsBorrowed entry.
// A second call on the same transaction fails; the operation is deliberately
// not idempotent.
func (s *LendingService) ReturnTool(ctx context.Context, transactionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, err := s.transactions.Get(transactionID)
	if err != nil {
		metrics.ObserveReturn("not_found")
		return "", err
	}
	if txn.Status != domain.StatusPending {
		metrics.ObserveReturn("invalid_state")
		return "", fmt.Errorf("transaction already resolved: %w", domain.ErrInvalidState)
	}

	now := time.Now()
	txn.Status = domain.StatusReturned
	txn.ReturnDate = &now
	if err := s.transactions.Insert(transactionID, txn); err != nil {
		metrics.ObserveReturn("error")
		return "", fmt.Errorf("failed to save transaction: %w", err)
	}

	// Undo the status flip when a later write fails, so the transaction
	// stays pending and a retried return can succeed
	restoreTransaction := func() {
		txn.Status = domain.StatusPending
		txn.ReturnDate = nil
		_ = s.transactions.Insert(transactionID, txn)
	}

	// A pending transaction blocks tool deletion, so the tool must exist
	tool, err := s.tools.Get(txn.ToolID)
	if err != nil {
		restoreTransaction()
		metrics.ObserveReturn("error")
		return "", fmt.Errorf("failed to get tool: %w", err)
	}
	tool.Availability = true
	tool.UpdatedAt = now
	if err := s.tools.Insert(txn.ToolID, tool); err != nil {
		restoreTransaction()
		metrics.ObserveReturn("error")
		return "", fmt.Errorf("failed to save tool: %w", err)
	}

	if borrower, err := s.users.Get(txn.BorrowerID); err == nil {
		borrower.ToolsBorrowed = removeID(borrower.ToolsBorrowed, txn.ToolID)
		borrower.UpdatedAt = now
		if err := s.users.Insert(txn.BorrowerID, borrower); err != nil {
			tool.Availability = false
			_ = s.tools.Insert(txn.ToolID, tool)
			restoreTransaction()
			metrics.ObserveReturn("error")
			return "", fmt.Errorf("failed to save borrower: %w", err)
		}
	}

	s.invalidateListings()
	s.publish(domain.EventToolReturned, txn.ToolID, txn.BorrowerID)
	metrics.ObserveReturn("success")
	s.logger.Info("tool returned",
		slog.String("transaction_id", transactionID),
		slog.String("tool_id", txn.ToolID),
	)
	return fmt.Sprintf("tool %s returned", tool.ToolName), nil
}

// GetTransaction retrieves a transaction by ID
func (s *LendingService) GetTransaction(ctx context.Context, transactionID string) (*domain.BorrowingTransaction, error) {
	return s.transactions.Get(transactionID)
}

// ListTransactions returns all borrowing transactions
func (s *LendingService) ListTransactions(ctx context.Context) ([]*domain.BorrowingTransaction, error) {
	return s.transactions.Values()
}

// TransactionUpdate carries the mutable transaction fields. Identity and
// reference fields are absent on purpose.
type TransactionUpdate struct {
	Status *string `json:"status"`
}

// UpdateTransaction merges the provided fields onto an existing transaction.
// Status moves only forward: pending to approved or returned, approved to
// returned. Setting status to returned this way does not touch tool
// availability; only ReturnTool does.
func (s *LendingService) UpdateTransaction(ctx context.Context, transactionID string, update TransactionUpdate) (*domain.BorrowingTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, err := s.transactions.Get(transactionID)
	if err != nil {
		return nil, err
	}

	if update.Status != nil {
		next := *update.Status
		if !domain.ValidStatus(next) {
			return nil, fmt.Errorf("unknown status %q: %w", next, domain.ErrInvalidInput)
		}
		if next != txn.Status {
			if !validTransition(txn.Status, next) {
				return nil, fmt.Errorf("cannot move transaction from %s to %s: %w", txn.Status, next, domain.ErrInvalidState)
			}
			txn.Status = next
		}
	}

	if err := s.transactions.Insert(transactionID, txn); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}
	return txn, nil
}

// DeleteTransaction removes a returned transaction. Deleting a pending one
// would orphan the tool in an unavailable state, so it is refused.
func (s *LendingService) DeleteTransaction(ctx context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, err := s.transactions.Get(transactionID)
	if err != nil {
		return err
	}
	if txn.Status != domain.StatusReturned {
		return fmt.Errorf("transaction is not returned: %w", domain.ErrConflict)
	}

	if err := s.transactions.Remove(transactionID); err != nil {
		return err
	}

	s.logger.Info("transaction deleted", slog.String("transaction_id", transactionID))
	return nil
}

// validTransition reports whether a transaction status may move from one
// state to a different one
func validTransition(from, to string) bool {
	switch from {
	case domain.StatusPending:
		return to == domain.StatusApproved || to == domain.StatusReturned
	case domain.StatusApproved:
		return to == domain.StatusReturned
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
