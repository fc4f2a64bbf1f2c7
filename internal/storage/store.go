// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/divvyhq/divvy/internal/models"
)

// ErrNotFound is returned by point lookups when no record matches.
// Implementations must return it (possibly wrapped) so callers can translate
// it into their own taxonomy.
var ErrNotFound = errors.New("record not found")

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// GroupStore persists groups and their member sets.
type GroupStore interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, id string) error
	GroupExistsByNameAndCreator(ctx context.Context, name, creatorID string) (bool, error)
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)
}

// ExpenseStore persists expenses together with their shares. Create and
// update write the expense and its full share set in one transaction;
// update replaces the share set wholesale.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, id string) error
	// ListExpensesByGroup returns the group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
	// ListExpensesByUser returns expenses the user holds a share in.
	ListExpensesByUser(ctx context.Context, userID string) ([]*models.Expense, error)
	SumShareAmountsByUser(ctx context.Context, userID string) (float64, error)
}

// ContactStore persists directed contact edges.
type ContactStore interface {
	CreateContact(ctx context.Context, contact *models.Contact) error
	GetContact(ctx context.Context, id string) (*models.Contact, error)
	UpdateContact(ctx context.Context, contact *models.Contact) error
	DeleteContact(ctx context.Context, id string) error

	ListContactsByOwner(ctx context.Context, ownerID string) ([]*models.Contact, error)
	ListContactsByOwnerAndStatus(ctx context.Context, ownerID string, status models.ContactStatus) ([]*models.Contact, error)
	// FindContactByUsers returns the edge ownerID→contactUserID, or
	// ErrNotFound when no such edge exists.
	FindContactByUsers(ctx context.Context, ownerID, contactUserID string) (*models.Contact, error)
	// FindContactByOwnerAndEmail matches on the stored contact email field
	// regardless of whether the edge resolved to a registered user.
	FindContactByOwnerAndEmail(ctx context.Context, ownerID, email string) (*models.Contact, error)
	ListReceivedInvitations(ctx context.Context, contactUserID string, status models.ContactStatus) ([]*models.Contact, error)
	// ListFriends returns accepted, unblocked edges for the owner.
	ListFriends(ctx context.Context, ownerID string) ([]*models.Contact, error)
	ListBlockedContacts(ctx context.Context, ownerID string) ([]*models.Contact, error)
	CountFriends(ctx context.Context, ownerID string) (int64, error)
	// SearchContacts does a case-insensitive substring match over the edge's
	// contact name/email and, for registered counterparts, their username,
	// names and email.
	SearchContacts(ctx context.Context, ownerID, term string) ([]*models.Contact, error)
}

// Store is the full persistence surface consumed by the services. The
// abstraction allows swapping storage backends without changing the service
// layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	ContactStore

	// Close releases any resources held by the store.
	Close() error
}
