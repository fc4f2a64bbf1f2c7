package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/storage"
)

const contactColumns = `id, owner_id, contact_user_id, contact_name, contact_email,
	contact_phone, status, relationship_type, is_blocked, added_at, updated_at`

// contact_user_id is stored as NULL for unregistered contacts so the partial
// unique index on (owner_id, contact_user_id) only guards registered edges.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateContact inserts a new directed contact edge. The unique index on
// (owner_id, contact_user_id) makes a racing duplicate insert fail rather
// than produce a second edge.
func (s *SQLiteStore) CreateContact(ctx context.Context, contact *models.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if contact.AddedAt == 0 {
		contact.AddedAt = now
	}
	contact.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO contacts ("+contactColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		contact.ID, contact.OwnerID, nullable(contact.ContactUserID),
		contact.ContactName, contact.ContactEmail, contact.ContactPhone,
		string(contact.Status), string(contact.RelationshipType),
		contact.IsBlocked, contact.AddedAt, contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func scanContact(row interface{ Scan(...any) error }) (*models.Contact, error) {
	contact := &models.Contact{}
	var contactUserID sql.NullString
	err := row.Scan(
		&contact.ID, &contact.OwnerID, &contactUserID,
		&contact.ContactName, &contact.ContactEmail, &contact.ContactPhone,
		&contact.Status, &contact.RelationshipType,
		&contact.IsBlocked, &contact.AddedAt, &contact.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}
	contact.ContactUserID = contactUserID.String
	return contact, nil
}

// GetContact retrieves a contact edge by id.
func (s *SQLiteStore) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	return scanContact(s.db.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE id = ?", id))
}

// UpdateContact rewrites a contact edge's mutable fields.
func (s *SQLiteStore) UpdateContact(ctx context.Context, contact *models.Contact) error {
	contact.UpdatedAt = time.Now().Unix()

	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET contact_user_id = ?, contact_name = ?, contact_email = ?,
		 contact_phone = ?, status = ?, relationship_type = ?, is_blocked = ?,
		 updated_at = ? WHERE id = ?`,
		nullable(contact.ContactUserID), contact.ContactName, contact.ContactEmail,
		contact.ContactPhone, string(contact.Status), string(contact.RelationshipType),
		contact.IsBlocked, contact.UpdatedAt, contact.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteContact removes a contact edge.
func (s *SQLiteStore) DeleteContact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM contacts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) queryContacts(ctx context.Context, query string, args ...any) ([]*models.Contact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}
	return contacts, nil
}

// ListContactsByOwner returns all edges owned by the user, newest first.
func (s *SQLiteStore) ListContactsByOwner(ctx context.Context, ownerID string) ([]*models.Contact, error) {
	return s.queryContacts(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE owner_id = ? ORDER BY added_at DESC, id",
		ownerID)
}

// ListContactsByOwnerAndStatus filters the owner's edges by status.
func (s *SQLiteStore) ListContactsByOwnerAndStatus(ctx context.Context, ownerID string, status models.ContactStatus) ([]*models.Contact, error) {
	return s.queryContacts(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE owner_id = ? AND status = ? ORDER BY added_at DESC, id",
		ownerID, string(status))
}

// FindContactByUsers returns the edge ownerID→contactUserID.
func (s *SQLiteStore) FindContactByUsers(ctx context.Context, ownerID, contactUserID string) (*models.Contact, error) {
	return scanContact(s.db.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE owner_id = ? AND contact_user_id = ?",
		ownerID, contactUserID))
}

// FindContactByOwnerAndEmail matches on the stored contact email field.
func (s *SQLiteStore) FindContactByOwnerAndEmail(ctx context.Context, ownerID, email string) (*models.Contact, error) {
	return scanContact(s.db.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE owner_id = ? AND contact_email = ?",
		ownerID, email))
}

// ListReceivedInvitations returns edges pointing at the user with the given
// status (the inbound side of the graph).
func (s *SQLiteStore) ListReceivedInvitations(ctx context.Context, contactUserID string, status models.ContactStatus) ([]*models.Contact, error) {
	return s.queryContacts(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE contact_user_id = ? AND status = ? ORDER BY added_at DESC, id",
		contactUserID, string(status))
}

// ListFriends returns the owner's accepted, unblocked edges.
func (s *SQLiteStore) ListFriends(ctx context.Context, ownerID string) ([]*models.Contact, error) {
	return s.queryContacts(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE owner_id = ? AND status = ? AND is_blocked = 0 ORDER BY added_at DESC, id",
		ownerID, string(models.ContactAccepted))
}

// ListBlockedContacts returns the owner's blocked edges, most recently
// updated first.
func (s *SQLiteStore) ListBlockedContacts(ctx context.Context, ownerID string) ([]*models.Contact, error) {
	return s.queryContacts(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE owner_id = ? AND is_blocked = 1 ORDER BY updated_at DESC, id",
		ownerID)
}

// CountFriends counts the owner's accepted, unblocked edges.
func (s *SQLiteStore) CountFriends(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM contacts WHERE owner_id = ? AND status = ? AND is_blocked = 0",
		ownerID, string(models.ContactAccepted),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count friends: %w", err)
	}
	return count, nil
}

// SearchContacts does a case-insensitive substring match over the edge's own
// name/email fields and, when the edge targets a registered user, that
// user's username, names and email.
func (s *SQLiteStore) SearchContacts(ctx context.Context, ownerID, term string) ([]*models.Contact, error) {
	pattern := "%" + term + "%"
	return s.queryContacts(ctx,
		`SELECT c.id, c.owner_id, c.contact_user_id, c.contact_name, c.contact_email,
		        c.contact_phone, c.status, c.relationship_type, c.is_blocked,
		        c.added_at, c.updated_at
		 FROM contacts c
		 LEFT JOIN users u ON u.id = c.contact_user_id
		 WHERE c.owner_id = ? AND (
		     c.contact_name LIKE ? COLLATE NOCASE
		     OR c.contact_email LIKE ? COLLATE NOCASE
		     OR u.username LIKE ? COLLATE NOCASE
		     OR u.first_name LIKE ? COLLATE NOCASE
		     OR u.last_name LIKE ? COLLATE NOCASE
		     OR u.email LIKE ? COLLATE NOCASE
		 )
		 ORDER BY c.added_at DESC, c.id`,
		ownerID, pattern, pattern, pattern, pattern, pattern, pattern)
}
