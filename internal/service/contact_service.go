package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/divvyhq/divvy/internal/apperr"
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/storage"
)

// ContactService owns the directed contact-edge state machine.
//
// Each edge belongs to one user and moves PENDING → ACCEPTED or DECLINED;
// blocking is unconditional and unilateral (the counterpart's mirror edge is
// never touched). Unblocking always restores ACCEPTED, even for an edge that
// was never accepted. A mutual friendship is two independent edges.
type ContactService struct {
	store storage.Store
}

// NewContactService creates a ContactService with the given storage backend.
func NewContactService(store storage.Store) *ContactService {
	return &ContactService{store: store}
}

func (s *ContactService) requireUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("user", userID)
	}
	if err != nil {
		return nil, apperr.Internal("user", err)
	}
	return user, nil
}

func (s *ContactService) requireContact(ctx context.Context, contactID string) (*models.Contact, error) {
	contact, err := s.store.GetContact(ctx, contactID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("contact", contactID)
	}
	if err != nil {
		return nil, apperr.Internal("contact", err)
	}
	return contact, nil
}

// AddByUser creates a PENDING edge ownerID→contactUserID. Self-adds and
// duplicate edges in the same direction are rejected.
func (s *ContactService) AddByUser(ctx context.Context, ownerID, contactUserID string, relType models.RelationshipType) (*models.Contact, error) {
	if ownerID == contactUserID {
		return nil, apperr.Validation("contact", "cannot add yourself as a contact")
	}
	if !relType.Valid() {
		return nil, apperr.Validation("contact", "unknown relationship type: %s", relType)
	}
	if _, err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}
	target, err := s.requireUser(ctx, contactUserID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.FindContactByUsers(ctx, ownerID, contactUserID); err == nil {
		return nil, apperr.Conflict("contact", "contact already exists")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Internal("contact", err)
	}

	contact := &models.Contact{
		OwnerID:          ownerID,
		ContactUserID:    target.ID,
		ContactName:      target.DisplayName(),
		ContactEmail:     target.Email,
		Status:           models.ContactPending,
		RelationshipType: relType,
	}
	if err := s.store.CreateContact(ctx, contact); err != nil {
		return nil, apperr.Internal("contact", err)
	}

	slog.Info("contact invitation sent", "owner_id", ownerID, "contact_user_id", contactUserID)
	return contact, nil
}

// AddByEmail creates a PENDING edge toward an email address. If the email
// belongs to a registered user, the edge targets that user; either way, a
// second edge from the same owner to the same email is a conflict.
func (s *ContactService) AddByEmail(ctx context.Context, ownerID, email, name string, relType models.RelationshipType) (*models.Contact, error) {
	if email == "" {
		return nil, apperr.Validation("contact", "contact email is required")
	}
	if !relType.Valid() {
		return nil, apperr.Validation("contact", "unknown relationship type: %s", relType)
	}
	owner, err := s.requireUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.FindContactByOwnerAndEmail(ctx, ownerID, email); err == nil {
		return nil, apperr.Conflict("contact", "contact with this email already exists")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Internal("contact", err)
	}

	contact := &models.Contact{
		OwnerID:          ownerID,
		ContactName:      name,
		ContactEmail:     email,
		Status:           models.ContactPending,
		RelationshipType: relType,
	}

	registered, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if registered.ID == owner.ID {
			return nil, apperr.Validation("contact", "cannot add yourself as a contact")
		}
		contact.ContactUserID = registered.ID
		if contact.ContactName == "" {
			contact.ContactName = registered.DisplayName()
		}
	case errors.Is(err, storage.ErrNotFound):
		// Stays an unregistered contact.
	default:
		return nil, apperr.Internal("contact", err)
	}

	if err := s.store.CreateContact(ctx, contact); err != nil {
		return nil, apperr.Internal("contact", err)
	}
	return contact, nil
}

// Accept transitions a PENDING invitation addressed to userID into ACCEPTED
// and upserts the reciprocal edge. Re-accepting a stale reference fails
// without duplicating the reciprocal.
func (s *ContactService) Accept(ctx context.Context, userID, contactID string) (*models.Contact, error) {
	contact, err := s.requireContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact.ContactUserID != userID || contact.Status != models.ContactPending {
		return nil, apperr.InvalidState("contact", "invitation is not pending for this user")
	}

	contact.Status = models.ContactAccepted
	if err := s.store.UpdateContact(ctx, contact); err != nil {
		return nil, apperr.Internal("contact", err)
	}

	if err := s.ensureReciprocal(ctx, contact); err != nil {
		return nil, err
	}

	slog.Info("contact invitation accepted", "contact_id", contact.ID, "user_id", userID)
	return contact, nil
}

// ensureReciprocal creates the mirror edge accepted→owner if absent. The
// check-then-create runs under the store's uniqueness guarantee, so a racing
// double accept collapses to a single reciprocal edge.
func (s *ContactService) ensureReciprocal(ctx context.Context, contact *models.Contact) error {
	_, err := s.store.FindContactByUsers(ctx, contact.ContactUserID, contact.OwnerID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return apperr.Internal("contact", err)
	}

	owner, err := s.requireUser(ctx, contact.OwnerID)
	if err != nil {
		return err
	}
	reciprocal := &models.Contact{
		OwnerID:          contact.ContactUserID,
		ContactUserID:    contact.OwnerID,
		ContactName:      owner.DisplayName(),
		ContactEmail:     owner.Email,
		Status:           models.ContactAccepted,
		RelationshipType: contact.RelationshipType,
	}
	if err := s.store.CreateContact(ctx, reciprocal); err != nil {
		// A concurrent accept already created it; the unique index on
		// (owner, contact user) guarantees there is exactly one.
		if _, findErr := s.store.FindContactByUsers(ctx, contact.ContactUserID, contact.OwnerID); findErr == nil {
			return nil
		}
		return apperr.Internal("contact", err)
	}
	return nil
}

// Decline transitions a PENDING invitation addressed to userID into
// DECLINED. Terminal: no further transitions are valid.
func (s *ContactService) Decline(ctx context.Context, userID, contactID string) error {
	contact, err := s.requireContact(ctx, contactID)
	if err != nil {
		return err
	}
	if contact.ContactUserID != userID || contact.Status != models.ContactPending {
		return apperr.InvalidState("contact", "invitation is not pending for this user")
	}

	contact.Status = models.ContactDeclined
	if err := s.store.UpdateContact(ctx, contact); err != nil {
		return apperr.Internal("contact", err)
	}
	return nil
}

// Block sets the edge to BLOCKED from any prior status. Unilateral: the
// counterpart's own edge toward the owner is untouched.
func (s *ContactService) Block(ctx context.Context, ownerID, contactID string) (*models.Contact, error) {
	contact, err := s.requireContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact.OwnerID != ownerID {
		return nil, apperr.Unauthorized("contact", "contact does not belong to this user")
	}

	contact.IsBlocked = true
	contact.Status = models.ContactBlocked
	if err := s.store.UpdateContact(ctx, contact); err != nil {
		return nil, apperr.Internal("contact", err)
	}
	return contact, nil
}

// Unblock clears the block and forces the edge back to ACCEPTED, including
// edges that were never accepted before being blocked.
func (s *ContactService) Unblock(ctx context.Context, ownerID, contactID string) (*models.Contact, error) {
	contact, err := s.requireContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact.OwnerID != ownerID {
		return nil, apperr.Unauthorized("contact", "contact does not belong to this user")
	}

	contact.IsBlocked = false
	contact.Status = models.ContactAccepted
	if err := s.store.UpdateContact(ctx, contact); err != nil {
		return nil, apperr.Internal("contact", err)
	}
	return contact, nil
}

// Remove deletes the edge and, if the counterpart holds a mirror edge, that
// one too. The unlink happens regardless of the mirror's own status.
func (s *ContactService) Remove(ctx context.Context, ownerID, contactID string) error {
	contact, err := s.requireContact(ctx, contactID)
	if err != nil {
		return err
	}
	if contact.OwnerID != ownerID {
		return apperr.Unauthorized("contact", "contact does not belong to this user")
	}

	if contact.Registered() {
		reciprocal, err := s.store.FindContactByUsers(ctx, contact.ContactUserID, contact.OwnerID)
		if err == nil {
			if err := s.store.DeleteContact(ctx, reciprocal.ID); err != nil {
				return apperr.Internal("contact", err)
			}
		} else if !errors.Is(err, storage.ErrNotFound) {
			return apperr.Internal("contact", err)
		}
	}

	if err := s.store.DeleteContact(ctx, contact.ID); err != nil {
		return apperr.Internal("contact", err)
	}
	slog.Info("contact removed", "contact_id", contactID, "owner_id", ownerID)
	return nil
}

// UpdateRelationship changes the relationship label on an owned edge.
func (s *ContactService) UpdateRelationship(ctx context.Context, ownerID, contactID string, relType models.RelationshipType) (*models.Contact, error) {
	if !relType.Valid() {
		return nil, apperr.Validation("contact", "unknown relationship type: %s", relType)
	}
	contact, err := s.requireContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact.OwnerID != ownerID {
		return nil, apperr.Unauthorized("contact", "contact does not belong to this user")
	}

	contact.RelationshipType = relType
	if err := s.store.UpdateContact(ctx, contact); err != nil {
		return nil, apperr.Internal("contact", err)
	}
	return contact, nil
}

// List returns all edges owned by the user.
func (s *ContactService) List(ctx context.Context, userID string) ([]*models.Contact, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	contacts, err := s.store.ListContactsByOwner(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("contact", err)
	}
	return contacts, nil
}

// ListFriends returns accepted, unblocked edges.
func (s *ContactService) ListFriends(ctx context.Context, userID string) ([]*models.Contact, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	friends, err := s.store.ListFriends(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("contact", err)
	}
	return friends, nil
}

// ListPendingSent returns invitations the user has sent and not yet had
// answered.
func (s *ContactService) ListPendingSent(ctx context.Context, userID string) ([]*models.Contact, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	pending, err := s.store.ListContactsByOwnerAndStatus(ctx, userID, models.ContactPending)
	if err != nil {
		return nil, apperr.Internal("contact", err)
	}
	return pending, nil
}

// ListPendingReceived returns invitations addressed to the user awaiting an
// answer.
func (s *ContactService) ListPendingReceived(ctx context.Context, userID string) ([]*models.Contact, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	received, err := s.store.ListReceivedInvitations(ctx, userID, models.ContactPending)
	if err != nil {
		return nil, apperr.Internal("contact", err)
	}
	return received, nil
}

// ListBlocked returns the user's blocked edges.
func (s *ContactService) ListBlocked(ctx context.Context, userID string) ([]*models.Contact, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	blocked, err := s.store.ListBlockedContacts(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("contact", err)
	}
	return blocked, nil
}

// Search does a substring match over the user's contacts.
func (s *ContactService) Search(ctx context.Context, userID, term string) ([]*models.Contact, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	contacts, err := s.store.SearchContacts(ctx, userID, term)
	if err != nil {
		return nil, apperr.Internal("contact", err)
	}
	return contacts, nil
}

// CountFriends counts accepted, unblocked edges.
func (s *ContactService) CountFriends(ctx context.Context, userID string) (int64, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return 0, err
	}
	count, err := s.store.CountFriends(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("contact", err)
	}
	return count, nil
}
