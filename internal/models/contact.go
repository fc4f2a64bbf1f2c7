package models

// ContactStatus is the lifecycle state of one directed contact edge.
type ContactStatus string

const (
	ContactPending  ContactStatus = "PENDING"
	ContactAccepted ContactStatus = "ACCEPTED"
	ContactDeclined ContactStatus = "DECLINED"
	ContactBlocked  ContactStatus = "BLOCKED"
)

// RelationshipType labels how the owner knows the contact.
type RelationshipType string

const (
	RelationshipFriend    RelationshipType = "FRIEND"
	RelationshipFamily    RelationshipType = "FAMILY"
	RelationshipColleague RelationshipType = "COLLEAGUE"
	RelationshipRoommate  RelationshipType = "ROOMMATE"
	RelationshipOther     RelationshipType = "OTHER"
)

// Valid reports whether t is a known relationship type.
func (t RelationshipType) Valid() bool {
	switch t {
	case RelationshipFriend, RelationshipFamily, RelationshipColleague,
		RelationshipRoommate, RelationshipOther:
		return true
	}
	return false
}

// Contact is a directed edge from an owning user toward either a registered
// counterpart (ContactUserID set) or an unregistered one (ContactName and
// ContactEmail set). A mutual friendship is two edges, one per direction,
// maintained independently.
type Contact struct {
	// ID is the unique identifier for the edge (UUID format).
	ID string

	// OwnerID is the user whose contact list this edge belongs to.
	OwnerID string

	// ContactUserID is the registered counterpart's user id, empty when the
	// contact is known only by name/email.
	ContactUserID string

	ContactName  string
	ContactEmail string
	ContactPhone string

	Status           ContactStatus
	RelationshipType RelationshipType

	IsBlocked bool

	// AddedAt and UpdatedAt are Unix timestamps.
	AddedAt   int64
	UpdatedAt int64
}

// Registered reports whether the edge targets a registered user.
func (c *Contact) Registered() bool {
	return c.ContactUserID != ""
}
