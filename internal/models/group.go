package models

// GroupType categorizes what a group is for.
type GroupType string

const (
	GroupTypeGeneral GroupType = "GENERAL"
	GroupTypeTrip    GroupType = "TRIP"
	GroupTypeHome    GroupType = "HOME"
	GroupTypeCouple  GroupType = "COUPLE"
	GroupTypeProject GroupType = "PROJECT"
	GroupTypeEvent   GroupType = "EVENT"
	GroupTypeOther   GroupType = "OTHER"
)

// Valid reports whether t is a known group type.
func (t GroupType) Valid() bool {
	switch t {
	case GroupTypeGeneral, GroupTypeTrip, GroupTypeHome, GroupTypeCouple,
		GroupTypeProject, GroupTypeEvent, GroupTypeOther:
		return true
	}
	return false
}

// PrivacyLevel controls who can discover a group.
type PrivacyLevel string

const (
	PrivacyPrivate    PrivacyLevel = "PRIVATE"
	PrivacyInviteOnly PrivacyLevel = "INVITE_ONLY"
	PrivacyPublic     PrivacyLevel = "PUBLIC"
)

// Valid reports whether p is a known privacy level.
func (p PrivacyLevel) Valid() bool {
	switch p {
	case PrivacyPrivate, PrivacyInviteOnly, PrivacyPublic:
		return true
	}
	return false
}

// GroupSettings are the per-group behavior flags. Members' ability to add or
// edit expenses is gated on these; the creator (admin) is always allowed.
type GroupSettings struct {
	SimplifyDebts             bool
	AutoSettle                bool
	AllowMemberAddExpense     bool
	AllowMemberEditExpense    bool
	RequireApprovalForExpense bool
	NotificationEnabled       bool
}

// DefaultGroupSettings mirrors the defaults applied at group creation.
func DefaultGroupSettings() GroupSettings {
	return GroupSettings{
		SimplifyDebts:         true,
		AllowMemberAddExpense: true,
		NotificationEnabled:   true,
	}
}

// Group represents a set of users sharing expenses.
//
// Invariant: CreatedBy is always present in Members and can never be removed.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	Name        string
	Description string

	// CreatedBy is the user id of the group's creator and sole admin.
	CreatedBy string

	// Members is the set of member user ids, creator included.
	Members []string

	DefaultCurrency string
	GroupType       GroupType
	PrivacyLevel    PrivacyLevel

	IsActive   bool
	IsArchived bool

	Settings GroupSettings

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// IsAdmin reports whether userID is the group's admin (its creator).
func (g *Group) IsAdmin(userID string) bool {
	return g.CreatedBy != "" && g.CreatedBy == userID
}

// IsMember reports whether userID is in the member set.
func (g *Group) IsMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// CanAddExpense reports whether userID may record expenses in this group.
func (g *Group) CanAddExpense(userID string) bool {
	return g.IsMember(userID) && (g.Settings.AllowMemberAddExpense || g.IsAdmin(userID))
}

// CanEditExpense reports whether userID may modify expenses in this group.
func (g *Group) CanEditExpense(userID string) bool {
	return g.IsMember(userID) && (g.Settings.AllowMemberEditExpense || g.IsAdmin(userID))
}

// Active reports whether the group is usable: active and not archived.
func (g *Group) Active() bool {
	return g.IsActive && !g.IsArchived
}

// AddMember inserts userID into the member set. Idempotent.
func (g *Group) AddMember(userID string) {
	if !g.IsMember(userID) {
		g.Members = append(g.Members, userID)
	}
}

// RemoveMember deletes userID from the member set. Callers must reject
// removal of the creator before calling this.
func (g *Group) RemoveMember(userID string) {
	for i, m := range g.Members {
		if m == userID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return
		}
	}
}
