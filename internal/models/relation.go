package models

// Relation list kinds. Every user owns exactly one list of each kind,
// created together with the user.
const (
	ListKindContact = "contact"
	ListKindBlock   = "block"
)

// RelationRow is one entry of a contact or block list, joined with the
// member's current status.
type RelationRow struct {
	Login  string  `json:"login" db:"member_login"`
	Status *string `json:"status,omitempty" db:"status"`
}
