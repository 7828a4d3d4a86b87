package model

import "time"

// Nominee is a vote-able entity owned by exactly one user.
type Nominee struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creator_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Votes     *int64    `json:"votes,omitempty"` // nil means untallied
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VoteCount returns the tally, treating an untallied nominee as zero.
func (n *Nominee) VoteCount() int64 {
	if n.Votes == nil {
		return 0
	}
	return *n.Votes
}

// NomineePatch lists the fields a partial update may change.
// Nil fields are left untouched.
type NomineePatch struct {
	Name  *string
	Email *string
	Votes *int64
}

// IsEmpty returns true when the patch changes nothing.
func (p NomineePatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Votes == nil
}
