package dto

import "github.com/nomvote/nomvote/internal/model"

// CreateNomineeRequest represents the request body for creating a nominee.
// Any creator_id or id sent by the client is ignored.
type CreateNomineeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Votes *int64 `json:"votes,omitempty"`
}

// UpdateNomineeRequest represents the request body for a partial update.
// Absent or null fields are left unchanged.
type UpdateNomineeRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Votes *int64  `json:"votes,omitempty"`
}

// ToPatch converts the request into a model patch.
func (r UpdateNomineeRequest) ToPatch() model.NomineePatch {
	return model.NomineePatch{Name: r.Name, Email: r.Email, Votes: r.Votes}
}

// NomineeListResponse wraps the caller's nominees.
type NomineeListResponse struct {
	Nominees []*model.Nominee `json:"nominees"`
}

// NomineeResponse wraps a single nominee under the same key as the list.
type NomineeResponse struct {
	Nominees *model.Nominee `json:"nominees"`
}
