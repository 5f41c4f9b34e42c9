package models

import (
	"bytes"
	"encoding/json"
)

// DeletedUser is shown wherever a record references an account that no
// longer exists.
const DeletedUser = "Deleted user"

// UserRef is a populated reference to a user. The backend sends null when
// the account was deleted, and occasionally a bare id string when the
// reference was not populated.
type UserRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type plain UserRef
	return json.Unmarshal(data, (*plain)(r))
}

// DisplayName returns the best label for the referenced user.
func (r *UserRef) DisplayName() string {
	if r == nil || (r.ID == "" && r.Name == "" && r.Email == "") {
		return DeletedUser
	}
	if r.Name != "" {
		return r.Name
	}
	if r.Email != "" {
		return r.Email
	}
	return r.ID
}

// Contact returns the email, or "—" when there is none.
func (r *UserRef) Contact() string {
	if r == nil || r.Email == "" {
		return "—"
	}
	return r.Email
}
