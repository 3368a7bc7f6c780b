package models

import "time"

// DateFormat is the wire and storage format for signed dates.
// Calendar date only, no time component.
const DateFormat = time.DateOnly

// Document represents a signed paper: a metadata record plus a file
// kept in the upload directory under Filename. Filename is the stored
// name assigned at upload time, not the name the uploader supplied.
type Document struct {
	ID         string    `json:"id"`          // document UUID
	Name       string    `json:"name"`        // display name
	Purpose    string    `json:"purpose"`     // purpose/description
	DateSigned time.Time `json:"date_signed"` // calendar date
	Filename   string    `json:"filename"`    // stored on-disk name
	UserID     string    `json:"user_id"`     // owning user
	Owner      string    `json:"owner,omitempty"` // owner username, joined for display
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
