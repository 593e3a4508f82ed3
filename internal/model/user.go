// Package model defines the data structures persisted by the application.
// The json struct tags match the field names of the stored collections
// exactly: the repository serializes whole collections as JSON arrays, so
// the tags are the storage schema.
package model

// User is a registered participant. The user collection is owned by the
// identity subsystem; this module treats every field as read-only input
// except HasDownloadedCertificate, which the export pipeline flips after a
// successful download.
//
// Dates are kept as ISO date strings rather than time.Time because they are
// display snapshots, not values this module does arithmetic on. LastLogin is
// a pointer: null in storage means the user has never logged in.
type User struct {
	ID                       int     `json:"id"`
	Name                     string  `json:"name"`
	Email                    string  `json:"email"`
	RegNumber                string  `json:"regNumber"`
	Role                     string  `json:"role"`
	Status                   string  `json:"status"`
	JoinedDate               string  `json:"joinedDate"`
	LastLogin                *string `json:"lastLogin"`
	HasDownloadedCertificate bool    `json:"hasDownloadedCertificate"`
}

// StatusActive is the only status value with meaning to this module; any
// other string renders as an inactive account.
const StatusActive = "Active"
