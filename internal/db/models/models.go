// Package models holds the gorm models of the check history database
package models

const (
	// DefaultLimit is the max number of rows that are retrieved from the DB per listing call
	DefaultLimit = 50
)

// ListOptions represents pagination and filtering options for list operations
type ListOptions struct {
	Limit  int    `json:"limit"`          // Number of items to return
	Offset int    `json:"offset"`         // Number of items to skip
	Host   string `json:"host,omitempty"` // Only runs against this PI Web API host
}

// Normalize applies the default limit and clamps negative offsets
func (o *ListOptions) Normalize() {
	if o.Limit <= 0 || o.Limit > DefaultLimit {
		o.Limit = DefaultLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}
