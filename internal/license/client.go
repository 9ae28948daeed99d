package license

import "time"

// Client is the human or entity owning licenses. Created only through the
// admin surface; the validation protocol reads it and never writes it.
// First name, last name and country together form the uniqueness tuple.
type Client struct {
	ID        int64
	FirstName string
	LastName  string
	Country   string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
}

// FullName returns the display name used in operator-facing output.
func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}
