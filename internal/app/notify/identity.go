/*
Package notify contains the realtime notification client for the seat-booking dashboard.

This file defines the Identity value the client derives channel membership and
ownership filters from. Identities are owned by the external session source;
the client only reads them.
*/
package notify

// Role classifies a seat-booking account.
type Role string

const (
	// RoleAdmin accounts see booking activity across every library.
	RoleAdmin Role = "admin"

	// RoleLibrarian accounts are scoped to a single library.
	RoleLibrarian Role = "librarian"

	// RoleUser accounts only see events about their own bookings.
	RoleUser Role = "user"
)

// Identity is the authenticated account the client acts on behalf of.
// It appears at login, may change on role or library reassignment, and
// disappears at logout.
type Identity struct {
	// ID is the unique account identifier.
	ID string

	// Role determines channel membership and event visibility.
	Role Role

	// LibraryID scopes librarian accounts. Empty for other roles.
	LibraryID string

	// AuthToken is the bearer token presented to the event stream on connect.
	AuthToken string
}

// Equal reports whether two identities describe the same session.
// Either side may be nil (logged out).
func (i *Identity) Equal(other *Identity) bool {
	if i == nil || other == nil {
		return i == other
	}

	return i.ID == other.ID &&
		i.Role == other.Role &&
		i.LibraryID == other.LibraryID &&
		i.AuthToken == other.AuthToken
}
