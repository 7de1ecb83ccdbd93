package ws

import "github.com/google/uuid"

// newConnID labels one notification-stream socket for the lifetime of its
// connection. The id only appears in logs and the debug surface; it carries
// no meaning beyond telling a user's concurrent sockets apart.
func newConnID() string {
	return uuid.NewString()
}
