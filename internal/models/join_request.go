// internal/models/join_request.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// JoinRequestState is the approval state of a join request.
type JoinRequestState string

const (
	JoinRequestPending  JoinRequestState = "pending"
	JoinRequestAccepted JoinRequestState = "accepted"
	JoinRequestRejected JoinRequestState = "rejected"
)

// JoinRequest gates entry into a private room. Keyed per (lobby, user) in the
// lobby:{id}:join_requests hash, time-boxed by an expiry on the hash. A
// request is consumed (deleted) by the successful join it unlocked.
type JoinRequest struct {
	UserID    uuid.UUID        `json:"user_id"`
	State     JoinRequestState `json:"state"`
	Username  string           `json:"username,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
