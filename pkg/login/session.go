package login

import "github.com/google/uuid"

// State of the authentication handshake.
type State int

const (
	// StatePasswordPending means no factor has been verified yet.
	StatePasswordPending State = iota
	// StateSecondFactorRequired means the first factor succeeded and a code
	// submission is owed.
	StateSecondFactorRequired
	// StateAuthenticated means both factors (or an exemption) succeeded.
	StateAuthenticated
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateSecondFactorRequired:
		return "second_factor_required"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "password_pending"
	}
}

// Session is the transient handshake state. It is a plain value passed into
// and returned from the flow; the caller's session layer owns storage and
// expiry. There is deliberately no ambient global holding a pending login.
type Session struct {
	PendingUserID  uuid.UUID // set while a second factor is owed
	VerifiedUserID uuid.UUID // set once fully authenticated
	ReturnURL      string    // where to send the user after the handshake
}

// State derives the handshake state from the session contents.
func (s Session) State() State {
	switch {
	case s.VerifiedUserID != uuid.Nil:
		return StateAuthenticated
	case s.PendingUserID != uuid.Nil:
		return StateSecondFactorRequired
	default:
		return StatePasswordPending
	}
}

// authenticated returns a copy promoted to fully authenticated.
func (s Session) authenticated(userID uuid.UUID) Session {
	s.PendingUserID = uuid.Nil
	s.VerifiedUserID = userID
	return s
}

// pending returns a copy awaiting a second factor.
func (s Session) pending(userID uuid.UUID) Session {
	s.PendingUserID = userID
	s.VerifiedUserID = uuid.Nil
	return s
}

// cleared returns a copy reset to the initial state.
func (s Session) cleared() Session {
	return Session{}
}
