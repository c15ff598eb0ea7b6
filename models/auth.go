package models

// WhoAmI describes the session bound to the current request.
type WhoAmI struct {
	SessionID  string `json:"session_id"`
	UserEID    string `json:"user_eid"`
	UserID     string `json:"user_id"`
	RemoteUser string `json:"remote_user,omitempty"`
	Trusted    bool   `json:"trusted"`
}

// RemoteIdentity is the owner of the tracking cookie as seen by the remote system.
type RemoteIdentity struct {
	Found        bool   `json:"found"`
	Principal    string `json:"principal,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	EmailAddress string `json:"email,omitempty"`
}

// TokenCheck is the outcome of an offline token verification.
type TokenCheck struct {
	Valid    bool   `json:"valid"`
	Identity string `json:"identity,omitempty"`
	Error    string `json:"error,omitempty"`
}
