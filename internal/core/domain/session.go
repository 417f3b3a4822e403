package domain

// Session is the client-held record of the current authenticated identity.
// It is owned exclusively by the session store; everything else reads
// snapshots and never mutates it directly.
type Session struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	IsAuthenticated bool   `json:"is_authenticated"`
	IsLoading       bool   `json:"is_loading"`
	Error           string `json:"error,omitempty"`
	HasHydrated     bool   `json:"has_hydrated"`
}

// Consistent reports whether the session honours the core invariant:
// IsAuthenticated implies both a user record and a token. A session that
// fails this check must be fully signed out.
func (s Session) Consistent() bool {
	if !s.IsAuthenticated {
		return true
	}
	return s.User != nil && s.Token != ""
}

// PersistedSession is the subset of Session written to durable client
// storage. IsLoading and Error are transient and never persisted.
type PersistedSession struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	IsAuthenticated bool   `json:"is_authenticated"`
}
