package domain

// DashboardPayload is the role-scoped bundle returned by the backend
// dashboard endpoint: user summary, profile, stats, plus free-form fields
// the backend adds per role. It is held transiently per page visit and
// never persisted.
type DashboardPayload map[string]any
