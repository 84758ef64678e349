package models

// Identity is the authenticated Discord user's public profile as used by
// this service. Obtained once per OAuth exchange, never persisted.
type Identity struct {
	DiscordID int64
	Username  string
	AvatarURL string
}

// StaffDecision pairs an identity with the staff check result for one
// login. Recomputed on every login, never cached.
type StaffDecision struct {
	Identity Identity
	IsStaff  bool
}
