// Package models defines the review domain entities. Both tables live in
// the SQLite database owned by the community bot; this service reads them
// and updates review outcomes, it never creates rows or migrates schema.
package models

import "time"

// Presentation review states. The bot writes pending and auto_suggested;
// staff reviews move rows to approved or rejected.
const (
	StatusPending       = "pending"
	StatusApproved      = "approved"
	StatusRejected      = "rejected"
	StatusAutoSuggested = "auto_suggested"
)

// ValidStatus reports whether s is a known presentation status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusAutoSuggested:
		return true
	}
	return false
}

// Member is a community member tracked by the bot.
type Member struct {
	ID                   int64
	DiscordID            int64
	Username             string
	HasPresentation      bool
	VerifiedRoleAssigned bool
	JoinedAt             time.Time
}

// Presentation is a user-submitted introduction post awaiting review.
type Presentation struct {
	ID               int64
	MemberID         int64
	DiscordMessageID int64
	Content          string
	Status           string
	AutoSuggestion   *string
	SuggestionReason *string
	MessageTimestamp *time.Time
	ReviewedBy       *int64
	ReviewedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReviewUpdate is the mutation a staff decision applies to a presentation.
type ReviewUpdate struct {
	Status     string
	ReviewedBy int64
	ReviewedAt time.Time
	// Reason, when set, is stored in suggestion_reason (reject only).
	Reason *string
}

// Stats are the dashboard counters.
type Stats struct {
	TotalMembers               int
	MembersWithPresentations   int
	MembersVerified            int
	TotalPresentations         int
	ApprovedPresentations      int
	PendingPresentations       int
	AutoSuggestedPresentations int
}
