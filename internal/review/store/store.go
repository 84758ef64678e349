// Package store defines the persistence surface of the review domain.
// Implementations return sentinel errors for infrastructure facts; the
// service layer translates them into domain errors.
package store

import (
	"context"

	"presadmin/internal/review/models"
)

// Pagination bounds, matching the API contract.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// PresentationFilter narrows and pages a presentation listing.
type PresentationFilter struct {
	Status *string
	Limit  int
	Offset int
}

// MemberFilter narrows and pages a member listing.
type MemberFilter struct {
	HasPresentation *bool
	Verified        *bool
	Limit           int
	Offset          int
}

// Clamp normalizes limit and offset into their allowed ranges.
func Clamp(limit, offset int) (int, int) {
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Store is the read/review surface over the bot's members and
// presentations tables.
type Store interface {
	// ListPresentations returns one page plus the unpaged total count.
	ListPresentations(ctx context.Context, filter PresentationFilter) ([]models.Presentation, int, error)
	// GetPresentation returns sentinel.ErrNotFound for unknown ids.
	GetPresentation(ctx context.Context, id int64) (*models.Presentation, error)
	// ApplyReview records a staff decision on a presentation and returns
	// the updated row, or sentinel.ErrNotFound.
	ApplyReview(ctx context.Context, id int64, update models.ReviewUpdate) (*models.Presentation, error)

	// ListMembers returns one page plus the unpaged total count.
	ListMembers(ctx context.Context, filter MemberFilter) ([]models.Member, int, error)
	// GetMember returns sentinel.ErrNotFound for unknown ids.
	GetMember(ctx context.Context, id int64) (*models.Member, error)
	// ListMemberPresentations returns all presentations for one member.
	ListMemberPresentations(ctx context.Context, memberID int64) ([]models.Presentation, error)

	// Stats computes the dashboard counters.
	Stats(ctx context.Context) (*models.Stats, error)
}
