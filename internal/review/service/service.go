// Package service orchestrates review operations over the store and
// translates infrastructure facts into domain errors.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	reviewmetrics "presadmin/internal/review/metrics"
	"presadmin/internal/review/models"
	"presadmin/internal/review/store"
	dErrors "presadmin/pkg/domain-errors"
	"presadmin/pkg/platform/sentinel"
	"presadmin/pkg/requestcontext"
)

// Page is one page of a listing plus the unpaged total.
type Page[T any] struct {
	Items  []T
	Total  int
	Limit  int
	Offset int
}

// MemberDetail is a member together with their presentations.
type MemberDetail struct {
	Member        models.Member
	Presentations []models.Presentation
}

// PresentationDetail is a presentation together with its author, when the
// member row still exists.
type PresentationDetail struct {
	Presentation models.Presentation
	Member       *models.Member
}

// Service exposes the review operations backed by the bot database.
type Service struct {
	store   store.Store
	logger  *slog.Logger
	metrics *reviewmetrics.Metrics
}

func New(st store.Store, logger *slog.Logger, m *reviewmetrics.Metrics) *Service {
	return &Service{store: st, logger: logger, metrics: m}
}

func (s *Service) ListPresentations(ctx context.Context, filter store.PresentationFilter) (*Page[models.Presentation], error) {
	if filter.Status != nil && !models.ValidStatus(*filter.Status) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown presentation status")
	}

	start := time.Now()
	limit, offset := store.Clamp(filter.Limit, filter.Offset)
	filter.Limit, filter.Offset = limit, offset

	items, total, err := s.store.ListPresentations(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list presentations")
	}
	s.observeList(start)
	return &Page[models.Presentation]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *Service) GetPresentation(ctx context.Context, id int64) (*PresentationDetail, error) {
	p, err := s.store.GetPresentation(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "presentation not found", "failed to get presentation")
	}

	detail := &PresentationDetail{Presentation: *p}

	// The member row may have been pruned by the bot; the presentation is
	// still reviewable without it.
	member, err := s.store.GetMember(ctx, p.MemberID)
	if err == nil {
		detail.Member = member
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get presentation author")
	}
	return detail, nil
}

// Approve marks a presentation approved, stamping the acting principal
// from the request context as reviewer.
func (s *Service) Approve(ctx context.Context, id int64) (*models.Presentation, error) {
	return s.review(ctx, id, models.StatusApproved, nil)
}

// Reject marks a presentation rejected. A non-empty reason is recorded in
// suggestion_reason.
func (s *Service) Reject(ctx context.Context, id int64, reason string) (*models.Presentation, error) {
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	return s.review(ctx, id, models.StatusRejected, reasonPtr)
}

func (s *Service) review(ctx context.Context, id int64, status string, reason *string) (*models.Presentation, error) {
	principal := requestcontext.Principal(ctx)
	if principal.DiscordID == 0 {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	updated, err := s.store.ApplyReview(ctx, id, models.ReviewUpdate{
		Status:     status,
		ReviewedBy: principal.DiscordID,
		ReviewedAt: requestcontext.Now(ctx),
		Reason:     reason,
	})
	if err != nil {
		return nil, wrapStoreErr(err, "presentation not found", "failed to record review")
	}

	s.logger.InfoContext(ctx, "presentation reviewed",
		"request_id", requestcontext.RequestID(ctx),
		"presentation_id", id,
		"decision", status,
		"reviewed_by", principal.DiscordID,
	)
	if s.metrics != nil {
		s.metrics.IncrementReviewed(status)
	}
	return updated, nil
}

func (s *Service) ListMembers(ctx context.Context, filter store.MemberFilter) (*Page[models.Member], error) {
	start := time.Now()
	limit, offset := store.Clamp(filter.Limit, filter.Offset)
	filter.Limit, filter.Offset = limit, offset

	items, total, err := s.store.ListMembers(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list members")
	}
	s.observeList(start)
	return &Page[models.Member]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *Service) GetMember(ctx context.Context, id int64) (*MemberDetail, error) {
	m, err := s.store.GetMember(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "member not found", "failed to get member")
	}

	presentations, err := s.store.ListMemberPresentations(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list member presentations")
	}
	return &MemberDetail{Member: *m, Presentations: presentations}, nil
}

func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute stats")
	}
	return stats, nil
}

func (s *Service) observeList(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveList(start)
	}
}

func wrapStoreErr(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
}
