// Package memory is the in-memory Store used by unit tests and local
// development without the bot database.
package memory

import (
	"context"
	"sort"
	"sync"

	"presadmin/internal/review/models"
	"presadmin/internal/review/store"
	"presadmin/pkg/platform/sentinel"
)

type InMemory struct {
	mu            sync.RWMutex
	members       map[int64]*models.Member
	presentations map[int64]*models.Presentation
}

func NewInMemory() *InMemory {
	return &InMemory{
		members:       make(map[int64]*models.Member),
		presentations: make(map[int64]*models.Presentation),
	}
}

// SeedMember inserts a member row, standing in for the bot process that
// owns the real table.
func (s *InMemory) SeedMember(m models.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := m
	s.members[m.ID] = &copied
}

// SeedPresentation inserts a presentation row, standing in for the bot
// process that owns the real table.
func (s *InMemory) SeedPresentation(p models.Presentation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := p
	s.presentations[p.ID] = &copied
}

func (s *InMemory) ListPresentations(_ context.Context, filter store.PresentationFilter) ([]models.Presentation, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Presentation, 0, len(s.presentations))
	for _, p := range s.presentations {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	return page(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (s *InMemory) GetPresentation(_ context.Context, id int64) (*models.Presentation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.presentations[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *InMemory) ApplyReview(_ context.Context, id int64, update models.ReviewUpdate) (*models.Presentation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.presentations[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	p.Status = update.Status
	reviewedBy := update.ReviewedBy
	p.ReviewedBy = &reviewedBy
	reviewedAt := update.ReviewedAt
	p.ReviewedAt = &reviewedAt
	if update.Reason != nil {
		reason := *update.Reason
		p.SuggestionReason = &reason
	}
	p.UpdatedAt = update.ReviewedAt

	copied := *p
	return &copied, nil
}

func (s *InMemory) ListMembers(_ context.Context, filter store.MemberFilter) ([]models.Member, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Member, 0, len(s.members))
	for _, m := range s.members {
		if filter.HasPresentation != nil && m.HasPresentation != *filter.HasPresentation {
			continue
		}
		if filter.Verified != nil && m.VerifiedRoleAssigned != *filter.Verified {
			continue
		}
		matched = append(matched, *m)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	return page(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (s *InMemory) GetMember(_ context.Context, id int64) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (s *InMemory) ListMemberPresentations(_ context.Context, memberID int64) ([]models.Presentation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Presentation, 0)
	for _, p := range s.presentations {
		if p.MemberID == memberID {
			matched = append(matched, *p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}

func (s *InMemory) Stats(_ context.Context) (*models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.Stats{
		TotalMembers:       len(s.members),
		TotalPresentations: len(s.presentations),
	}
	for _, m := range s.members {
		if m.HasPresentation {
			stats.MembersWithPresentations++
		}
		if m.VerifiedRoleAssigned {
			stats.MembersVerified++
		}
	}
	for _, p := range s.presentations {
		switch p.Status {
		case models.StatusApproved:
			stats.ApprovedPresentations++
		case models.StatusPending:
			stats.PendingPresentations++
		case models.StatusAutoSuggested:
			stats.AutoSuggestedPresentations++
		}
	}
	return stats, nil
}

func page[T any](items []T, limit, offset int) []T {
	limit, offset = store.Clamp(limit, offset)
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
