package handler

import (
	"time"
	"unicode/utf8"

	"presadmin/internal/review/models"
	"presadmin/internal/review/service"
)

// listContentLimit is how much presentation content a listing carries;
// the full text is only returned by the detail endpoint.
const listContentLimit = 200

// truncateContent counts runes, not bytes, so multi-byte text never gets
// split mid-character.
func truncateContent(content string) string {
	if utf8.RuneCountInString(content) <= listContentLimit {
		return content
	}
	return string([]rune(content)[:listContentLimit]) + "..."
}

type pageResponse struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Items  any `json:"items"`
}

type presentationSummary struct {
	ID               int64      `json:"id"`
	MemberID         int64      `json:"member_id"`
	DiscordMessageID int64      `json:"discord_message_id"`
	Content          string     `json:"content"`
	Status           string     `json:"status"`
	AutoSuggestion   *string    `json:"auto_suggestion"`
	MessageTimestamp *time.Time `json:"message_timestamp"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func fromPresentation(p models.Presentation) presentationSummary {
	return presentationSummary{
		ID:               p.ID,
		MemberID:         p.MemberID,
		DiscordMessageID: p.DiscordMessageID,
		Content:          truncateContent(p.Content),
		Status:           p.Status,
		AutoSuggestion:   p.AutoSuggestion,
		MessageTimestamp: p.MessageTimestamp,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type memberSummary struct {
	ID        int64  `json:"id"`
	DiscordID int64  `json:"discord_id"`
	Username  string `json:"username"`
}

type presentationDetail struct {
	ID               int64          `json:"id"`
	Member           *memberSummary `json:"member"`
	Content          string         `json:"content"`
	Status           string         `json:"status"`
	AutoSuggestion   *string        `json:"auto_suggestion"`
	SuggestionReason *string        `json:"suggestion_reason"`
	MessageTimestamp *time.Time     `json:"message_timestamp"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func fromPresentationDetail(d *service.PresentationDetail) presentationDetail {
	resp := presentationDetail{
		ID:               d.Presentation.ID,
		Content:          d.Presentation.Content,
		Status:           d.Presentation.Status,
		AutoSuggestion:   d.Presentation.AutoSuggestion,
		SuggestionReason: d.Presentation.SuggestionReason,
		MessageTimestamp: d.Presentation.MessageTimestamp,
		CreatedAt:        d.Presentation.CreatedAt,
		UpdatedAt:        d.Presentation.UpdatedAt,
	}
	if d.Member != nil {
		resp.Member = &memberSummary{
			ID:        d.Member.ID,
			DiscordID: d.Member.DiscordID,
			Username:  d.Member.Username,
		}
	}
	return resp
}

type reviewResponse struct {
	ID         int64      `json:"id"`
	Status     string     `json:"status"`
	Reason     *string    `json:"reason,omitempty"`
	ReviewedBy *int64     `json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`
}

func fromReview(p *models.Presentation, includeReason bool) reviewResponse {
	resp := reviewResponse{
		ID:         p.ID,
		Status:     p.Status,
		ReviewedBy: p.ReviewedBy,
		ReviewedAt: p.ReviewedAt,
	}
	if includeReason {
		resp.Reason = p.SuggestionReason
	}
	return resp
}

type memberResponse struct {
	ID                   int64     `json:"id"`
	DiscordID            int64     `json:"discord_id"`
	Username             string    `json:"username"`
	HasPresentation      bool      `json:"has_presentation"`
	VerifiedRoleAssigned bool      `json:"verified_role_assigned"`
	JoinedAt             time.Time `json:"joined_at"`
}

func fromMember(m models.Member) memberResponse {
	return memberResponse{
		ID:                   m.ID,
		DiscordID:            m.DiscordID,
		Username:             m.Username,
		HasPresentation:      m.HasPresentation,
		VerifiedRoleAssigned: m.VerifiedRoleAssigned,
		JoinedAt:             m.JoinedAt,
	}
}

type memberPresentation struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type memberDetail struct {
	memberResponse
	Presentations []memberPresentation `json:"presentations"`
}

func fromMemberDetail(d *service.MemberDetail) memberDetail {
	resp := memberDetail{
		memberResponse: fromMember(d.Member),
		Presentations:  make([]memberPresentation, 0, len(d.Presentations)),
	}
	for _, p := range d.Presentations {
		resp.Presentations = append(resp.Presentations, memberPresentation{
			ID:        p.ID,
			Content:   truncateContent(p.Content),
			Status:    p.Status,
			CreatedAt: p.CreatedAt,
		})
	}
	return resp
}

type statsResponse struct {
	TotalMembers               int `json:"total_members"`
	MembersWithPresentations   int `json:"members_with_presentations"`
	MembersVerified            int `json:"members_verified"`
	TotalPresentations         int `json:"total_presentations"`
	ApprovedPresentations      int `json:"approved_presentations"`
	PendingPresentations       int `json:"pending_presentations"`
	AutoSuggestedPresentations int `json:"auto_suggested_presentations"`
}

func fromStats(s *models.Stats) statsResponse {
	return statsResponse{
		TotalMembers:               s.TotalMembers,
		MembersWithPresentations:   s.MembersWithPresentations,
		MembersVerified:            s.MembersVerified,
		TotalPresentations:         s.TotalPresentations,
		ApprovedPresentations:      s.ApprovedPresentations,
		PendingPresentations:       s.PendingPresentations,
		AutoSuggestedPresentations: s.AutoSuggestedPresentations,
	}
}
