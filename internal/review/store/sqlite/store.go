// Package sqlite implements the review Store over the bot's SQLite
// database. Queries stick to the columns the bot defines; review writes
// touch status, reviewed_by, reviewed_at, suggestion_reason, updated_at
// and nothing else.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"presadmin/internal/review/models"
	"presadmin/internal/review/store"
	"presadmin/pkg/platform/sentinel"
)

const presentationColumns = `id, member_id, discord_message_id, content, status,
	auto_suggestion, suggestion_reason, message_timestamp,
	reviewed_by, reviewed_at, created_at, updated_at`

const memberColumns = `id, discord_id, username, has_presentation,
	verified_role_assigned, joined_at`

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListPresentations(ctx context.Context, filter store.PresentationFilter) ([]models.Presentation, int, error) {
	limit, offset := store.Clamp(filter.Limit, filter.Offset)

	where := ``
	filterArgs := []any{}
	if filter.Status != nil {
		where = ` WHERE status = ?`
		filterArgs = append(filterArgs, *filter.Status)
	}

	query := `SELECT ` + presentationColumns + ` FROM presentations` + where +
		` ORDER BY id LIMIT ? OFFSET ?`
	args := append(append([]any{}, filterArgs...), limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list presentations: %w", err)
	}
	defer rows.Close()

	items := make([]models.Presentation, 0, limit)
	for rows.Next() {
		p, err := scanPresentation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan presentation: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list presentations: %w", err)
	}

	// Total counts everything the filter matches, not just this page.
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM presentations`+where, filterArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count presentations: %w", err)
	}
	return items, total, nil
}

func (s *Store) GetPresentation(ctx context.Context, id int64) (*models.Presentation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+presentationColumns+` FROM presentations WHERE id = ?`, id)
	p, err := scanPresentation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get presentation: %w", err)
	}
	return p, nil
}

func (s *Store) ApplyReview(ctx context.Context, id int64, update models.ReviewUpdate) (*models.Presentation, error) {
	assignments := []string{"status = ?", "reviewed_by = ?", "reviewed_at = ?", "updated_at = ?"}
	args := []any{update.Status, update.ReviewedBy, update.ReviewedAt, update.ReviewedAt}
	if update.Reason != nil {
		assignments = append(assignments, "suggestion_reason = ?")
		args = append(args, *update.Reason)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE presentations SET `+strings.Join(assignments, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("apply review: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("apply review: %w", err)
	}
	if affected == 0 {
		return nil, sentinel.ErrNotFound
	}

	return s.GetPresentation(ctx, id)
}

func (s *Store) ListMembers(ctx context.Context, filter store.MemberFilter) ([]models.Member, int, error) {
	limit, offset := store.Clamp(filter.Limit, filter.Offset)

	conditions := []string{}
	filterArgs := []any{}
	if filter.HasPresentation != nil {
		conditions = append(conditions, "has_presentation = ?")
		filterArgs = append(filterArgs, *filter.HasPresentation)
	}
	if filter.Verified != nil {
		conditions = append(conditions, "verified_role_assigned = ?")
		filterArgs = append(filterArgs, *filter.Verified)
	}
	where := ``
	if len(conditions) > 0 {
		where = ` WHERE ` + strings.Join(conditions, " AND ")
	}

	query := `SELECT ` + memberColumns + ` FROM members` + where +
		` ORDER BY id LIMIT ? OFFSET ?`
	args := append(append([]any{}, filterArgs...), limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	items := make([]models.Member, 0, limit)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan member: %w", err)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members`+where, filterArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}
	return items, total, nil
}

func (s *Store) GetMember(ctx context.Context, id int64) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *Store) ListMemberPresentations(ctx context.Context, memberID int64) ([]models.Presentation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+presentationColumns+` FROM presentations WHERE member_id = ? ORDER BY id`, memberID)
	if err != nil {
		return nil, fmt.Errorf("list member presentations: %w", err)
	}
	defer rows.Close()

	items := []models.Presentation{}
	for rows.Next() {
		p, err := scanPresentation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan presentation: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list member presentations: %w", err)
	}
	return items, nil
}

func (s *Store) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN has_presentation THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN verified_role_assigned THEN 1 ELSE 0 END), 0)
		FROM members`,
	).Scan(&stats.TotalMembers, &stats.MembersWithPresentations, &stats.MembersVerified)
	if err != nil {
		return nil, fmt.Errorf("member stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'auto_suggested' THEN 1 ELSE 0 END), 0)
		FROM presentations`,
	).Scan(&stats.TotalPresentations, &stats.ApprovedPresentations,
		&stats.PendingPresentations, &stats.AutoSuggestedPresentations)
	if err != nil {
		return nil, fmt.Errorf("presentation stats: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPresentation(row rowScanner) (*models.Presentation, error) {
	var p models.Presentation
	var autoSuggestion, suggestionReason sql.NullString
	var messageTimestamp, reviewedAt sql.NullTime
	var reviewedBy sql.NullInt64

	err := row.Scan(&p.ID, &p.MemberID, &p.DiscordMessageID, &p.Content, &p.Status,
		&autoSuggestion, &suggestionReason, &messageTimestamp,
		&reviewedBy, &reviewedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if autoSuggestion.Valid {
		p.AutoSuggestion = &autoSuggestion.String
	}
	if suggestionReason.Valid {
		p.SuggestionReason = &suggestionReason.String
	}
	if messageTimestamp.Valid {
		p.MessageTimestamp = &messageTimestamp.Time
	}
	if reviewedBy.Valid {
		p.ReviewedBy = &reviewedBy.Int64
	}
	if reviewedAt.Valid {
		p.ReviewedAt = &reviewedAt.Time
	}
	return &p, nil
}

func scanMember(row rowScanner) (*models.Member, error) {
	var m models.Member
	err := row.Scan(&m.ID, &m.DiscordID, &m.Username,
		&m.HasPresentation, &m.VerifiedRoleAssigned, &m.JoinedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
