package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presadmin/internal/review/models"
	"presadmin/internal/review/store"
	"presadmin/internal/review/store/memory"
	dErrors "presadmin/pkg/domain-errors"
	"presadmin/pkg/requestcontext"
)

func newService(t *testing.T) (*Service, *memory.InMemory) {
	t.Helper()
	st := memory.NewInMemory()
	return New(st, slog.New(slog.NewTextHandler(io.Discard, nil)), nil), st
}

func staffCtx() context.Context {
	ctx := requestcontext.WithPrincipal(context.Background(), requestcontext.StaffPrincipal{
		DiscordID: 123,
		Username:  "mariposa",
	})
	return requestcontext.WithTime(ctx, time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC))
}

func seedPending(st *memory.InMemory, id int64) {
	st.SeedPresentation(models.Presentation{
		ID:        id,
		MemberID:  1,
		Content:   "hola, soy nueva por aquí",
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
}

func TestApprove(t *testing.T) {
	svc, st := newService(t)
	seedPending(st, 1)

	updated, err := svc.Approve(staffCtx(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
	require.NotNil(t, updated.ReviewedBy)
	assert.Equal(t, int64(123), *updated.ReviewedBy)
	require.NotNil(t, updated.ReviewedAt)
	assert.Equal(t, time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC), *updated.ReviewedAt)
}

func TestReject_WithReason(t *testing.T) {
	svc, st := newService(t)
	seedPending(st, 1)

	updated, err := svc.Reject(staffCtx(), 1, "contains contact info")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, updated.Status)
	require.NotNil(t, updated.SuggestionReason)
	assert.Equal(t, "contains contact info", *updated.SuggestionReason)
}

func TestReject_EmptyReasonLeavesSuggestionReason(t *testing.T) {
	svc, st := newService(t)
	seedPending(st, 1)

	updated, err := svc.Reject(staffCtx(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, updated.Status)
	assert.Nil(t, updated.SuggestionReason)
}

func TestReview_RequiresPrincipal(t *testing.T) {
	svc, st := newService(t)
	seedPending(st, 1)

	_, err := svc.Approve(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestReview_UnknownPresentation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Approve(staffCtx(), 404)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestListPresentations_RejectsUnknownStatus(t *testing.T) {
	svc, _ := newService(t)

	bogus := "weird"
	_, err := svc.ListPresentations(context.Background(), store.PresentationFilter{Status: &bogus})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestListPresentations_ClampsLimit(t *testing.T) {
	svc, st := newService(t)
	for i := int64(1); i <= 5; i++ {
		seedPending(st, i)
	}

	page, err := svc.ListPresentations(context.Background(), store.PresentationFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, store.MaxLimit, page.Limit)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 5, page.Total)
}

func TestGetPresentation_WithAuthor(t *testing.T) {
	svc, st := newService(t)
	st.SeedMember(models.Member{ID: 1, DiscordID: 123, Username: "mariposa"})
	seedPending(st, 1)

	detail, err := svc.GetPresentation(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, detail.Member)
	assert.Equal(t, "mariposa", detail.Member.Username)
}

func TestGetPresentation_AuthorMissing(t *testing.T) {
	svc, st := newService(t)
	seedPending(st, 1)

	detail, err := svc.GetPresentation(context.Background(), 1)
	require.NoError(t, err, "a pruned member row must not break presentation review")
	assert.Nil(t, detail.Member)
}

func TestGetMember_WithPresentations(t *testing.T) {
	svc, st := newService(t)
	st.SeedMember(models.Member{ID: 1, DiscordID: 123, Username: "mariposa", HasPresentation: true})
	seedPending(st, 1)
	seedPending(st, 2)

	detail, err := svc.GetMember(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, detail.Presentations, 2)
}

func TestStats(t *testing.T) {
	svc, st := newService(t)
	st.SeedMember(models.Member{ID: 1, HasPresentation: true, VerifiedRoleAssigned: true})
	seedPending(st, 1)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalMembers)
	assert.Equal(t, 1, stats.PendingPresentations)
}
