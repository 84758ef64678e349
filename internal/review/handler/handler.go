package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	dErrors "presadmin/pkg/domain-errors"
	"presadmin/pkg/platform/httputil"

	"presadmin/internal/review/models"
	"presadmin/internal/review/service"
	"presadmin/internal/review/store"
)

// ReviewService is the review surface the handler depends on.
type ReviewService interface {
	ListPresentations(ctx context.Context, filter store.PresentationFilter) (*service.Page[models.Presentation], error)
	GetPresentation(ctx context.Context, id int64) (*service.PresentationDetail, error)
	Approve(ctx context.Context, id int64) (*models.Presentation, error)
	Reject(ctx context.Context, id int64, reason string) (*models.Presentation, error)
	ListMembers(ctx context.Context, filter store.MemberFilter) (*service.Page[models.Member], error)
	GetMember(ctx context.Context, id int64) (*service.MemberDetail, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

type Handler struct {
	service ReviewService
	logger  *slog.Logger
}

func New(service ReviewService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the review routes. requireStaff guards the mutating
// endpoints; reads stay open for the dashboard.
func (h *Handler) Register(r chi.Router, requireStaff func(http.Handler) http.Handler) {
	r.Get("/api/presentations", h.listPresentations)
	r.Get("/api/presentations/{id}", h.getPresentation)
	r.Get("/api/members", h.listMembers)
	r.Get("/api/members/{id}", h.getMember)
	r.Get("/api/stats", h.stats)

	r.Group(func(r chi.Router) {
		r.Use(requireStaff)
		r.Post("/api/presentations/{id}/approve", h.approve)
		r.Post("/api/presentations/{id}/reject", h.reject)
	})
}

func (h *Handler) listPresentations(w http.ResponseWriter, r *http.Request) {
	filter := store.PresentationFilter{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}

	page, err := h.service.ListPresentations(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items := make([]presentationSummary, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, fromPresentation(p))
	}
	httputil.WriteJSON(w, http.StatusOK, pageResponse{
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
		Items:  items,
	})
}

func (h *Handler) getPresentation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	detail, err := h.service.GetPresentation(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPresentationDetail(detail))
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.service.Approve(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromReview(p, false))
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.service.Reject(r.Context(), id, r.URL.Query().Get("reason"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromReview(p, true))
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	filter := store.MemberFilter{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	var err error
	if filter.HasPresentation, err = queryBool(r, "has_presentation"); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if filter.Verified, err = queryBool(r, "verified"); err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.service.ListMembers(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items := make([]memberResponse, 0, len(page.Items))
	for _, m := range page.Items {
		items = append(items, fromMember(m))
	}
	httputil.WriteJSON(w, http.StatusOK, pageResponse{
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
		Items:  items,
	})
}

func (h *Handler) getMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	detail, err := h.service.GetMember(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromMemberDetail(detail))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromStats(stats))
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid id")
	}
	return id, nil
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

func queryBool(r *http.Request, key string) (*bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+key+" filter")
	}
	return &v, nil
}
