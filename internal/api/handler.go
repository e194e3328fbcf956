// Package api: JSON API офиса и монтёров: реестр, журнал, спецификация проекта, отметки.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Spok95/solar-bom/internal/bom"
	"github.com/Spok95/solar-bom/internal/domain/bookings"
	"github.com/Spok95/solar-bom/internal/domain/completed"
	"github.com/Spok95/solar-bom/internal/domain/materials"
	"github.com/Spok95/solar-bom/internal/infra/metrics"
	"github.com/Spok95/solar-bom/internal/tracker"
)

type MaterialStore interface {
	List(ctx context.Context) ([]materials.Material, error)
	SearchByCode(ctx context.Context, q string) ([]materials.Material, error)
	GetByID(ctx context.Context, id string) (*materials.Material, error)
	Create(ctx context.Context, m materials.Material) (*materials.Material, error)
	AdjustStock(ctx context.Context, id string, delta int) (*materials.Material, error)
}

type BookingStore interface {
	Book(ctx context.Context, b bookings.Booking) (*bookings.Booking, error)
	Receive(ctx context.Context, actor string, items []bookings.Item, note string) (*bookings.Booking, error)
	Issue(ctx context.Context, actor, projectID string, items []bookings.Item, note string) (*bookings.Booking, error)
	Return(ctx context.Context, actor, projectID string, items []bookings.Item, note string) (*bookings.Booking, error)
	ListAll(ctx context.Context) ([]bookings.Booking, error)
	ListByProject(ctx context.Context, projectID string) ([]bookings.Booking, error)
}

type BOMBuilder interface {
	BOM(ctx context.Context, projectID string) (bom.Split, error)
}

type CompletedTracker interface {
	List(ctx context.Context, projectID string) ([]completed.Item, error)
	Toggle(ctx context.Context, projectID, materialID, userID string, currentlyCompleted bool) error
	Subscribe(ctx context.Context, projectID string, fn func([]completed.Item)) (func(), error)
}

type Handler struct {
	log       *slog.Logger
	materials MaterialStore
	bookings  BookingStore
	bom       BOMBuilder
	tracker   CompletedTracker

	keepalive time.Duration
}

func NewHandler(log *slog.Logger, m MaterialStore, b BookingStore, bb BOMBuilder, t CompletedTracker) *Handler {
	return &Handler{
		log:       log,
		materials: m,
		bookings:  b,
		bom:       bb,
		tracker:   t,
		keepalive: 30 * time.Second,
	}
}

// Register вешает маршруты API на mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/materials", h.listMaterials)
	mux.HandleFunc("POST /api/materials", h.createMaterial)
	mux.HandleFunc("GET /api/materials/{id}", h.getMaterial)
	mux.HandleFunc("POST /api/materials/{id}/stock", h.adjustStock)

	mux.HandleFunc("GET /api/bookings", h.listBookings)
	mux.HandleFunc("POST /api/bookings", h.createBooking)
	mux.HandleFunc("POST /api/warehouse/receipts", h.receive)
	mux.HandleFunc("POST /api/projects/{id}/issues", h.issue)
	mux.HandleFunc("POST /api/projects/{id}/returns", h.returnToStock)

	mux.HandleFunc("GET /api/projects/{id}/bom", h.projectBOM)
	mux.HandleFunc("GET /api/projects/{id}/bom.xlsx", h.projectBOMXLSX)
	mux.HandleFunc("GET /api/projects/{id}/completed", h.listCompleted)
	mux.HandleFunc("POST /api/projects/{id}/completed/{materialID}/toggle", h.toggleCompleted)
	mux.HandleFunc("GET /api/projects/{id}/completed/stream", h.streamCompleted)
}

func (h *Handler) listMaterials(w http.ResponseWriter, r *http.Request) {
	var (
		ms  []materials.Material
		err error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		ms, err = h.materials.SearchByCode(r.Context(), q)
	} else {
		ms, err = h.materials.List(r.Context())
	}
	if err != nil {
		h.internalError(w, "list materials", err)
		return
	}
	out := make([]materialDTO, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMaterialDTO(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createMaterial(w http.ResponseWriter, r *http.Request) {
	var req materialDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	m, err := h.materials.Create(r.Context(), materials.Material{
		ID:           req.ID,
		Code:         req.Code,
		Description:  strings.TrimSpace(req.Description),
		Unit:         strings.TrimSpace(req.Unit),
		ItemsPerUnit: req.ItemsPerUnit,
		Stock:        req.Stock,
	})
	switch {
	case errors.Is(err, materials.ErrDuplicate):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.internalError(w, "create material", err)
		return
	}
	writeJSON(w, http.StatusCreated, toMaterialDTO(*m))
}

func (h *Handler) getMaterial(w http.ResponseWriter, r *http.Request) {
	m, err := h.materials.GetByID(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, materials.ErrNotFound):
		writeError(w, http.StatusNotFound, "material not found")
		return
	case err != nil:
		h.internalError(w, "get material", err)
		return
	}
	writeJSON(w, http.StatusOK, toMaterialDTO(*m))
}

// adjustStock: ручная корректировка остатка после инвентаризации, мимо журнала.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must not be zero")
		return
	}

	id := r.PathValue("id")
	m, err := h.materials.AdjustStock(r.Context(), id, req.Delta)
	switch {
	case errors.Is(err, materials.ErrNotFound):
		writeError(w, http.StatusNotFound, "material not found")
		return
	case err != nil:
		h.internalError(w, "adjust stock", err)
		return
	}
	h.log.Info("stock adjusted", "material_id", id, "delta", req.Delta, "stock", m.Stock)
	writeJSON(w, http.StatusOK, toMaterialDTO(*m))
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request) {
	var (
		bs  []bookings.Booking
		err error
	)
	if p := r.URL.Query().Get("project"); p != "" {
		bs, err = h.bookings.ListByProject(r.Context(), p)
	} else {
		bs, err = h.bookings.ListAll(r.Context())
	}
	if err != nil {
		h.internalError(w, "list bookings", err)
		return
	}
	out := make([]bookingDTO, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingDTO(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	b, err := h.bookings.Book(r.Context(), req.booking())
	h.writeBooking(w, b, err)
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	b, err := h.bookings.Receive(r.Context(), req.CreatedBy, req.booking().Items, req.Note)
	h.writeBooking(w, b, err)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	b, err := h.bookings.Issue(r.Context(), req.CreatedBy, r.PathValue("id"), req.booking().Items, req.Note)
	h.writeBooking(w, b, err)
}

func (h *Handler) returnToStock(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	b, err := h.bookings.Return(r.Context(), req.CreatedBy, r.PathValue("id"), req.booking().Items, req.Note)
	h.writeBooking(w, b, err)
}

func (h *Handler) writeBooking(w http.ResponseWriter, b *bookings.Booking, err error) {
	switch {
	case errors.Is(err, bookings.ErrInvalidBooking):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, bookings.ErrUnknownMaterial):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		h.internalError(w, "book", err)
		return
	}

	metrics.BookingsCreated.WithLabelValues(string(b.Type)).Inc()
	h.log.Info("booking created",
		"booking_id", b.ID,
		"type", b.Type,
		"project_id", b.ProjectID,
		"items", len(b.Items),
	)
	writeJSON(w, http.StatusCreated, toBookingDTO(*b))
}

func (h *Handler) projectBOM(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")

	split, done, err := h.loadBOM(r.Context(), projectID)
	if err != nil {
		h.internalError(w, "project bom", err)
		return
	}

	ids := make([]string, 0, len(done))
	for _, g := range split.Groups() {
		for _, row := range g.Rows {
			if done[row.MaterialID] {
				ids = append(ids, row.MaterialID)
			}
		}
	}

	writeJSON(w, http.StatusOK, bomResponse{
		ProjectID:  projectID,
		Configured: toBOMRows(split.Configured, done),
		Auto:       toBOMRows(split.Auto, done),
		Manual:     toBOMRows(split.Manual, done),
		Completed:  ids,
	})
}

func (h *Handler) projectBOMXLSX(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")

	split, done, err := h.loadBOM(r.Context(), projectID)
	if err != nil {
		h.internalError(w, "project bom", err)
		return
	}

	var buf bytes.Buffer
	if err := bom.WriteXLSX(&buf, projectID, split, done); err != nil {
		h.internalError(w, "bom xlsx", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="stueckliste-%s.xlsx"`, projectID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) loadBOM(ctx context.Context, projectID string) (bom.Split, map[string]bool, error) {
	split, err := h.bom.BOM(ctx, projectID)
	if err != nil {
		return bom.Split{}, nil, err
	}
	items, err := h.tracker.List(ctx, projectID)
	if err != nil {
		return bom.Split{}, nil, err
	}
	return split, completed.Set(items), nil
}

func (h *Handler) listCompleted(w http.ResponseWriter, r *http.Request) {
	items, err := h.tracker.List(r.Context(), r.PathValue("id"))
	if err != nil {
		h.internalError(w, "list completed", err)
		return
	}
	writeJSON(w, http.StatusOK, toCompletedDTOs(items))
}

func (h *Handler) toggleCompleted(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	projectID, materialID := r.PathValue("id"), r.PathValue("materialID")
	err := h.tracker.Toggle(r.Context(), projectID, materialID, req.UserID, req.Completed)
	switch {
	case errors.Is(err, tracker.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.internalError(w, "toggle completed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op+" failed", "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
