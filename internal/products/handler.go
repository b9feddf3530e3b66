package products

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/luizgft/produtos-api/internal/platform/httpx"
)

// Handler exposes the product REST endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	errors  httpx.ErrorResponder
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service, responder httpx.ErrorResponder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if responder.Logger == nil {
		responder.Logger = logger
	}
	return &Handler{
		logger:  logger,
		service: service,
		errors:  responder,
	}
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// list handles GET /api/produtos
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.errors.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ResponsesFromDTOs(items))
}

// show handles GET /api/produtos/{id}
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		h.errors.RespondError(w, r, err)
		return
	}
	dto, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.errors.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ResponseFromDTO(dto))
}

// create handles POST /api/produtos
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.errors.RespondError(w, r, err)
		return
	}
	dto, err := h.service.Create(r.Context(), DTOFromRequest(req))
	if err != nil {
		h.errors.RespondError(w, r, err)
		return
	}
	resp := ResponseFromDTO(dto)
	w.Header().Set("Location", path.Join(r.URL.Path, strconv.FormatInt(resp.ID, 10)))
	h.logger.Info("product created", slog.Int64("id", resp.ID))
	httpx.JSON(w, http.StatusCreated, resp)
}

// update handles PUT /api/produtos/{id}
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		h.errors.RespondError(w, r, err)
		return
	}
	var req ProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.errors.RespondError(w, r, err)
		return
	}
	dto, err := h.service.Update(r.Context(), id, DTOFromRequest(req))
	if err != nil {
		h.errors.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ResponseFromDTO(dto))
}

// delete handles DELETE /api/produtos/{id}
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		h.errors.RespondError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.errors.RespondError(w, r, err)
		return
	}
	h.logger.Info("product deleted", slog.Int64("id", id))
	httpx.NoContent(w)
}

func productID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid product id %q", httpx.ErrBadRequest, raw)
	}
	if err := checkID(id); err != nil {
		return 0, err
	}
	return id, nil
}
