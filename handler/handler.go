// Package handler provides the HTTP handlers for the item server.
package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stevemurr/simple-item-server/schema"
	"github.com/stevemurr/simple-item-server/store"
)

// maxBodyBytes caps request bodies; a resource is two small fields.
const maxBodyBytes = 1 << 20

// Options tunes a Handler. The zero value is usable.
type Options struct {
	Logger *slog.Logger

	// Schema validates request bodies. Nil means schema.Resource.
	Schema map[string]any

	// StrictUpdate routes PUT through Store.Replace so absent ids get 404.
	StrictUpdate bool

	// AllowedOrigins for CORS. Empty means "*".
	AllowedOrigins []string
}

// Handler holds the server dependencies and registers routes.
type Handler struct {
	store        store.Store
	schema       map[string]any
	strictUpdate bool
	log          *slog.Logger
	router       chi.Router
}

// New creates a Handler and wires up all routes.
func New(s store.Store, opts Options) *Handler {
	h := &Handler{
		store:        s,
		schema:       opts.Schema,
		strictUpdate: opts.StrictUpdate,
		log:          opts.Logger,
		router:       chi.NewRouter(),
	}
	if h.schema == nil {
		h.schema = schema.Resource
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h.router.Use(middleware.RequestID)
	h.router.Use(requestLogger(h.log))
	h.router.Use(middleware.Recoverer)
	h.router.Use(corsMiddleware(origins))
	h.routes()
	return h
}

// ServeHTTP makes Handler an http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.Get("/", h.root)
	h.router.Get("/health", h.health)

	h.router.Route("/items", func(r chi.Router) {
		r.Get("/", h.listItems)
		r.Post("/{id}", h.createItem)
		r.Get("/{id}", h.getItem)
		r.Put("/{id}", h.updateItem)
		r.Delete("/{id}", h.deleteItem)
	})
}

// ---------- helpers ----------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// internalError logs a backend failure and answers 500.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.ErrorContext(r.Context(), "store error",
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"err", err,
	)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q", raw)
	}
	return id, nil
}

// readResource decodes and validates a request body. The returned status is
// the one to answer with when err is non-nil.
func (h *Handler) readResource(r *http.Request) (store.Resource, int, error) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return store.Resource{}, http.StatusBadRequest, fmt.Errorf("reading body: %w", err)
	}
	if len(data) > maxBodyBytes {
		return store.Resource{}, http.StatusRequestEntityTooLarge, fmt.Errorf("body exceeds %d bytes", maxBodyBytes)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return store.Resource{}, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err)
	}
	if doc == nil {
		return store.Resource{}, http.StatusBadRequest, fmt.Errorf("invalid JSON: expected an object")
	}
	if err := schema.Validate(h.schema, doc); err != nil {
		return store.Resource{}, http.StatusUnprocessableEntity, fmt.Errorf("schema validation failed: %w", err)
	}

	return resourceFromDoc(doc)
}

// resourceFromDoc builds the resource from the validated document. Keys
// match exactly, so a case variant such as "Price" cannot shadow "price".
func resourceFromDoc(doc map[string]any) (store.Resource, int, error) {
	name, ok := doc["name"].(string)
	if !ok {
		return store.Resource{}, http.StatusUnprocessableEntity, fmt.Errorf("schema validation failed: $.name: expected a string")
	}
	price, ok := doc["price"].(float64)
	if !ok {
		return store.Resource{}, http.StatusUnprocessableEntity, fmt.Errorf("schema validation failed: $.price: expected a number")
	}
	return store.Resource{Name: name, Price: price}, 0, nil
}

// ---------- status endpoints ----------

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "Simple Item Server",
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Len()
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "items": n})
}

// ---------- item CRUD ----------

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List()
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if items == nil {
		items = []store.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, status, err := h.readResource(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	stored, err := h.store.Create(id, res)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, found, err := h.store.Get(id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, store.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, status, err := h.readResource(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	if h.strictUpdate {
		stored, found, err := h.store.Replace(id, res)
		if err != nil {
			h.internalError(w, r, err)
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, store.ErrNotFound.Error())
			return
		}
		writeJSON(w, http.StatusOK, stored)
		return
	}

	stored, err := h.store.Update(id, res)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, found, err := h.store.Delete(id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, store.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}
