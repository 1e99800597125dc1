package http

import (
	"net/http"

	"ledger/internal/log"
)

const labelCategory = "Category"

// handleListCategories serves GET /api/categories with an optional
// ?type=income|expense filter.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKindFilter(r)
	if err != nil {
		UnprocessableEntityError(`Invalid type parameter. Must be either "income" or "expense"`).Write(w)
		return
	}
	categories, err := s.catalog.Categories(r.Context(), s.ownerID, kind)
	if err != nil {
		writeError(w, r, labelCategory, log.OpList, err)
		return
	}
	ListResponse(categories).Write(w)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(labelCategory + " not found").Write(w)
		return
	}
	c, err := s.catalog.Category(r.Context(), s.ownerID, id)
	if err != nil {
		writeError(w, r, labelCategory, log.OpRead, err)
		return
	}
	NewJSONResponse().Data(c).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var p categoryPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, labelCategory, log.OpCreate, err)
		return
	}
	c, err := p.category()
	if err != nil {
		writeError(w, r, labelCategory, log.OpCreate, err)
		return
	}

	ctx := r.Context()
	created, err := s.catalog.CreateCategory(ctx, s.ownerID, c)
	if err != nil {
		writeError(w, r, labelCategory, log.OpCreate, err)
		return
	}
	log.FromContext(ctx).InfoContext(ctx, "Category created",
		log.FieldEntityID, created.ID,
		"type", created.Kind.String())
	CreatedResponse(created).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(labelCategory + " not found").Write(w)
		return
	}
	var p categoryPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, labelCategory, log.OpUpdate, err)
		return
	}
	c, err := p.category()
	if err != nil {
		writeError(w, r, labelCategory, log.OpUpdate, err)
		return
	}

	updated, err := s.catalog.UpdateCategory(r.Context(), s.ownerID, id, c)
	if err != nil {
		writeError(w, r, labelCategory, log.OpUpdate, err)
		return
	}
	NewJSONResponse().Data(updated).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(labelCategory + " not found").Write(w)
		return
	}
	ctx := r.Context()
	if err := s.catalog.DeleteCategory(ctx, s.ownerID, id); err != nil {
		writeError(w, r, labelCategory, log.OpDelete, err)
		return
	}
	log.FromContext(ctx).InfoContext(ctx, "Category deleted", log.FieldEntityID, id)
	DeletedResponse(labelCategory).Write(w)
}
