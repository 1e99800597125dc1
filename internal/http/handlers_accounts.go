package http

import (
	"net/http"

	"ledger/internal/log"
)

const (
	labelAccountGroup = "Account group"
	labelAccount      = "Account"
)

func (s *Server) handleListAccountGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.catalog.AccountGroups(r.Context(), s.ownerID)
	if err != nil {
		writeError(w, r, labelAccountGroup, log.OpList, err)
		return
	}
	ListResponse(groups).Write(w)
}

func (s *Server) handleGetAccountGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(labelAccountGroup + " not found").Write(w)
		return
	}
	g, err := s.catalog.AccountGroup(r.Context(), s.ownerID, id)
	if err != nil {
		writeError(w, r, labelAccountGroup, log.OpRead, err)
		return
	}
	NewJSONResponse().Data(g).Write(w)
}

func (s *Server) handleCreateAccountGroup(w http.ResponseWriter, r *http.Request) {
	var p accountGroupPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, labelAccountGroup, log.OpCreate, err)
		return
	}
	ctx := r.Context()
	g, err := s.catalog.CreateAccountGroup(ctx, s.ownerID, p.accountGroup())
	if err != nil {
		writeError(w, r, labelAccountGroup, log.OpCreate, err)
		return
	}
	log.FromContext(ctx).InfoContext(ctx, "Account group created", log.FieldEntityID, g.ID)
	CreatedResponse(g).Write(w)
}

func (s *Server) handleUpdateAccountGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(labelAccountGroup + " not found").Write(w)
		return
	}
	var p accountGroupPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, labelAccountGroup, log.OpUpdate, err)
		return
	}
	g, err := s.catalog.UpdateAccountGroup(r.Context(), s.ownerID, id, p.accountGroup())
	if err != nil {
		writeError(w, r, labelAccountGroup, log.OpUpdate, err)
		return
	}
	NewJSONResponse().Data(g).Write(w)
}

func (s *Server) handleDeleteAccountGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(labelAccountGroup + " not found").Write(w)
		return
	}
	ctx := r.Context()
	if err := s.catalog.DeleteAccountGroup(ctx, s.ownerID, id); err != nil {
		writeError(w, r, labelAccountGroup, log.OpDelete, err)
		return
	}
	log.FromContext(ctx).InfoContext(ctx, "Account group deleted", log.FieldEntityID, id)
	DeletedResponse(labelAccountGroup).Write(w)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.catalog.Accounts(r.Context(), s.ownerID)
	if err != nil {
		writeError(w, r, labelAccount, log.OpList, err)
		return
	}
	ListResponse(accounts).Write(w)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(labelAccount + " not found").Write(w)
		return
	}
	a, err := s.catalog.Account(r.Context(), s.ownerID, id)
	if err != nil {
		writeError(w, r, labelAccount, log.OpRead, err)
		return
	}
	NewJSONResponse().Data(a).Write(w)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var p accountPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, labelAccount, log.OpCreate, err)
		return
	}
	ctx := r.Context()
	a, err := s.catalog.CreateAccount(ctx, s.ownerID, p.account())
	if err != nil {
		writeError(w, r, labelAccount, log.OpCreate, err)
		return
	}
	log.FromContext(ctx).InfoContext(ctx, "Account created",
		log.FieldEntityID, a.ID,
		"account_group_id", a.AccountGroupID)
	CreatedResponse(a).Write(w)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(labelAccount + " not found").Write(w)
		return
	}
	var p accountPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, labelAccount, log.OpUpdate, err)
		return
	}
	a, err := s.catalog.UpdateAccount(r.Context(), s.ownerID, id, p.account())
	if err != nil {
		writeError(w, r, labelAccount, log.OpUpdate, err)
		return
	}
	NewJSONResponse().Data(a).Write(w)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(labelAccount + " not found").Write(w)
		return
	}
	ctx := r.Context()
	if err := s.catalog.DeleteAccount(ctx, s.ownerID, id); err != nil {
		writeError(w, r, labelAccount, log.OpDelete, err)
		return
	}
	log.FromContext(ctx).InfoContext(ctx, "Account deleted", log.FieldEntityID, id)
	DeletedResponse(labelAccount).Write(w)
}
