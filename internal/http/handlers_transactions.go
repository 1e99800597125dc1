package http

import (
	"net/http"

	"ledger/internal/core"
	"ledger/internal/log"
)

const labelTransaction = "Transaction"

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.List(r.Context(), s.ownerID)
	if err != nil {
		writeError(w, r, labelTransaction, log.OpList, err)
		return
	}
	ListResponse(txs).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(labelTransaction + " not found").Write(w)
		return
	}
	t, err := s.ledger.Get(r.Context(), s.ownerID, id)
	if err != nil {
		writeError(w, r, labelTransaction, log.OpRead, err)
		return
	}
	NewJSONResponse().Data(t).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.readTransaction(w, r)
	if err != nil {
		writeError(w, r, labelTransaction, log.OpCreate, err)
		return
	}

	ctx := r.Context()
	created, err := s.ledger.Create(ctx, s.ownerID, t)
	if err != nil {
		writeError(w, r, labelTransaction, log.OpCreate, err)
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "Transaction created",
		log.FieldEntityID, created.ID,
		"type", created.Kind.String(),
		"amount", created.Amount.String())
	CreatedResponse(created).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(labelTransaction + " not found").Write(w)
		return
	}
	t, err := s.readTransaction(w, r)
	if err != nil {
		writeError(w, r, labelTransaction, log.OpUpdate, err)
		return
	}

	ctx := r.Context()
	updated, err := s.ledger.Update(ctx, s.ownerID, id, t)
	if err != nil {
		writeError(w, r, labelTransaction, log.OpUpdate, err)
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "Transaction updated", log.FieldEntityID, id)
	NewJSONResponse().Data(updated).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		NotFoundError(labelTransaction + " not found").Write(w)
		return
	}

	ctx := r.Context()
	if err := s.ledger.Delete(ctx, s.ownerID, id); err != nil {
		writeError(w, r, labelTransaction, log.OpDelete, err)
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "Transaction deleted", log.FieldEntityID, id)
	DeletedResponse(labelTransaction).Write(w)
}

func (s *Server) handleTransactionGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.ledger.Groups(r.Context(), s.ownerID)
	if err != nil {
		writeError(w, r, labelTransaction, log.OpGroup, err)
		return
	}
	ListResponse(groups).Write(w)
}

func (s *Server) readTransaction(w http.ResponseWriter, r *http.Request) (core.Transaction, error) {
	var p transactionPayload
	if err := decodeJSON(w, r, &p); err != nil {
		return core.Transaction{}, err
	}
	return p.transaction()
}
