package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/housetally/housetally-core/internal/ledger"
)

// createHomeRequest is the request body for POST /homes.
type createHomeRequest struct {
	Name string `json:"name"`
}

// addContributionRequest is the request body for POST /homes/{id}/contributions.
type addContributionRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
}

// createTransferRequest is the request body for POST /homes/{id}/transfers.
type createTransferRequest struct {
	ToUserID    string `json:"to_user_id"`
	AmountCents int64  `json:"amount_cents"`
}

// handleCreateHome creates a home with the caller as its first member.
func (s *Server) handleCreateHome(w http.ResponseWriter, r *http.Request) {
	var req createHomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user := userFromContext(r.Context())
	home, err := s.ledger.CreateHome(r.Context(), req.Name, user.ID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, home)
}

// handleListHomes returns the homes the caller belongs to.
func (s *Server) handleListHomes(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	homes, err := s.ledger.ListHomesForUser(r.Context(), user.ID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, homes)
}

// handleGetHome returns a single home. Only members can see it.
func (s *Server) handleGetHome(w http.ResponseWriter, r *http.Request) {
	homeID := chi.URLParam(r, "id")
	user := userFromContext(r.Context())

	if err := s.requireMembership(w, r, homeID, user.ID); err != nil {
		return
	}

	home, err := s.ledger.GetHome(r.Context(), homeID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, home)
}

// handleJoinHome enrols the caller into a home.
func (s *Server) handleJoinHome(w http.ResponseWriter, r *http.Request) {
	homeID := chi.URLParam(r, "id")
	user := userFromContext(r.Context())

	if err := s.ledger.JoinHome(r.Context(), homeID, user.ID); err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "joined"})
}

// handleBalances returns every member's net position in a home.
func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	homeID := chi.URLParam(r, "id")
	user := userFromContext(r.Context())

	if err := s.requireMembership(w, r, homeID, user.ID); err != nil {
		return
	}

	balances, err := s.ledger.Balances(r.Context(), homeID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balances)
}

// handleAddContribution records money the caller paid into the pool.
func (s *Server) handleAddContribution(w http.ResponseWriter, r *http.Request) {
	var req addContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user := userFromContext(r.Context())
	contribution := &ledger.Contribution{
		HomeID:      chi.URLParam(r, "id"),
		UserID:      user.ID,
		AmountCents: req.AmountCents,
		Description: req.Description,
	}

	if err := s.ledger.AddContribution(r.Context(), contribution); err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, contribution)
}

// handleListContributions returns a home's contributions, newest first.
func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	homeID := chi.URLParam(r, "id")
	user := userFromContext(r.Context())

	if err := s.requireMembership(w, r, homeID, user.ID); err != nil {
		return
	}

	contributions, err := s.ledger.ListContributions(r.Context(), homeID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contributions)
}

// handleCreateTransfer records money the caller sent to another member.
func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user := userFromContext(r.Context())
	transfer := &ledger.Transfer{
		HomeID:      chi.URLParam(r, "id"),
		FromUserID:  user.ID,
		ToUserID:    req.ToUserID,
		AmountCents: req.AmountCents,
	}

	if err := s.ledger.CreateTransfer(r.Context(), transfer); err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transfer)
}

// handleListTransfers returns a home's transfers, newest first.
func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	homeID := chi.URLParam(r, "id")
	user := userFromContext(r.Context())

	if err := s.requireMembership(w, r, homeID, user.ID); err != nil {
		return
	}

	transfers, err := s.ledger.ListTransfers(r.Context(), homeID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transfers)
}

// requireMembership writes the appropriate error response and returns it when
// the user cannot read the home. A nil return means the caller may proceed.
func (s *Server) requireMembership(w http.ResponseWriter, r *http.Request, homeID, userID string) error {
	if _, err := s.ledger.GetHome(r.Context(), homeID); err != nil {
		writeLedgerError(w, err)
		return err
	}

	ok, err := s.ledger.IsMember(r.Context(), homeID, userID)
	if err != nil {
		writeLedgerError(w, err)
		return err
	}
	if !ok {
		writeLedgerError(w, ledger.ErrNotMember)
		return ledger.ErrNotMember
	}
	return nil
}
