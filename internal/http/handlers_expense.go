package http

import (
	"net/http"

	"ubs/internal/log"
)

// handleCreateExpense registers an expense from the Register Expense panel.
// An unknown unit id is refused by the store and nothing is written.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if resp := ParseFormOrFail(p); resp != nil {
		resp.Write(w)
		return
	}

	input, err := ParseExpenseInput(p)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}

	e, err := s.ledger.RegisterExpense(r.Context(), input)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}

	s.render(w, r, "expense_created.html", struct {
		ID          int64
		UnitID      int64
		Description string
		Amount      string
	}{e.ID, e.UnitID, e.Description, formatReais(e.Amount)}, NewHTMXResponse().
		TriggerExpenseCreated(e.UnitID, e.ID).
		TriggerFormReset().
		TriggerSuccessNotification("Expense registered successfully!"))
}
