package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ubs/internal/log"
)

// handleCreateUnit registers a unit from the Register Unit panel.
func (s *Server) handleCreateUnit(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if resp := ParseFormOrFail(p); resp != nil {
		resp.Write(w)
		return
	}

	input, err := ParseUnitInput(p)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}

	u, err := s.ledger.RegisterUnit(r.Context(), input)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}

	msg := fmt.Sprintf("UBS #%d registered successfully!", u.ID)
	s.render(w, r, "unit_created.html", struct {
		ID    int64
		Name  string
		Total string
	}{u.ID, u.Name, formatReais(u.Total())}, NewHTMXResponse().
		TriggerUnitCreated(u.ID).
		TriggerFormReset().
		TriggerSuccessNotification(msg))
}

// handleUnitsTable renders the list of registered units.
func (s *Server) handleUnitsTable(w http.ResponseWriter, r *http.Request) {
	units, err := s.ledger.Units(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	name := "units_table.html"
	if r.URL.Query().Get("view") == "options" {
		name = "unit_options.html"
	}
	s.render(w, r, name, struct {
		Units []unitRow
	}{toUnitRows(units)}, NewHTMXResponse())
}

// handleUnitExpenses renders the expenses registered for one unit.
func (s *Server) handleUnitExpenses(w http.ResponseWriter, r *http.Request) {
	unitID, err := parseUnitIDField("unit_id", chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	expenses, err := s.ledger.Expenses(r.Context(), unitID)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	s.render(w, r, "expenses_table.html", struct {
		UnitID   int64
		Expenses []expenseRow
	}{unitID, toExpenseRows(expenses)}, NewHTMXResponse())
}
