package http

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/dustin/go-humanize"

	"ubs/internal/core"
)

// formatReais formats money the Brazilian way, e.g. "R$ 1.234,56".
func formatReais(m core.Money) string {
	return "R$ " + humanize.FormatFloat("#.###,##", m.Float())
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func executeTemplate(t *template.Template, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// unitRow is a unit formatted for the tables and the unit selects.
type unitRow struct {
	ID        int64
	Name      string
	Federal   string
	State     string
	Municipal string
	Total     string
}

func toUnitRows(units []core.Unit) []unitRow {
	rows := make([]unitRow, 0, len(units))
	for _, u := range units {
		rows = append(rows, unitRow{
			ID:        u.ID,
			Name:      u.Name,
			Federal:   formatReais(u.Federal),
			State:     formatReais(u.State),
			Municipal: formatReais(u.Municipal),
			Total:     formatReais(u.Total()),
		})
	}
	return rows
}

type expenseRow struct {
	ID          int64
	Description string
	Amount      string
	CreatedAt   string
}

func toExpenseRows(expenses []core.Expense) []expenseRow {
	rows := make([]expenseRow, 0, len(expenses))
	for _, e := range expenses {
		created := ""
		if !e.CreatedAt.IsZero() {
			created = e.CreatedAt.Local().Format("02/01/2006 15:04")
		}
		rows = append(rows, expenseRow{
			ID:          e.ID,
			Description: e.Description,
			Amount:      formatReais(e.Amount),
			CreatedAt:   created,
		})
	}
	return rows
}
