package core

// UnitReport holds the allocations of one unit plus the sum of its expenses.
type UnitReport struct {
	UnitID        int64
	Name          string
	Federal       Money
	State         Money
	Municipal     Money
	TotalExpenses Money
}

// GrandTotal returns federal + state + municipal + expenses.
func (r UnitReport) GrandTotal() Money {
	return r.Federal.Add(r.State).Add(r.Municipal).Add(r.TotalExpenses)
}

// UnitTotal is one row of the overall report.
type UnitTotal struct {
	UnitID int64
	Name   string
	Total  Money
}
