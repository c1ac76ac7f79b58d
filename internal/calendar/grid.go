package calendar

// Grid is one rendered month.
type Grid struct {
	Month  CalendarDate // first day of the displayed month
	Labels [7]string
	// Offset is the number of blank cells before the 1st so that days line up
	// under the Sunday-first labels.
	Offset int
	Cells  []DayCell
}

// BuildGrid enumerates every day of displayed's month.
func BuildGrid(displayed CalendarDate, v CellView) Grid {
	first := displayed.FirstOfMonth()
	n := first.DaysInMonth()
	g := Grid{
		Month:  first,
		Labels: WeekdayLabels(),
		Offset: int(first.Weekday()),
		Cells:  make([]DayCell, 0, n),
	}
	for day := 1; day <= n; day++ {
		d := CalendarDate{Year: first.Year, Month: first.Month, Day: day}
		g.Cells = append(g.Cells, NewDayCell(d, v))
	}
	return g
}

// Cell returns the cell for d, if d is in the grid's month.
func (g Grid) Cell(d CalendarDate) (DayCell, bool) {
	if !d.SameMonth(g.Month) || d.Day < 1 || d.Day > len(g.Cells) {
		return DayCell{}, false
	}
	return g.Cells[d.Day-1], true
}

// Blanks returns a slice of length Offset for templates to range over.
func (g Grid) Blanks() []struct{} {
	return make([]struct{}, g.Offset)
}
