package calendar

// Stylesheet class names. They are part of the widget's public contract for
// anyone overriding styles.
const (
	ClassRoot                 = "dynamic_calendar"
	ClassWrapper              = "dynamic_calendar__wrapper"
	ClassHeader               = "dynamic_calendar__header"
	ClassChangeMonthContainer = "dynamic_calendar__header__change_month_container"
	ClassChangeMonthButton    = "dynamic_calendar__header__change_month_button"
	ClassHeaderText           = "dynamic_calendar__header__text"
	ClassHeaderYear           = "dynamic_calendar__header__year"
	ClassChangeMonthSkeleton  = "dynamic_calendar__change_month_skeleton"
	ClassDays                 = "dynamic_calendar__days"
	ClassDaysLabel            = "dynamic_calendar__days__label"
	ClassDayContainer         = "dynamic_calendar__day_container"
	ClassDayBlank             = "dynamic_calendar__day_blank"
	ClassDaySkeletonContainer = "dynamic_calendar__day_skeleton_container"
	ClassDaySkeleton          = "dynamic_calendar__day_skeleton"

	ClassDay         = "dynamic_calendar__day"
	ClassActiveDay   = "dynamic_calendar__active_day"
	ClassStartDay    = "dynamic_calendar__start_day"
	ClassStartDayBg  = "dynamic_calendar__start_day_bg"
	ClassStartdayAlt = "dynamic_calendar__startday"
	ClassBetweenDay  = "dynamic_calendar__between_day"
	ClassEndDay      = "dynamic_calendar__end_day"
	ClassEndDayBg    = "dynamic_calendar__end_day_bg"
	ClassDisabledDay = "dynamic_calendar__disabled_day"
)

// DayCell is the render state of one day in the grid.
type DayCell struct {
	Date    CalendarDate
	Key     string
	Loading bool

	Today                bool
	RangeStart           bool
	RangeStartBackground bool
	Between              bool
	RangeEnd             bool
	RangeEndBackground   bool
	Disabled             bool
}

// CellView is everything a cell needs besides its own date.
type CellView struct {
	Mode        Mode
	Selection   Selection
	Eligibility Eligibility
	Loading     bool
}

// NewDayCell evaluates the visual state of d.
func NewDayCell(d CalendarDate, v CellView) DayCell {
	sel := v.Selection
	c := DayCell{
		Date:     d,
		Key:      d.Key(),
		Loading:  v.Loading,
		Today:    d.Equal(v.Eligibility.Today),
		Disabled: v.Eligibility.Disabled(d),
	}
	if !sel.Start.IsZero() && d.Equal(sel.Start) {
		c.RangeStart = true
	}
	if v.Mode == ModeRange {
		open := !sel.End.IsZero() && !sel.Start.IsZero() && !sel.Start.Equal(sel.End)
		if c.RangeStart && open {
			c.RangeStartBackground = true
		}
		if !sel.Start.IsZero() && !sel.End.IsZero() && d.Between(sel.Start, sel.End) {
			c.Between = true
		}
		if !sel.End.IsZero() && d.Equal(sel.End) {
			c.RangeEnd = true
			c.RangeEndBackground = open
		}
	}
	return c
}

// Clickable reports whether a click on the cell should reach the selection.
func (c DayCell) Clickable() bool {
	return !c.Loading && !c.Disabled
}

// Classes returns the stylesheet classes of the day element.
func (c DayCell) Classes() []string {
	classes := []string{ClassDay}
	if c.Today {
		classes = append(classes, ClassActiveDay)
	}
	if c.RangeStart {
		classes = append(classes, ClassStartDay)
	}
	if c.RangeStartBackground {
		classes = append(classes, ClassStartDayBg, ClassStartdayAlt)
	}
	if c.Between {
		classes = append(classes, ClassBetweenDay)
	}
	if c.RangeEnd {
		classes = append(classes, ClassEndDay)
	}
	if c.RangeEndBackground {
		classes = append(classes, ClassEndDayBg)
	}
	if c.Disabled {
		classes = append(classes, ClassDisabledDay)
	}
	return classes
}
