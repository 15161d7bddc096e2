package services

import "funeral-backend/utils"

// timeWindow is a same-day interval of HH:MM:SS clock strings. Missing bounds
// widen to the whole day.
type timeWindow struct {
	Start string
	End   string
}

func windowOf(start, end *string) timeWindow {
	w := timeWindow{Start: utils.DayStart, End: utils.DayEnd}
	if start != nil && *start != "" {
		w.Start = *start
	}
	if end != nil && *end != "" {
		w.End = *end
	}
	return w
}

// overlaps treats windows as half-open, so 10:00-12:00 and 12:00-14:00 do not clash.
func (w timeWindow) overlaps(o timeWindow) bool {
	return w.Start < o.End && o.Start < w.End
}

func nullableID(id *uint) any {
	if id == nil {
		return nil
	}
	return *id
}
