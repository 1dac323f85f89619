package datemath

// Expiry returns the date an item bought on purchase expires after
// shelfLifeDays days.
func Expiry(purchase Date, shelfLifeDays int) Date {
	return purchase.AddDays(shelfLifeDays)
}

// WithinHorizon reports whether date falls in [today, today+days], both ends
// inclusive. A negative horizon never matches.
func WithinHorizon(date, today Date, days int) bool {
	if days < 0 {
		return false
	}
	return !date.Before(today) && !date.After(today.AddDays(days))
}
