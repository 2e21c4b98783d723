package domain

// Summary is what the run report shows.
type Summary struct {
	Rows        int
	Moments     Moments
	YearlyMeans []GroupMean
}

// Summarize builds the report summary of a cleaned table and its moments.
func Summarize(t *Table, moments Moments) Summary {
	return Summary{
		Rows:        t.Len(),
		Moments:     moments,
		YearlyMeans: MeanTemperatureByYear(t),
	}
}
