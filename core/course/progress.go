package course

// Aggregate sums the graded items of a course's coursework.
// weightedScore is the sum of grade*percentage/100 and gradedWeight the sum of percentage,
// both over graded items only. Any input is accepted, including empty lists and
// out-of-range percentages.
func Aggregate(items []Coursework) (weightedScore, gradedWeight float64) {
	for _, cw := range items {
		if cw.Grade == nil {
			continue
		}
		weightedScore += *cw.Grade * cw.Percentage / 100
		gradedWeight += cw.Percentage
	}
	return weightedScore, gradedWeight
}

// ProgressOf computes the Progress of a course from its coursework.
// Score is 0 whenever nothing has been graded yet.
func ProgressOf(items []Coursework) Progress {
	score, graded := Aggregate(items)
	if graded == 0 {
		score = 0
	}
	return Progress{Score: score, PercentageGraded: graded}
}

// Remaining is the share of the course (out of 100) that has not been graded yet.
func Remaining(items []Coursework) float64 {
	_, graded := Aggregate(items)
	if graded >= 100 {
		return 0
	}
	return 100 - graded
}

// filterByCourse returns the items belonging to courseID, preserving order.
func filterByCourse(items []Coursework, courseID string) []Coursework {
	res := make([]Coursework, 0, len(items))
	for _, cw := range items {
		if cw.CourseID == courseID {
			res = append(res, cw)
		}
	}
	return res
}
