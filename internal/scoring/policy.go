package scoring

// GradeFlat compares submitted answers against the expected list in blank
// order. When the lists disagree in length only the shorter prefix is
// graded; missing answers count as wrong against the expected total.
func GradeFlat(expected, submitted []string, caseSensitive bool) ([]bool, int) {
	verdicts := make([]bool, len(expected))
	correct := 0
	for i := range expected {
		if i >= len(submitted) {
			break
		}
		if Equal(expected[i], submitted[i], caseSensitive) {
			verdicts[i] = true
			correct++
		}
	}
	return verdicts, correct
}

// GradeNested flattens sentence-major expected answers and grades them
// against the flat submission.
func GradeNested(expected [][]string, submitted []string, caseSensitive bool) ([]bool, int) {
	var flat []string
	for _, sentence := range expected {
		flat = append(flat, sentence...)
	}
	return GradeFlat(flat, submitted, caseSensitive)
}

// GradeMap grades letter-to-number matching answers. Keys are compared
// exactly; a missing key is wrong.
func GradeMap(expected, submitted map[string]string) (map[string]bool, int) {
	verdicts := make(map[string]bool, len(expected))
	correct := 0
	for key, want := range expected {
		got, ok := submitted[key]
		if ok && Equal(want, got, true) {
			verdicts[key] = true
			correct++
		} else {
			verdicts[key] = false
		}
	}
	return verdicts, correct
}

// AllOrNothing awards 1 only for a fully correct exercise.
func AllOrNothing(correct, total int) int {
	if total > 0 && correct == total {
		return 1
	}
	return 0
}

// Threshold is the graded scale of the five-way matching tasks: a perfect
// answer earns 2, three or four correct earn 1, anything less earns 0.
func Threshold(correct, total int) int {
	switch {
	case total > 0 && correct == total:
		return 2
	case correct >= 3:
		return 1
	default:
		return 0
	}
}

// SetEquality awards 1 only when the submitted set matches the expected set
// exactly, extras and omissions both disqualifying.
func SetEquality(expected, submitted []string) int {
	want := make(map[string]bool, len(expected))
	for _, e := range expected {
		want[Normalize(e)] = true
	}
	got := make(map[string]bool, len(submitted))
	for _, s := range submitted {
		got[Normalize(s)] = true
	}
	if len(want) != len(got) {
		return 0
	}
	for k := range want {
		if !got[k] {
			return 0
		}
	}
	return 1
}

// MatchVariant reports whether the submission matches any accepted form,
// case-insensitively.
func MatchVariant(variants []string, submitted string) bool {
	for _, v := range variants {
		if Equal(v, submitted, false) {
			return true
		}
	}
	return false
}
