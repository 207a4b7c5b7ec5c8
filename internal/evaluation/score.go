package evaluation

// Score is the latest completed rating of a user on its own scale.
type Score struct {
	EvaluationID string
	Raw          float64
	Max          float64
}

// Normalized rescales the score onto 0..10.
func (s Score) Normalized() float64 {
	return Normalize(s.Raw, s.Max)
}

// LatestScore picks the most recently completed, rated evaluation of userID.
// Equal completion times are broken by the greater evaluation id. An
// evaluation without a completion time ranks below any that has one.
func LatestScore(userID string, evaluations []*Evaluation) (Score, bool) {
	var best *Evaluation
	for _, e := range evaluations {
		if e == nil || e.UserID != userID || !e.Scored() {
			continue
		}
		if best == nil || newer(e, best) {
			best = e
		}
	}
	if best == nil {
		return Score{}, false
	}
	return Score{EvaluationID: best.ID, Raw: *best.OverallRating, Max: best.MaxScore()}, true
}

func newer(a, b *Evaluation) bool {
	switch {
	case a.CompletedAt == nil && b.CompletedAt == nil:
		return a.ID > b.ID
	case a.CompletedAt == nil:
		return false
	case b.CompletedAt == nil:
		return true
	case a.CompletedAt.Equal(*b.CompletedAt):
		return a.ID > b.ID
	}
	return a.CompletedAt.After(*b.CompletedAt)
}

// Normalize maps raw on a 0..max scale onto 0..10, clamped at both ends.
func Normalize(raw, max float64) float64 {
	if max <= 0 {
		return 0
	}
	n := raw / max * 10
	switch {
	case n < 0:
		return 0
	case n > 10:
		return 10
	}
	return n
}

// Weight is the normalized latest score of userID, or fallback when the user
// has no scored evaluation.
func Weight(userID string, evaluations []*Evaluation, fallback float64) (float64, bool) {
	s, ok := LatestScore(userID, evaluations)
	if !ok {
		return fallback, false
	}
	return s.Normalized(), true
}
