package voting

import (
	"math"
	"sort"

	"backend-evoting/internal/models"
)

// Summary - hasil Tally. TotalBallots selalu len(ballots).
type Summary struct {
	TotalBallots int                  `json:"total_ballots"`
	Results      []models.TallyResult `json:"results"`
	Tie          bool                 `json:"tie"`
}

// Tally menghitung suara per kandidat. Urutan awal mengikuti no_urut
// menaik, lalu diurutkan stabil berdasarkan jumlah suara menurun, sehingga
// suara seri dimenangkan no_urut terkecil. Hanya hasil pertama yang ditandai
// leading, dan hanya jika suaranya lebih dari nol.
func Tally(candidates []models.Candidate, ballots []models.Vote) Summary {
	counts := make(map[int64]int, len(candidates))
	for _, b := range ballots {
		counts[b.CandidateID]++
	}

	ordered := make([]models.Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].NoUrut < ordered[j].NoUrut
	})

	total := len(ballots)
	results := make([]models.TallyResult, 0, len(ordered))
	for _, c := range ordered {
		votes := counts[c.ID]
		results = append(results, models.TallyResult{
			Candidate:  c,
			Votes:      votes,
			Percentage: percentage(votes, total),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Votes > results[j].Votes
	})

	summary := Summary{TotalBallots: total, Results: results}
	if len(results) > 0 && results[0].Votes > 0 {
		results[0].Leading = true
		summary.Tie = len(results) > 1 && results[1].Votes == results[0].Votes
	}

	return summary
}

func percentage(votes, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(votes)/float64(total)*1000) / 10
}
