package scoringservice

import (
	"sort"

	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
)

// Standing is one active participant's position after a round.
type Standing struct {
	ParticipantID sharedtypes.ParticipantID
	Total         float64
	Absent        bool
}

// Rank orders the active participants by total score, highest first. Ties go to the lower
// participant id. Only an explicit absent mark counts as absent.
func Rank(active []sharedtypes.ParticipantID, scores []rounddomain.Score, attendance []rounddomain.AttendanceMark) []Standing {
	totals := make(map[sharedtypes.ParticipantID]float64, len(active))
	for _, sc := range scores {
		if sc.Value != nil {
			totals[sc.ParticipantID] += *sc.Value
		}
	}
	absent := make(map[sharedtypes.ParticipantID]bool)
	for _, m := range attendance {
		if m.Present != nil && !*m.Present {
			absent[m.ParticipantID] = true
		}
	}

	out := make([]Standing, 0, len(active))
	for _, id := range active {
		out = append(out, Standing{ParticipantID: id, Total: totals[id], Absent: absent[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out
}

// Eliminate applies policy to ranked standings and returns who is out, by id. With
// EliminateAbsent, absent participants go first and top_k counts only those present.
func Eliminate(standings []Standing, policy rounddomain.EliminationPolicy) []sharedtypes.ParticipantID {
	var out []sharedtypes.ParticipantID
	kept := 0
	for _, s := range standings {
		if policy.EliminateAbsent && s.Absent {
			out = append(out, s.ParticipantID)
			continue
		}
		switch policy.Type {
		case rounddomain.EliminateTopK:
			if float64(kept) >= policy.Value {
				out = append(out, s.ParticipantID)
				continue
			}
		case rounddomain.EliminateMinScore:
			if s.Total < policy.Value {
				out = append(out, s.ParticipantID)
				continue
			}
		}
		kept++
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
