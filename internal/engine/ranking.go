package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
)

// CompletionPercentage is the participant's share of the challenge target
func CompletionPercentage(current, target float64) float64 {
	return Percentage(current, target)
}

// RankParticipants returns updated copies of the participants with completion,
// target flag and current rank derived. Ranked participants are ordered by value
// descending, then earliest join, then join sequence, and get unique 1-based
// ranks. Dropped-out and disqualified participants get no current rank and keep
// their final rank. The input slice is not modified.
func RankParticipants(participants []domain.ChallengeParticipant, targetValue float64) []domain.ChallengeParticipant {
	out := make([]domain.ChallengeParticipant, len(participants))
	copy(out, participants)

	ranked := make([]int, 0, len(out))
	for i := range out {
		p := &out[i]
		p.CompletionPercentage = CompletionPercentage(p.CurrentValue, targetValue)
		p.TargetReached = targetValue > 0 && p.CurrentValue >= targetValue
		if !p.Status.Ranked() {
			p.CurrentRank = nil
			continue
		}
		ranked = append(ranked, i)
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		pa, pb := out[ranked[a]], out[ranked[b]]
		if pa.CurrentValue != pb.CurrentValue {
			return pa.CurrentValue > pb.CurrentValue
		}
		if !pa.JoinedAt.Equal(pb.JoinedAt) {
			return pa.JoinedAt.Before(pb.JoinedAt)
		}
		if pa.JoinSeq != pb.JoinSeq {
			return pa.JoinSeq < pb.JoinSeq
		}
		return pa.UserID < pb.UserID
	})

	for pos, idx := range ranked {
		rank := pos + 1
		out[idx].CurrentRank = &rank
	}
	return out
}

// FinalizeRanks freezes the current rank of every ranked participant as its final rank
func FinalizeRanks(participants []domain.ChallengeParticipant) []domain.ChallengeParticipant {
	out := make([]domain.ChallengeParticipant, len(participants))
	copy(out, participants)
	for i := range out {
		if out[i].Status.Ranked() && out[i].CurrentRank != nil {
			rank := *out[i].CurrentRank
			out[i].FinalRank = &rank
		}
	}
	return out
}

// BuildLeaderboardEntries orders scores descending, breaking ties by earliest
// activity then sequence then user ID, keeps at most maxEntries (no limit when
// maxEntries <= 0) and assigns unique 1-based ranks.
func BuildLeaderboardEntries(leaderboardID string, scores []domain.UserScore, periodStart, periodEnd time.Time, maxEntries int) ([]domain.LeaderboardEntry, error) {
	if periodStart.After(periodEnd) {
		return nil, fmt.Errorf("%w: period start %s is after end %s", domain.ErrInvalidPeriod,
			periodStart.Format(time.DateOnly), periodEnd.Format(time.DateOnly))
	}

	sorted := make([]domain.UserScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.FirstActivityAt.Equal(b.FirstActivityAt) {
			return a.FirstActivityAt.Before(b.FirstActivityAt)
		}
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return a.UserID < b.UserID
	})
	if maxEntries > 0 && len(sorted) > maxEntries {
		sorted = sorted[:maxEntries]
	}

	entries := make([]domain.LeaderboardEntry, len(sorted))
	for i, s := range sorted {
		entries[i] = domain.LeaderboardEntry{
			LeaderboardID: leaderboardID,
			UserID:        s.UserID,
			Rank:          i + 1,
			Score:         s.Score,
			PeriodStart:   periodStart,
			PeriodEnd:     periodEnd,
		}
	}
	return entries, nil
}

// IsRegistrationOpen reports whether users may still join. With a deadline,
// registration runs through the deadline day; without one it closes when the
// challenge starts. Either way the challenge must be in open registration.
func IsRegistrationOpen(c domain.Challenge, today time.Time) bool {
	if c.Status != domain.ChallengeOpenRegistration {
		return false
	}
	day := DateOf(today)
	if c.RegistrationDeadline != nil {
		return !day.After(DateOf(*c.RegistrationDeadline))
	}
	return day.Before(DateOf(c.StartDate))
}

// DaysRemaining counts days to the end of an active challenge; 0 otherwise
func DaysRemaining(c domain.Challenge, today time.Time) int {
	if c.Status != domain.ChallengeActive {
		return 0
	}
	if left := DaysBetween(today, c.EndDate); left > 0 {
		return left
	}
	return 0
}

// DurationDays is the inclusive length of the challenge
func DurationDays(c domain.Challenge) int {
	return DaysBetween(c.StartDate, c.EndDate) + 1
}
