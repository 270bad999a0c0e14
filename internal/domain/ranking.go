package domain

import (
	"sort"
	"strconv"
	"strings"
)

// SortLeaderboard orders entries by score, then percentage, then newest first.
func SortLeaderboard(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].Percentage != entries[j].Percentage {
			return entries[i].Percentage > entries[j].Percentage
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}

// Rank assigns competition ranks to already ordered entries: equal
// (score, percentage) pairs share a rank and the next pair takes its position.
func Rank(entries []LeaderboardEntry) []RankedEntry {
	ranked := make([]RankedEntry, len(entries))
	for i, e := range entries {
		rank := i + 1
		if i > 0 {
			prev := entries[i-1]
			if prev.Score == e.Score && prev.Percentage == e.Percentage {
				rank = ranked[i-1].Rank
			}
		}
		ranked[i] = RankedEntry{Rank: rank, LeaderboardEntry: e}
	}
	return ranked
}

// MatchesSearch reports whether term occurs in the entry's name or phone
// number (case-insensitive) or in its score. An empty term matches everything.
func MatchesSearch(e LeaderboardEntry, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Name), term) ||
		strings.Contains(strings.ToLower(e.PhoneNumber), term) ||
		strings.Contains(strconv.Itoa(e.Score), term)
}
