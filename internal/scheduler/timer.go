package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/nyxaria/kmfetch/pkg/models"
)

// checkTimers inspects every artist with an effective timer and enqueues
// a scheduled task when now >= next_run, then recomputes next_run.
func (s *Scheduler) checkTimers(ctx context.Context) {
	artists, err := s.artists.ListArtists()
	if err != nil {
		log.WithError(err).Warn("checkTimers: failed to list artists")
		return
	}
	now := time.Now()
	for _, a := range artists {
		if a.Ignore || a.Completed {
			continue
		}
		timer := a.Timer
		if timer == nil {
			timer = s.effectiveGlobalTimer()
		}
		if timer == nil {
			continue
		}
		due, firstRun := s.isDue(a.ID, *timer, now)
		if !due {
			continue
		}
		s.enqueue(a.ID, nil, nil, "scheduled")
		s.recordNextRun(a.ID, NextRun(*timer, now))
		_ = firstRun
	}
}

// effectiveGlobalTimer returns the current global fallback timer.
func (s *Scheduler) effectiveGlobalTimer() *models.Timer {
	s.nextRunMu.Lock()
	defer s.nextRunMu.Unlock()
	return s.globalTimer
}

func (s *Scheduler) isDue(artistID string, timer models.Timer, now time.Time) (due bool, firstRun bool) {
	s.nextRunMu.Lock()
	defer s.nextRunMu.Unlock()
	nr, ok := s.nextRun[artistID]
	if !ok {
		nr = NextRun(timer, now)
		s.nextRun[artistID] = nr
		return false, true
	}
	if !now.Before(nr) {
		return true, false
	}
	return false, false
}

func (s *Scheduler) recordNextRun(artistID string, next time.Time) {
	s.nextRunMu.Lock()
	defer s.nextRunMu.Unlock()
	s.nextRun[artistID] = next
}

// NextRun computes the next firing time for a timer relative to from,
// per the daily/weekly/monthly rules (§4.6 Schedule computation).
func NextRun(timer models.Timer, from time.Time) time.Time {
	hh, mm := parseHHMM(timer.Time)
	switch timer.Type {
	case models.TimerWeekly:
		return nextWeekly(from, time.Weekday(timer.Day), hh, mm)
	case models.TimerMonthly:
		return nextMonthly(from, timer.Day, hh, mm)
	default: // daily
		return nextDaily(from, hh, mm)
	}
}

// parseHHMM parses a "HH:MM" string, falling back to 00:00 if malformed.
func parseHHMM(s string) (int, int) {
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%d:%d", &hh, &mm); err != nil {
		return 0, 0
	}
	return hh, mm
}

func nextDaily(from time.Time, hh, mm int) time.Time {
	candidate := time.Date(from.Year(), from.Month(), from.Day(), hh, mm, 0, 0, from.Location())
	if !candidate.After(from) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

func nextWeekly(from time.Time, weekday time.Weekday, hh, mm int) time.Time {
	candidate := time.Date(from.Year(), from.Month(), from.Day(), hh, mm, 0, 0, from.Location())
	daysUntil := (int(weekday) - int(from.Weekday()) + 7) % 7
	candidate = candidate.AddDate(0, 0, daysUntil)
	if !candidate.After(from) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

func nextMonthly(from time.Time, day, hh, mm int) time.Time {
	if day <= 0 {
		day = 1
	}
	candidate := time.Date(from.Year(), from.Month(), day, hh, mm, 0, 0, from.Location())
	if !candidate.After(from) {
		candidate = candidate.AddDate(0, 1, 0)
	}
	return candidate
}
