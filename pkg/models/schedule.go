package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduleType selects how a time-based workflow computes its next run.
type ScheduleType string

const (
	ScheduleTypeInterval ScheduleType = "interval"
	ScheduleTypeDaily    ScheduleType = "daily"
	ScheduleTypeWeekly   ScheduleType = "weekly"
	ScheduleTypeCron     ScheduleType = "cron"
)

// ErrInvalidSchedule is returned when schedule validation fails.
var ErrInvalidSchedule = errors.New("invalid schedule configuration")

// ScheduleSpec describes when a time-based workflow is due: a fixed interval
// in minutes, a daily or weekly anchor, or a standard 5-field cron
// expression.
type ScheduleSpec struct {
	Type            ScheduleType `json:"type" validate:"required"`
	IntervalMinutes int          `json:"interval_minutes,omitempty"`
	At              string       `json:"at,omitempty"` // "HH:MM", daily and weekly anchors
	Weekday         time.Weekday `json:"weekday,omitempty"`
	CronExpression  string       `json:"cron_expression,omitempty"`
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate checks the fields required by the selected schedule type.
func (s *ScheduleSpec) Validate() error {
	switch s.Type {
	case ScheduleTypeInterval:
		if s.IntervalMinutes <= 0 {
			return fmt.Errorf("%w: interval_minutes must be positive", ErrInvalidSchedule)
		}
	case ScheduleTypeDaily:
		if _, _, err := parseAnchor(s.At); err != nil {
			return err
		}
	case ScheduleTypeWeekly:
		if _, _, err := parseAnchor(s.At); err != nil {
			return err
		}
	case ScheduleTypeCron:
		if _, err := cronParser.Parse(s.CronExpression); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidSchedule, err)
		}
	default:
		return fmt.Errorf("%w: unknown schedule type %q", ErrInvalidSchedule, s.Type)
	}

	return nil
}

// NextAfter computes the next due time strictly after the reference time.
func (s *ScheduleSpec) NextAfter(reference time.Time) (time.Time, error) {
	switch s.Type {
	case ScheduleTypeInterval:
		if s.IntervalMinutes <= 0 {
			return time.Time{}, fmt.Errorf("%w: interval_minutes must be positive", ErrInvalidSchedule)
		}

		return reference.Add(time.Duration(s.IntervalMinutes) * time.Minute), nil
	case ScheduleTypeDaily:
		hour, minute, err := parseAnchor(s.At)
		if err != nil {
			return time.Time{}, err
		}

		next := time.Date(reference.Year(), reference.Month(), reference.Day(), hour, minute, 0, 0, reference.Location())
		if !next.After(reference) {
			next = next.AddDate(0, 0, 1)
		}

		return next, nil
	case ScheduleTypeWeekly:
		hour, minute, err := parseAnchor(s.At)
		if err != nil {
			return time.Time{}, err
		}

		next := time.Date(reference.Year(), reference.Month(), reference.Day(), hour, minute, 0, 0, reference.Location())
		for next.Weekday() != s.Weekday || !next.After(reference) {
			next = next.AddDate(0, 0, 1)
		}

		return next, nil
	case ScheduleTypeCron:
		schedule, err := cronParser.Parse(s.CronExpression)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidSchedule, err)
		}

		return schedule.Next(reference), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown schedule type %q", ErrInvalidSchedule, s.Type)
	}
}

// IsDue reports whether a workflow last triggered at lastTriggered should
// fire at now. A workflow that never triggered is immediately due.
func (s *ScheduleSpec) IsDue(lastTriggered *time.Time, now time.Time) bool {
	if lastTriggered == nil {
		return true
	}

	next, err := s.NextAfter(*lastTriggered)
	if err != nil {
		return false
	}

	return !next.After(now)
}

func parseAnchor(at string) (hour, minute int, err error) {
	parts := strings.SplitN(at, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: at must be HH:MM, got %q", ErrInvalidSchedule, at)
	}

	if _, err := fmt.Sscanf(at, "%02d:%02d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("%w: at must be HH:MM, got %q", ErrInvalidSchedule, at)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: at out of range: %q", ErrInvalidSchedule, at)
	}

	return hour, minute, nil
}
