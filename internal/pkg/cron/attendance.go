package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
)

const RolloverJobName = "attendance_day_rollover"

// AttendanceJobs holds the attendance jobs run by the scheduler.
type AttendanceJobs struct {
	attendanceService attendance.Service
	location          *time.Location
	now               func() time.Time
}

func NewAttendanceJobs(attendanceService attendance.Service, location *time.Location) *AttendanceJobs {
	if location == nil {
		location = time.UTC
	}
	return &AttendanceJobs{
		attendanceService: attendanceService,
		location:          location,
		now:               time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	scheduler.AddJob(RolloverJobName, interval, j.DayRollover)
}

// DayRollover prepares today's records and closes out yesterday's. Running it more
// than once on the same day changes nothing.
func (j *AttendanceJobs) DayRollover(ctx context.Context) error {
	today := j.now().In(j.location)

	result, err := j.attendanceService.RollOver(ctx, today)
	if err != nil {
		return fmt.Errorf("roll over %s: %w", today.Format("2006-01-02"), err)
	}

	if result.Created > 0 || result.MarkedAbsent > 0 {
		slog.Info("Cron: Attendance day rollover",
			"date", result.Date,
			"created", result.Created,
			"marked_absent", result.MarkedAbsent)
	}
	return nil
}
