package scheduler

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Schedule is one recurring report export.
type Schedule struct {
	Name           string `json:"name"`
	CronExpression string `json:"cron"`
	Timezone       string `json:"timezone,omitempty"`
	Format         string `json:"format"`
	// Query holds report filters in URL query form, e.g. "status=approved&type=buy".
	Query string `json:"query,omitempty"`
}

var scheduleName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks everything a run depends on, so a bad schedule fails at
// startup rather than on its first tick.
func (s Schedule) Validate() error {
	if !scheduleName.MatchString(s.Name) {
		return fmt.Errorf("invalid schedule name %q", s.Name)
	}
	if err := ValidateCronExpression(s.CronExpression); err != nil {
		return fmt.Errorf("schedule %s: %w", s.Name, err)
	}
	if _, err := s.location(); err != nil {
		return fmt.Errorf("schedule %s: %w", s.Name, err)
	}
	if _, _, err := s.parse(); err != nil {
		return fmt.Errorf("schedule %s: %w", s.Name, err)
	}
	return nil
}

func (s Schedule) location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", s.Timezone)
	}
	return loc, nil
}

// ScheduleManager manages scheduled report execution
type ScheduleManager struct {
	cron     *cron.Cron
	jobs     map[string]cron.EntryID
	specs    map[string]Schedule
	executor *Executor
	logger   *zap.Logger
	mu       sync.RWMutex
	running  bool
}

// NewScheduleManager creates a new schedule manager. A run that is still
// going when its next tick fires is skipped.
func NewScheduleManager(executor *Executor, logger *zap.Logger) *ScheduleManager {
	cl := cronLogger{logger: logger.Sugar()}
	return &ScheduleManager{
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		jobs:     make(map[string]cron.EntryID),
		specs:    make(map[string]Schedule),
		executor: executor,
		logger:   logger,
	}
}

// Start starts the schedule manager
func (m *ScheduleManager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("schedule manager already running")
	}
	m.running = true

	m.logger.Info("Starting schedule manager", zap.Int("schedules", len(m.jobs)))
	m.cron.Start()
	return nil
}

// Stop stops the schedule manager and waits for running exports until ctx
// is done.
func (m *ScheduleManager) Stop(ctx context.Context) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	m.logger.Info("Stopping schedule manager")
	select {
	case <-m.cron.Stop().Done():
	case <-ctx.Done():
		m.logger.Warn("Schedule manager stopped before running exports finished")
	}
}

// AddSchedule registers schedule, replacing any schedule with the same name.
func (m *ScheduleManager) AddSchedule(schedule Schedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if entryID, ok := m.jobs[schedule.Name]; ok {
		m.cron.Remove(entryID)
	}

	spec := schedule.CronExpression
	if schedule.Timezone != "" {
		spec = "CRON_TZ=" + schedule.Timezone + " " + spec
	}
	entryID, err := m.cron.AddFunc(spec, func() {
		m.executeSchedule(context.Background(), schedule)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	m.jobs[schedule.Name] = entryID
	m.specs[schedule.Name] = schedule

	m.logger.Info("Added schedule",
		zap.String("schedule_name", schedule.Name),
		zap.String("cron", schedule.CronExpression),
		zap.String("format", schedule.Format),
		zap.String("description", DescribeCronExpression(schedule.CronExpression)))

	return nil
}

// RemoveSchedule removes a schedule from the manager
func (m *ScheduleManager) RemoveSchedule(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entryID, ok := m.jobs[name]; ok {
		m.cron.Remove(entryID)
		delete(m.jobs, name)
		delete(m.specs, name)

		m.logger.Info("Removed schedule", zap.String("schedule_name", name))
	}
}

// RunNow executes a registered schedule immediately, outside its cron slot.
func (m *ScheduleManager) RunNow(ctx context.Context, name string) (*ExecutionResult, error) {
	m.mu.RLock()
	schedule, ok := m.specs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("schedule %s not found", name)
	}
	return m.executor.Execute(ctx, schedule)
}

func (m *ScheduleManager) executeSchedule(ctx context.Context, schedule Schedule) {
	m.logger.Info("Executing scheduled report", zap.String("schedule_name", schedule.Name))

	result, err := m.executor.Execute(ctx, schedule)
	if err != nil {
		m.logger.Error("Failed to execute scheduled report",
			zap.String("schedule_name", schedule.Name),
			zap.Error(err))
		return
	}

	m.logger.Info("Scheduled report execution completed",
		zap.String("schedule_name", schedule.Name),
		zap.String("execution_id", result.ExecutionID.String()),
		zap.Time("next_execution", m.nextRun(schedule.Name)))
}

func (m *ScheduleManager) nextRun(name string) time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if entryID, ok := m.jobs[name]; ok {
		return m.cron.Entry(entryID).Next
	}
	return time.Time{}
}

// GetActiveJobs returns the number of active jobs
func (m *ScheduleManager) GetActiveJobs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.jobs)
}

// GetJobStatus returns the status of a scheduled job
func (m *ScheduleManager) GetJobStatus(name string) (*JobStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entryID, ok := m.jobs[name]
	if !ok {
		return nil, fmt.Errorf("schedule %s not found", name)
	}

	schedule := m.specs[name]
	entry := m.cron.Entry(entryID)
	next := entry.Next
	if next.IsZero() {
		loc, _ := schedule.location()
		next = entry.Schedule.Next(time.Now().In(loc))
	}
	return &JobStatus{
		ScheduleName: name,
		NextRun:      next,
		PrevRun:      entry.Prev,
		IsActive:     m.running,
	}, nil
}

// JobStatus represents the status of a scheduled job
type JobStatus struct {
	ScheduleName string    `json:"schedule_name"`
	NextRun      time.Time `json:"next_run"`
	PrevRun      time.Time `json:"prev_run"`
	IsActive     bool      `json:"is_active"`
}

// ValidateCronExpression validates a five-field cron expression or a
// descriptor such as @daily.
func ValidateCronExpression(expr string) error {
	_, err := cronParser.Parse(expr)
	return err
}

// DescribeCronExpression returns a human-readable description of a cron expression
func DescribeCronExpression(expr string) string {
	switch expr {
	case "0 * * * *", "@hourly":
		return "Every hour"
	case "0 0 * * *", "@daily", "@midnight":
		return "Every day at midnight"
	case "0 0 * * 0", "@weekly":
		return "Every Sunday at midnight"
	case "0 0 1 * *", "@monthly":
		return "First day of every month at midnight"
	case "0 9 * * 1-5":
		return "Every weekday at 9:00 AM"
	default:
		return expr
	}
}

// cronLogger routes cron's own messages through zap.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
