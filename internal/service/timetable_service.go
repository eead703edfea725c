package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/dto"
	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/pkg/config"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
)

type timetableExamStore interface {
	ListPending(ctx context.Context, scope models.ExamScope) ([]models.Exam, error)
	ClearAssignments(ctx context.Context, ids []string) error
	ListValidated(ctx context.Context) ([]models.Exam, error)
	Assign(ctx context.Context, examID, roomID string, startsAt time.Time) error
	List(ctx context.Context, filter models.ExamFilter) ([]models.ExamListing, error)
	ValidateDepartment(ctx context.Context, departmentID string) (int64, error)
}

type timetableRoomReader interface {
	ListByCapacity(ctx context.Context) ([]models.Room, error)
}

type timetableConflictStore interface {
	Create(ctx context.Context, conflict *models.Conflict) error
	List(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, error)
}

type scopeLocker interface {
	Acquire(ctx context.Context, scope string) (func(), error)
}

type examCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidateExams(ctx context.Context) error
}

type generationObserver interface {
	ObserveGeneration(outcome string, scheduled, conflicts int, duration time.Duration)
}

// TimetableConfig governs the generator and its defaults.
type TimetableConfig struct {
	Planner          PlannerConfig
	PeriodStart      string
	PeriodEnd        string
	PeriodEndHour    int
	PreloadValidated bool
	CacheTTL         time.Duration
}

// TimetableConfigFrom maps scheduler settings onto the service config.
func TimetableConfigFrom(cfg config.SchedulerConfig, cacheTTL time.Duration) TimetableConfig {
	return TimetableConfig{
		Planner:          PlannerConfigFrom(cfg),
		PeriodStart:      cfg.PeriodStart,
		PeriodEnd:        cfg.PeriodEnd,
		PeriodEndHour:    cfg.PeriodEndHour,
		PreloadValidated: cfg.PreloadValidated,
		CacheTTL:         cacheTTL,
	}
}

// TimetableService places pending exams onto rooms and time slots and serves
// the resulting timetable.
type TimetableService struct {
	exams     timetableExamStore
	rooms     timetableRoomReader
	conflicts timetableConflictStore
	locker    scopeLocker
	cache     examCache
	metrics   generationObserver
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TimetableConfig
	now       func() time.Time
}

// NewTimetableService wires generator dependencies. locker, cache and metrics are optional.
func NewTimetableService(
	exams timetableExamStore,
	rooms timetableRoomReader,
	conflicts timetableConflictStore,
	locker scopeLocker,
	cache examCache,
	metrics generationObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Planner = cfg.Planner.withDefaults()
	if cfg.PeriodStart == "" {
		cfg.PeriodStart = "2025-06-01"
	}
	if cfg.PeriodEnd == "" {
		cfg.PeriodEnd = "2025-06-20"
	}
	if cfg.PeriodEndHour == 0 {
		cfg.PeriodEndHour = 18
	}
	return &TimetableService{
		exams:     exams,
		rooms:     rooms,
		conflicts: conflicts,
		locker:    locker,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Generate resets and re-plans every pending exam of the requested scope.
// Placements are written one at a time as they are found and conflicts after
// the scan, so a persistence failure leaves the scope partially planned.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}
	period, err := s.resolvePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	scope := models.ExamScope{FormationID: req.FormationID, DepartmentID: req.DepartmentID}
	started := s.now()

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, scope.Key())
		if err != nil {
			s.observe(OutcomeLocked, 0, 0, started)
			return nil, err
		}
		defer release()
	}

	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID), zap.String("scope", scope.Key()))

	resp, err := s.run(ctx, log, runID, scope, period)
	if err != nil {
		s.observe(OutcomeFailed, 0, 0, started)
		log.Error("timetable generation failed", zap.Error(err))
		return nil, err
	}

	outcome := OutcomeSuccess
	if resp.Scheduled == 0 && resp.Conflicts == 0 {
		outcome = OutcomeEmpty
	}
	s.observe(outcome, resp.Scheduled, resp.Conflicts, started)
	return resp, nil
}

func (s *TimetableService) run(ctx context.Context, log *zap.Logger, runID string, scope models.ExamScope, period dto.PlanningPeriod) (*dto.GenerateTimetableResponse, error) {
	resp := &dto.GenerateTimetableResponse{
		Details: dto.GenerationDetails{
			RunID:     runID,
			Scope:     scope.Key(),
			Period:    period,
			Conflicts: []dto.TimetableConflict{},
		},
	}

	pending, err := s.exams.ListPending(ctx, scope)
	if err != nil {
		return nil, internalError(err, "failed to load pending exams")
	}
	if len(pending) == 0 {
		log.Info("no pending exams in scope")
		resp.Message = "nothing to schedule"
		return resp, nil
	}

	ids := make([]string, len(pending))
	for i, exam := range pending {
		ids[i] = exam.ID
	}
	if err := s.exams.ClearAssignments(ctx, ids); err != nil {
		return nil, internalError(err, "failed to reset exam assignments")
	}

	rooms, err := s.rooms.ListByCapacity(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load rooms")
	}
	validated, err := s.exams.ListValidated(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load validated exams")
	}

	log.Info("timetable generation started",
		zap.Int("pending", len(pending)),
		zap.Int("rooms", len(rooms)),
		zap.Int("validated", len(validated)),
		zap.Time("period_start", period.Start),
		zap.Time("period_end", period.End),
	)

	planner := newTimetablePlanner(s.cfg.Planner, rooms)
	planner.seedValidated(validated, s.cfg.PreloadValidated)

	var failed []models.Conflict
	for _, exam := range pending {
		if exam.FormationID == "" || exam.ProfessorID == "" {
			failed = append(failed, newPlanningConflict(exam, fmt.Sprintf("exam for %s has no formation or professor assigned", exam.ModuleName)))
			log.Warn("exam missing formation or professor", zap.String("exam_id", exam.ID))
			continue
		}

		placed, ok := planner.place(exam, period.Start, period.End)
		if !ok {
			failed = append(failed, newPlanningConflict(exam, fmt.Sprintf("could not place exam for %s (formation %s)", exam.ModuleName, formationLabel(exam))))
			log.Warn("exam could not be placed", zap.String("exam_id", exam.ID), zap.String("module", exam.ModuleName))
			continue
		}

		if err := s.exams.Assign(ctx, placed.ExamID, placed.RoomID, placed.Start); err != nil {
			return nil, internalError(err, "failed to persist exam placement")
		}
		resp.Scheduled++
	}

	for i := range failed {
		if err := s.conflicts.Create(ctx, &failed[i]); err != nil {
			return nil, internalError(err, "failed to persist conflict")
		}
		resp.Details.Conflicts = append(resp.Details.Conflicts, toConflictDTO(failed[i]))
	}
	resp.Conflicts = len(failed)
	resp.Message = fmt.Sprintf("%d exams scheduled, %d conflicts", resp.Scheduled, resp.Conflicts)

	if s.cache != nil {
		if err := s.cache.InvalidateExams(ctx); err != nil {
			log.Warn("failed to invalidate exam cache", zap.Error(err))
		}
	}

	log.Info("timetable generation finished", zap.Int("scheduled", resp.Scheduled), zap.Int("conflicts", resp.Conflicts))
	return resp, nil
}

// resolvePeriod combines calendar dates with the daily start hour and the
// period end hour. Missing dates fall back to the configured window.
func (s *TimetableService) resolvePeriod(startDate, endDate string) (dto.PlanningPeriod, error) {
	loc := s.cfg.Planner.Location

	startRaw, startFromRequest := startDate, startDate != ""
	if !startFromRequest {
		startRaw = s.cfg.PeriodStart
	}
	endRaw, endFromRequest := endDate, endDate != ""
	if !endFromRequest {
		endRaw = s.cfg.PeriodEnd
	}

	startDay, err := time.ParseInLocation(config.DateLayout, startRaw, loc)
	if err != nil {
		return dto.PlanningPeriod{}, periodError(err, startFromRequest, "invalid startDate")
	}
	endDay, err := time.ParseInLocation(config.DateLayout, endRaw, loc)
	if err != nil {
		return dto.PlanningPeriod{}, periodError(err, endFromRequest, "invalid endDate")
	}
	if endDay.Before(startDay) {
		return dto.PlanningPeriod{}, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}

	period := dto.PlanningPeriod{
		Start: atHour(startDay, s.cfg.Planner.DailyStartHour),
		End:   atHour(endDay, s.cfg.PeriodEndHour),
	}
	if !period.End.After(period.Start) {
		return dto.PlanningPeriod{}, appErrors.Clone(appErrors.ErrValidation, "planning period is empty")
	}
	return period, nil
}

// ListExams returns the timetable for the filter, served from cache when possible.
func (s *TimetableService) ListExams(ctx context.Context, filter models.ExamFilter) ([]models.ExamListing, error) {
	key := ExamListKey(filter)
	if s.cache != nil {
		var cached []models.ExamListing
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	exams, err := s.exams.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list exams")
	}
	if exams == nil {
		exams = []models.ExamListing{}
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, exams, s.cfg.CacheTTL)
	}
	return exams, nil
}

// ListConflicts returns persisted conflicts newest first.
func (s *TimetableService) ListConflicts(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, error) {
	conflicts, err := s.conflicts.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list conflicts")
	}
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	return conflicts, nil
}

// ValidateDepartment locks in every placed exam of the department.
func (s *TimetableService) ValidateDepartment(ctx context.Context, departmentID string) (*dto.ValidateDepartmentResponse, error) {
	if departmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department is required")
	}
	count, err := s.exams.ValidateDepartment(ctx, departmentID)
	if err != nil {
		return nil, internalError(err, "failed to validate department exams")
	}
	if s.cache != nil {
		if err := s.cache.InvalidateExams(ctx); err != nil {
			s.logger.Warn("failed to invalidate exam cache", zap.Error(err))
		}
	}
	s.logger.Info("department timetable validated", zap.String("department_id", departmentID), zap.Int64("exams", count))
	return &dto.ValidateDepartmentResponse{DepartmentID: departmentID, Validated: count}, nil
}

func (s *TimetableService) observe(outcome string, scheduled, conflicts int, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveGeneration(outcome, scheduled, conflicts, s.now().Sub(started))
}

func newPlanningConflict(exam models.Exam, description string) models.Conflict {
	examID := exam.ID
	conflict := models.Conflict{
		Type:        models.ConflictPlanningFail,
		Severity:    models.SeverityHigh,
		Description: description,
		ModuleName:  exam.ModuleName,
		ExamID:      &examID,
	}
	if exam.FormationID != "" {
		formationID := exam.FormationID
		conflict.FormationID = &formationID
	}
	return conflict
}

func toConflictDTO(c models.Conflict) dto.TimetableConflict {
	out := dto.TimetableConflict{
		ModuleName:  c.ModuleName,
		Type:        string(c.Type),
		Severity:    string(c.Severity),
		Description: c.Description,
	}
	if c.ExamID != nil {
		out.ExamID = *c.ExamID
	}
	if c.FormationID != nil {
		out.FormationID = *c.FormationID
	}
	return out
}

func atHour(day time.Time, hour int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, day.Location())
}

func formationLabel(exam models.Exam) string {
	if exam.FormationName != "" {
		return exam.FormationName
	}
	return exam.FormationID
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func periodError(err error, fromRequest bool, message string) error {
	if fromRequest {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	return internalError(err, "invalid configured planning period")
}
