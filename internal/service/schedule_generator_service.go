package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
)

type shiftRequirementReader interface {
	ListRequirements(ctx context.Context, departmentID string, start, end time.Time) ([]models.Shift, error)
}

type employeeDirectory interface {
	ListActiveByDepartment(ctx context.Context, departmentID string) ([]models.Employee, error)
}

type availabilityReader interface {
	ListForRange(ctx context.Context, employeeIDs []string, start, end time.Time) ([]models.EmployeeAvailability, error)
}

type preferenceReader interface {
	ListForEmployees(ctx context.Context, employeeIDs []string) ([]models.EmployeePreference, error)
}

type fatigueReader interface {
	LatestForEmployees(ctx context.Context, employeeIDs []string) ([]models.FatigueScore, error)
}

type assignmentReader interface {
	OverlapSummary(ctx context.Context, exec sqlx.ExtContext, departmentID string, start, end time.Time) (models.AssignmentOverlap, error)
	ListWorkedShifts(ctx context.Context, exec sqlx.ExtContext, employeeIDs []string, start, end time.Time) ([]models.WorkedShift, error)
}

type weeklyStatsProvider interface {
	GetMany(ctx context.Context, employeeIDs []string, dates []time.Time) ([]models.WeeklyStats, error)
}

// ScheduleGeneratorConfig governs generator behaviour.
type ScheduleGeneratorConfig struct {
	StrictMode    bool
	OracleTimeout time.Duration
	MaxRangeDays  int
	Location      *time.Location
}

// ScheduleGeneratorService assembles weekly schedule previews.
type ScheduleGeneratorService struct {
	shifts       shiftRequirementReader
	employees    employeeDirectory
	availability availabilityReader
	preferences  preferenceReader
	fatigue      fatigueReader
	assignments  assignmentReader
	stats        weeklyStatsProvider
	oracle       SuggestionOracle
	store        *ProposalStore
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          ScheduleGeneratorConfig
	locks        *keyedMutex
	evaluator    ConstraintEvaluator
	now          func() time.Time
}

// NewScheduleGeneratorService wires generator dependencies. oracle may be nil.
func NewScheduleGeneratorService(
	shifts shiftRequirementReader,
	employees employeeDirectory,
	availability availabilityReader,
	preferences preferenceReader,
	fatigue fatigueReader,
	assignments assignmentReader,
	stats weeklyStatsProvider,
	oracle SuggestionOracle,
	store *ProposalStore,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleGeneratorConfig,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewProposalStore(0)
	}
	if cfg.OracleTimeout <= 0 {
		cfg.OracleTimeout = 20 * time.Second
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 31
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ScheduleGeneratorService{
		shifts:       shifts,
		employees:    employees,
		availability: availability,
		preferences:  preferences,
		fatigue:      fatigue,
		assignments:  assignments,
		stats:        stats,
		oracle:       oracle,
		store:        store,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
		locks:        newKeyedMutex(),
		now:          time.Now,
	}
}

// Exists reports committed assignments overlapping the department range. It has no side effects.
func (s *ScheduleGeneratorService) Exists(ctx context.Context, query dto.ScheduleExistsQuery) (*dto.ScheduleExistsResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule existence query")
	}
	start, end, err := parseDateRange(query.StartDate, query.EndDate, s.cfg.MaxRangeDays)
	if err != nil {
		return nil, err
	}
	overlap, err := s.assignments.OverlapSummary(ctx, nil, query.DepartmentID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing schedule")
	}
	resp := &dto.ScheduleExistsResponse{Exists: overlap.Count > 0, Count: overlap.Count}
	if overlap.FirstDate != nil {
		resp.FirstDate = overlap.FirstDate.Format(models.DateLayout)
	}
	if overlap.LastDate != nil {
		resp.LastDate = overlap.LastDate.Format(models.DateLayout)
	}
	return resp, nil
}

// Proposal returns a stored preview.
func (s *ScheduleGeneratorService) Proposal(ctx context.Context, id string) (*dto.GenerateScheduleResponse, error) {
	proposal, ok := s.store.get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	preview := proposal.Preview
	return &preview, nil
}

// Generate runs one generation pass for a department and inclusive date range.
// Nothing is persisted; the preview is kept in the proposal store for commit.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate, s.cfg.MaxRangeDays)
	if err != nil {
		return nil, err
	}
	asOf, err := resolveAsOf(req.AsOf, s.now(), s.cfg.Location)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(fmt.Sprintf("%s|%s|%s", req.DepartmentID, req.StartDate, req.EndDate))
	defer unlock()

	existing, err := s.Exists(ctx, dto.ScheduleExistsQuery{DepartmentID: req.DepartmentID, StartDate: req.StartDate, EndDate: req.EndDate})
	if err != nil {
		return nil, err
	}
	if existing.Exists {
		s.metrics.RecordGeneration("precondition_failed", 0, 0)
		existsErr := &models.ScheduleExistsError{DepartmentID: req.DepartmentID, Count: existing.Count}
		existsErr.FirstDate, _ = time.Parse(models.DateLayout, existing.FirstDate)
		existsErr.LastDate, _ = time.Parse(models.DateLayout, existing.LastDate)
		return nil, appErrors.Wrap(existsErr, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, existsErr.Error()).WithDetails(existsErr)
	}

	run := &generationRun{
		departmentID: req.DepartmentID,
		start:        start,
		end:          end,
		asOf:         asOf,
		strict:       s.cfg.StrictMode,
		useOracle:    s.oracle != nil,
		state:        NewRunState(),
		startedAt:    time.Now(),
	}
	if req.Strict != nil {
		run.strict = *req.Strict
	}
	if req.UseOracle != nil {
		run.useOracle = *req.UseOracle && s.oracle != nil
	}

	if err := s.loadRequirements(ctx, run); err != nil {
		s.metrics.RecordGeneration("error", 0, time.Since(run.startedAt))
		return nil, err
	}

	resp, err := s.assemble(ctx, run)
	if err != nil {
		partial := len(run.state.Assignments())
		s.logger.Warn("schedule generation aborted",
			zap.String("department_id", run.departmentID),
			zap.String("stage", run.stage.String()),
			zap.Int("partial_assignments", partial),
			zap.Error(err),
		)
		s.metrics.RecordGeneration("failed", 0, time.Since(run.startedAt))
		return &dto.GenerateScheduleResponse{
			Success:      false,
			Message:      err.Error(),
			DepartmentID: run.departmentID,
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			Strict:       run.strict,
			AsOf:         asOf.Format(models.DateLayout),
			Assignments:  []dto.EnrichedAssignment{},
			Unfilled:     []dto.UnfilledPosition{},
			PartialCount: partial,
		}, nil
	}

	s.metrics.RecordGeneration("success", resp.UnfilledCount, time.Since(run.startedAt))
	return resp, nil
}

// loadRequirements performs every storage read of the run. Failures here are structural.
func (s *ScheduleGeneratorService) loadRequirements(ctx context.Context, run *generationRun) error {
	shifts, err := s.shifts.ListRequirements(ctx, run.departmentID, run.start, run.end)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift requirements")
	}
	employees, err := s.employees.ListActiveByDepartment(ctx, run.departmentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}

	ids := make([]string, 0, len(employees))
	profiles := make(map[string]*EmployeeProfile, len(employees))
	for _, emp := range employees {
		ids = append(ids, emp.ID)
		profiles[emp.ID] = &EmployeeProfile{Employee: emp}
	}

	if len(ids) > 0 {
		availability, err := s.availability.ListForRange(ctx, ids, run.start, run.end)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
		}
		for _, a := range availability {
			p := profiles[a.EmployeeID]
			if p == nil {
				continue
			}
			if p.Availability == nil {
				p.Availability = make(map[string]models.EmployeeAvailability)
			}
			p.Availability[a.Date.Format(models.DateLayout)] = a
		}

		prefs, err := s.preferences.ListForEmployees(ctx, ids)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
		}
		var withPrefs []string
		for i := range prefs {
			if p := profiles[prefs[i].EmployeeID]; p != nil {
				pref := prefs[i]
				p.Preference = &pref
				withPrefs = append(withPrefs, p.ID)
			}
		}

		scores, err := s.fatigue.LatestForEmployees(ctx, ids)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fatigue scores")
		}
		for i := range scores {
			if p := profiles[scores[i].EmployeeID]; p != nil {
				score := scores[i]
				p.Fatigue = &score
			}
		}

		worked, err := s.assignments.ListWorkedShifts(ctx, nil, ids, run.start, run.end)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing assignments")
		}
		for _, w := range worked {
			run.state.AddPersisted(w.EmployeeID, w.ShiftDate.Format(models.DateLayout))
		}

		if len(withPrefs) > 0 && s.stats != nil {
			dates := make([]time.Time, 0, len(shifts))
			for _, shift := range shifts {
				dates = append(dates, shift.Date)
			}
			stats, err := s.stats.GetMany(ctx, withPrefs, dates)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly statistics")
			}
			for _, st := range stats {
				run.state.SetWeeklyStats(st)
			}
		}
	}

	run.shifts = shifts
	run.profiles = profiles
	run.profileList = make([]*EmployeeProfile, 0, len(profiles))
	for _, id := range ids {
		run.profileList = append(run.profileList, profiles[id])
	}
	return nil
}

// assemble drives the run from Idle to Assembled once requirements are loaded.
func (s *ScheduleGeneratorService) assemble(ctx context.Context, run *generationRun) (*dto.GenerateScheduleResponse, error) {
	if err := run.advance(ctx, stageRequirementsLoaded); err != nil {
		return nil, err
	}
	for _, shift := range run.shifts {
		if _, err := shift.Duration(); err != nil {
			return nil, fmt.Errorf("shift %s: %w", shift.ID, err)
		}
	}
	run.shiftIndex = make(map[string]models.Shift, len(run.shifts))
	for _, shift := range run.shifts {
		run.shiftIndex[shift.ID] = shift
	}

	run.pool = CandidatePoolBuilder{evaluator: s.evaluator}.Build(run.shifts, run.profileList, run.state)
	if err := run.advance(ctx, stagePoolBuilt); err != nil {
		return nil, err
	}

	s.consultOracle(ctx, run)
	if err := run.advance(ctx, stageOracleApplied); err != nil {
		return nil, err
	}

	greedy := FairnessGreedyFiller{evaluator: s.evaluator}.Fill(run.shifts, run.profiles, run.pool, run.state, run.strict)
	run.greedy = greedy
	if err := run.advance(ctx, stageGreedyFilled); err != nil {
		return nil, err
	}

	resp := s.buildPreview(run)
	if err := run.advance(ctx, stageAssembled); err != nil {
		return nil, err
	}

	if len(resp.Assignments) > 0 || len(resp.Unfilled) > 0 {
		proposal := scheduleProposal{
			ProposalID:   uuid.NewString(),
			DepartmentID: run.departmentID,
			StartDate:    run.start,
			EndDate:      run.end,
			Strict:       run.strict,
			AsOf:         run.asOf,
			RequestedAt:  s.store.now(),
		}
		for _, a := range run.state.Assignments() {
			proposal.Drafts = append(proposal.Drafts, a.Draft)
		}
		resp.ProposalID = proposal.ProposalID
		resp.ExpiresAt = proposal.RequestedAt.Add(s.store.TTL()).UTC().Format(time.RFC3339)
		proposal.Preview = *resp
		s.store.save(proposal)
	}

	s.logger.Info("schedule generated",
		zap.String("department_id", run.departmentID),
		zap.String("proposal_id", resp.ProposalID),
		zap.Int("assignments", len(resp.Assignments)),
		zap.Int("unfilled", resp.UnfilledCount),
		zap.Int("oracle_accepted", resp.Stats.OracleAccepted),
	)
	return resp, nil
}

func (s *ScheduleGeneratorService) consultOracle(ctx context.Context, run *generationRun) {
	if !run.useOracle {
		s.metrics.RecordOracle(OracleOutcomeDisabled, 0, 0)
		return
	}
	req := buildOracleRequest(run.shifts, run.profiles, run.pool, run.state)
	if len(req.Shifts) == 0 {
		s.metrics.RecordOracle(OracleOutcomeEmpty, 0, 0)
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.OracleTimeout)
	defer cancel()
	suggestions, err := s.oracle.Suggest(callCtx, req)
	if err != nil {
		s.logger.Warn("suggestion oracle degraded, continuing with greedy fill",
			zap.String("department_id", run.departmentID),
			zap.Error(err),
		)
		s.metrics.RecordOracle(OracleOutcomeDegraded, 0, 0)
		return
	}
	if len(suggestions) == 0 {
		s.metrics.RecordOracle(OracleOutcomeEmpty, 0, 0)
		return
	}

	result := applySuggestions(suggestions, run.shiftIndex, run.profiles, run.pool, run.state, s.evaluator, run.strict)
	run.oracleSuggested = len(suggestions)
	run.oracle = result
	s.metrics.RecordOracle(OracleOutcomeOK, result.Accepted, result.RejectedTotal())
	if result.RejectedTotal() > 0 {
		s.logger.Debug("oracle suggestions rejected",
			zap.String("department_id", run.departmentID),
			zap.Any("reasons", result.Rejected),
		)
	}
}

func (s *ScheduleGeneratorService) buildPreview(run *generationRun) *dto.GenerateScheduleResponse {
	planned := run.state.Assignments()
	enriched := make([]dto.EnrichedAssignment, 0, len(planned))
	employees := make(map[string]struct{})
	for _, p := range planned {
		shift := run.shiftIndex[p.Draft.ShiftID]
		position, _ := shift.Position(p.Draft.PositionID)
		item := dto.EnrichedAssignment{
			AssignmentDraft: p.Draft,
			PositionName:    position.PositionName,
			Date:            shift.DateKey(),
			StartTime:       shift.StartTime,
			EndTime:         shift.EndTime,
			Category:        shift.Category,
			DurationHours:   p.Hours,
			Source:          p.Source,
		}
		if profile := run.profiles[p.Draft.EmployeeID]; profile != nil {
			item.EmployeeName = profile.FullName
		}
		enriched = append(enriched, item)
		employees[p.Draft.EmployeeID] = struct{}{}
	}
	sort.SliceStable(enriched, func(i, j int) bool {
		a, b := enriched[i], enriched[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		if a.ShiftID != b.ShiftID {
			return a.ShiftID < b.ShiftID
		}
		return a.PositionID < b.PositionID
	})

	unfilled := run.greedy.Unfilled
	if unfilled == nil {
		unfilled = []dto.UnfilledPosition{}
	}
	missing := 0
	for _, u := range unfilled {
		missing += u.Missing
	}
	slots := 0
	for _, shift := range run.shifts {
		slots += len(shift.Positions)
	}

	resp := &dto.GenerateScheduleResponse{
		Success:       true,
		DepartmentID:  run.departmentID,
		StartDate:     run.start.Format(models.DateLayout),
		EndDate:       run.end.Format(models.DateLayout),
		Strict:        run.strict,
		AsOf:          run.asOf.Format(models.DateLayout),
		Assignments:   enriched,
		Unfilled:      unfilled,
		UnfilledCount: len(unfilled),
		Stats: dto.GenerationStats{
			ShiftCount:        len(run.shifts),
			SlotCount:         slots,
			CandidateCount:    run.pool.Size(),
			OracleSuggested:   run.oracleSuggested,
			OracleAccepted:    run.oracle.Accepted,
			OracleRejected:    run.oracle.RejectedTotal(),
			GreedyAssigned:    run.greedy.Assigned,
			SoftViolations:    run.greedy.SoftViolations,
			DurationMillis:    int(time.Since(run.startedAt).Milliseconds()),
			EmployeesAssigned: len(employees),
		},
	}
	switch {
	case len(run.shifts) == 0:
		resp.Message = "no shifts require staffing in the requested range"
	case len(unfilled) > 0:
		resp.Message = fmt.Sprintf("%d positions could not be fully staffed (%d slots missing)", len(unfilled), missing)
	default:
		resp.Message = "all positions filled"
	}
	return resp
}

// --- run stages ---

type runStage int

const (
	stageIdle runStage = iota
	stageRequirementsLoaded
	stagePoolBuilt
	stageOracleApplied
	stageGreedyFilled
	stageAssembled
)

func (s runStage) String() string {
	switch s {
	case stageIdle:
		return "idle"
	case stageRequirementsLoaded:
		return "requirements_loaded"
	case stagePoolBuilt:
		return "pool_built"
	case stageOracleApplied:
		return "oracle_applied"
	case stageGreedyFilled:
		return "greedy_filled"
	case stageAssembled:
		return "assembled"
	default:
		return "unknown"
	}
}

type generationRun struct {
	departmentID string
	start        time.Time
	end          time.Time
	asOf         time.Time
	strict       bool
	useOracle    bool
	startedAt    time.Time

	stage           runStage
	shifts          []models.Shift
	shiftIndex      map[string]models.Shift
	profiles        map[string]*EmployeeProfile
	profileList     []*EmployeeProfile
	pool            CandidatePool
	state           *RunState
	oracleSuggested int
	oracle          OracleApplyResult
	greedy          GreedyResult
}

// advance moves the run one stage forward. Stages never repeat or go back,
// and a cancelled context stops the run between stages.
func (r *generationRun) advance(ctx context.Context, next runStage) error {
	if next != r.stage+1 {
		return fmt.Errorf("invalid stage transition %s -> %s", r.stage, next)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run cancelled before %s: %w", next, err)
	}
	r.stage = next
	return nil
}

func parseDateRange(rawStart, rawEnd string, maxDays int) (time.Time, time.Time, error) {
	start, err := time.Parse(models.DateLayout, rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse(models.DateLayout, rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}
	if maxDays > 0 && int(end.Sub(start).Hours()/24)+1 > maxDays {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date range must not exceed %d days", maxDays))
	}
	return start, end, nil
}

func resolveAsOf(raw string, now time.Time, loc *time.Location) (time.Time, error) {
	if raw != "" {
		asOf, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "asOf must be YYYY-MM-DD")
		}
		return asOf, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC), nil
}
