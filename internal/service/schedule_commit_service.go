package service

import (
	"context"
	"database/sql"
	"errors"
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

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type shiftLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Shift, error)
}

type shiftStatusRecomputer interface {
	RecomputeStatus(ctx context.Context, exec sqlx.ExtContext, shiftIDs []string) (int, error)
}

type employeeLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Employee, error)
}

type assignmentWriter interface {
	LockDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) error
	OverlapSummary(ctx context.Context, exec sqlx.ExtContext, departmentID string, start, end time.Time) (models.AssignmentOverlap, error)
	ListWorkedShifts(ctx context.Context, exec sqlx.ExtContext, employeeIDs []string, start, end time.Time) ([]models.WorkedShift, error)
	BulkInsert(ctx context.Context, exec sqlx.ExtContext, assignments []models.ShiftAssignment) error
	CompletePast(ctx context.Context, departmentID string, asOf time.Time) (int, error)
}

type weeklyStatsInvalidator interface {
	Invalidate(ctx context.Context, employeeID string, date time.Time) error
}

// ScheduleNotifier delivers post-commit messages. Failures never undo a commit.
type ScheduleNotifier interface {
	Notify(ctx context.Context, notification models.Notification) error
}

// ScheduleCommitConfig governs commit normalisation.
type ScheduleCommitConfig struct {
	OvertimeShiftThreshold int
	Location               *time.Location
}

// ScheduleCommitService persists reviewed proposals atomically.
type ScheduleCommitService struct {
	tx          txProvider
	shifts      shiftLookup
	statuses    shiftStatusRecomputer
	employees   employeeLookup
	assignments assignmentWriter
	stats       weeklyStatsInvalidator
	notifier    ScheduleNotifier
	store       *ProposalStore
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         ScheduleCommitConfig
	now         func() time.Time
}

// NewScheduleCommitService wires commit dependencies. stats and notifier may be nil.
func NewScheduleCommitService(
	tx txProvider,
	shifts shiftLookup,
	statuses shiftStatusRecomputer,
	employees employeeLookup,
	assignments assignmentWriter,
	stats weeklyStatsInvalidator,
	notifier ScheduleNotifier,
	store *ProposalStore,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleCommitConfig,
) *ScheduleCommitService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewProposalStore(0)
	}
	if cfg.OvertimeShiftThreshold <= 0 {
		cfg.OvertimeShiftThreshold = 5
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ScheduleCommitService{
		tx:          tx,
		shifts:      shifts,
		statuses:    statuses,
		employees:   employees,
		assignments: assignments,
		stats:       stats,
		notifier:    notifier,
		store:       store,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Commit validates and persists a stored proposal, optionally replaced by hand-edited drafts.
func (s *ScheduleCommitService) Commit(ctx context.Context, req dto.CommitScheduleRequest) (*dto.CommitScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid commit payload")
	}
	asOf, err := resolveAsOf(req.AsOf, s.now(), s.cfg.Location)
	if err != nil {
		return nil, err
	}
	proposal, ok := s.store.get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	// The preview was reviewed against the generation reference date.
	if req.AsOf == "" && !proposal.AsOf.IsZero() {
		asOf = proposal.AsOf
	}

	drafts := proposal.Drafts
	if len(req.Assignments) > 0 {
		drafts = req.Assignments
	}
	if len(drafts) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "proposal contains no assignments")
	}

	shifts, employees, err := s.validateDrafts(ctx, proposal, drafts)
	if err != nil {
		s.metrics.RecordCommit("rejected", 0)
		return nil, err
	}

	resp, affected, err := s.persist(ctx, proposal, drafts, shifts, asOf)
	if err != nil {
		s.metrics.RecordCommit("failed", 0)
		return nil, err
	}

	s.store.delete(proposal.ProposalID)
	s.invalidateStats(ctx, affected)
	resp.EmployeesNotified = s.notify(ctx, proposal, drafts, shifts, employees)
	s.metrics.RecordCommit("success", resp.Inserted)

	s.logger.Info("schedule committed",
		zap.String("proposal_id", proposal.ProposalID),
		zap.String("department_id", proposal.DepartmentID),
		zap.Int("inserted", resp.Inserted),
		zap.Int("overtime", resp.Overtime),
		zap.Int("shifts_updated", resp.ShiftsUpdated),
	)
	return resp, nil
}

// CompletePast transitions assignments dated before asOf to completed. An empty departmentID sweeps every department.
func (s *ScheduleCommitService) CompletePast(ctx context.Context, departmentID string, req dto.CompletePastRequest) (*dto.CompletePastResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid completion payload")
	}
	asOf, err := resolveAsOf(req.AsOf, s.now(), s.cfg.Location)
	if err != nil {
		return nil, err
	}
	completed, err := s.assignments.CompletePast(ctx, departmentID, asOf)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete past assignments")
	}
	s.logger.Info("past assignments completed", zap.String("department_id", departmentID), zap.Int("completed", completed))
	return &dto.CompletePastResponse{Completed: completed}, nil
}

func (s *ScheduleCommitService) validateDrafts(ctx context.Context, proposal scheduleProposal, drafts []dto.AssignmentDraft) (map[string]models.Shift, map[string]models.Employee, error) {
	shiftIDs := make([]string, 0, len(drafts))
	employeeIDs := make([]string, 0, len(drafts))
	seenShift := make(map[string]struct{})
	seenEmployee := make(map[string]struct{})
	for _, d := range drafts {
		if _, ok := seenShift[d.ShiftID]; !ok {
			seenShift[d.ShiftID] = struct{}{}
			shiftIDs = append(shiftIDs, d.ShiftID)
		}
		if _, ok := seenEmployee[d.EmployeeID]; !ok {
			seenEmployee[d.EmployeeID] = struct{}{}
			employeeIDs = append(employeeIDs, d.EmployeeID)
		}
	}

	shiftList, err := s.shifts.FindByIDs(ctx, shiftIDs)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shifts")
	}
	shifts := make(map[string]models.Shift, len(shiftList))
	for _, sh := range shiftList {
		shifts[sh.ID] = sh
	}
	employeeList, err := s.employees.FindByIDs(ctx, employeeIDs)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	employees := make(map[string]models.Employee, len(employeeList))
	for _, e := range employeeList {
		employees[e.ID] = e
	}

	perDate := make(map[string]string)
	perSlot := make(map[slotKey]int)
	for _, d := range drafts {
		shift, ok := shifts[d.ShiftID]
		if !ok {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("shift %s not found", d.ShiftID))
		}
		if shift.DepartmentID != proposal.DepartmentID || shift.Date.Before(proposal.StartDate) || shift.Date.After(proposal.EndDate) {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("shift %s is outside the proposal range", d.ShiftID))
		}
		position, ok := shift.Position(d.PositionID)
		if !ok {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("position %s is not staffed on shift %s", d.PositionID, d.ShiftID))
		}
		emp, ok := employees[d.EmployeeID]
		if !ok || !emp.IsActive {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("employee %s is not active", d.EmployeeID))
		}
		if !emp.Qualifies(d.PositionID) {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("employee %s is not qualified for position %s", d.EmployeeID, d.PositionID))
		}
		dateKey := d.EmployeeID + "|" + shift.DateKey()
		if _, taken := perDate[dateKey]; taken {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("employee %s is assigned twice on %s", d.EmployeeID, shift.DateKey()))
		}
		perDate[dateKey] = d.ShiftID
		slot := slotKey{ShiftID: d.ShiftID, PositionID: d.PositionID}
		perSlot[slot]++
		if perSlot[slot] > position.RequiredCount {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("position %s on shift %s exceeds its required count", d.PositionID, d.ShiftID))
		}
	}
	return shifts, employees, nil
}

type affectedWeek struct {
	employeeID string
	date       time.Time
}

func (s *ScheduleCommitService) persist(ctx context.Context, proposal scheduleProposal, drafts []dto.AssignmentDraft, shifts map[string]models.Shift, asOf time.Time) (resp *dto.CommitScheduleResponse, affected []affectedWeek, err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			s.logger.Error("schedule commit rolled back", zap.String("proposal_id", proposal.ProposalID), zap.Error(err))
		}
	}()

	if err = s.assignments.LockDepartment(ctx, tx, proposal.DepartmentID); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock department")
	}
	overlap, err := s.assignments.OverlapSummary(ctx, tx, proposal.DepartmentID, proposal.StartDate, proposal.EndDate)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing schedule")
	}
	if overlap.Count > 0 {
		existsErr := &models.ScheduleExistsError{DepartmentID: proposal.DepartmentID, Count: overlap.Count}
		if overlap.FirstDate != nil {
			existsErr.FirstDate = *overlap.FirstDate
		}
		if overlap.LastDate != nil {
			existsErr.LastDate = *overlap.LastDate
		}
		err = appErrors.Wrap(existsErr, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, existsErr.Error()).WithDetails(existsErr)
		return nil, nil, err
	}

	employeeIDs := make([]string, 0, len(drafts))
	seen := make(map[string]struct{})
	for _, d := range drafts {
		if _, ok := seen[d.EmployeeID]; !ok {
			seen[d.EmployeeID] = struct{}{}
			employeeIDs = append(employeeIDs, d.EmployeeID)
		}
	}
	windowStart := models.ISOWeekStart(proposal.StartDate)
	windowEnd := models.ISOWeekStart(proposal.EndDate).AddDate(0, 0, 6)
	worked, err := s.assignments.ListWorkedShifts(ctx, tx, employeeIDs, windowStart, windowEnd)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing assignments")
	}

	rows, overtime, err := s.normalize(drafts, shifts, worked, asOf)
	if err != nil {
		return nil, nil, err
	}

	if err = s.assignments.BulkInsert(ctx, tx, rows); err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "an assignment in this proposal was committed concurrently")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert assignments")
	}

	shiftIDs := make([]string, 0, len(shifts))
	for id := range shifts {
		shiftIDs = append(shiftIDs, id)
	}
	sort.Strings(shiftIDs)
	updated, err := s.statuses.RecomputeStatus(ctx, tx, shiftIDs)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update shift status")
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule")
	}

	for _, row := range rows {
		affected = append(affected, affectedWeek{employeeID: row.EmployeeID, date: shifts[row.ShiftID].Date})
	}
	return &dto.CommitScheduleResponse{
		ProposalID:    proposal.ProposalID,
		Inserted:      len(rows),
		Overtime:      overtime,
		ShiftsUpdated: updated,
	}, affected, nil
}

// normalize turns drafts into rows, processing them by date so overtime follows the order shifts are worked.
func (s *ScheduleCommitService) normalize(drafts []dto.AssignmentDraft, shifts map[string]models.Shift, worked []models.WorkedShift, asOf time.Time) ([]models.ShiftAssignment, int, error) {
	weekly := make(map[weekKey]int)
	taken := make(map[string]struct{})
	for _, w := range worked {
		weekly[weekKey{EmployeeID: w.EmployeeID, WeekStart: models.ISOWeekStart(w.ShiftDate).Format(models.DateLayout)}]++
		taken[w.EmployeeID+"|"+w.ShiftDate.Format(models.DateLayout)] = struct{}{}
	}

	ordered := make([]dto.AssignmentDraft, len(drafts))
	copy(ordered, drafts)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := shifts[ordered[i].ShiftID], shifts[ordered[j].ShiftID]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.StartTime < b.StartTime
	})

	now := s.now().UTC()
	rows := make([]models.ShiftAssignment, 0, len(ordered))
	overtime := 0
	for _, d := range ordered {
		shift := shifts[d.ShiftID]
		if _, clash := taken[d.EmployeeID+"|"+shift.DateKey()]; clash {
			return nil, 0, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("employee %s already works on %s", d.EmployeeID, shift.DateKey()))
		}

		wk := weekKey{EmployeeID: d.EmployeeID, WeekStart: models.ISOWeekStart(shift.Date).Format(models.DateLayout)}
		kind := models.AssignmentKindRegular
		if weekly[wk] >= s.cfg.OvertimeShiftThreshold {
			kind = models.AssignmentKindOvertime
			overtime++
		}
		weekly[wk]++

		status := d.Status
		if status == "" {
			status = models.AssignmentStatusAssigned
		}
		if shift.Date.Before(asOf) {
			status = models.AssignmentStatusCompleted
		}

		rows = append(rows, models.ShiftAssignment{
			ID:         uuid.NewString(),
			ShiftID:    d.ShiftID,
			EmployeeID: d.EmployeeID,
			PositionID: d.PositionID,
			Kind:       kind,
			Status:     status,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return rows, overtime, nil
}

func (s *ScheduleCommitService) invalidateStats(ctx context.Context, affected []affectedWeek) {
	if s.stats == nil {
		return
	}
	// The latest date of a week reaches furthest into the lookback windows of later weeks.
	latest := make(map[weekKey]affectedWeek)
	order := make([]weekKey, 0, len(affected))
	for _, a := range affected {
		key := weekKey{EmployeeID: a.employeeID, WeekStart: models.ISOWeekStart(a.date).Format(models.DateLayout)}
		seen, ok := latest[key]
		if !ok {
			order = append(order, key)
		}
		if !ok || a.date.After(seen.date) {
			latest[key] = a
		}
	}
	for _, key := range order {
		a := latest[key]
		if err := s.stats.Invalidate(ctx, a.employeeID, a.date); err != nil {
			s.logger.Warn("failed to invalidate weekly stats", zap.String("employee_id", a.employeeID), zap.Error(err))
		}
	}
}

// notify sends one schedule_published message per employee covering their committed dates.
func (s *ScheduleCommitService) notify(ctx context.Context, proposal scheduleProposal, drafts []dto.AssignmentDraft, shifts map[string]models.Shift, employees map[string]models.Employee) int {
	if s.notifier == nil {
		return 0
	}
	type span struct{ first, last time.Time }
	spans := make(map[string]*span)
	order := make([]string, 0)
	for _, d := range drafts {
		date := shifts[d.ShiftID].Date
		sp, ok := spans[d.EmployeeID]
		if !ok {
			spans[d.EmployeeID] = &span{first: date, last: date}
			order = append(order, d.EmployeeID)
			continue
		}
		if date.Before(sp.first) {
			sp.first = date
		}
		if date.After(sp.last) {
			sp.last = date
		}
	}
	sort.Strings(order)

	sent := 0
	for _, employeeID := range order {
		sp := spans[employeeID]
		first, last := sp.first.Format(models.DateLayout), sp.last.Format(models.DateLayout)
		notification := models.Notification{
			ID:         uuid.NewString(),
			EmployeeID: employeeID,
			Email:      employees[employeeID].Email,
			FullName:   employees[employeeID].FullName,
			Type:       models.NotificationTypeSchedulePublished,
			Title:      "New schedule published",
			Message:    fmt.Sprintf("Your schedule from %s to %s has been published.", first, last),
			Meta: map[string]string{
				"proposal_id":   proposal.ProposalID,
				"department_id": proposal.DepartmentID,
				"first_date":    first,
				"last_date":     last,
			},
			CreatedAt: s.now().UTC(),
		}
		if err := s.notifier.Notify(ctx, notification); err != nil {
			s.logger.Warn("failed to dispatch schedule notification", zap.String("employee_id", employeeID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}
