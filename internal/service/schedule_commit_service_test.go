package service

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
	"github.com/noah-isme/shift-scheduler-api/internal/repository"
	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
)

const (
	lockSQL      = `SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`
	overlapSQL   = `SELECT COUNT\(a.id\) AS count`
	workedSQL    = `SELECT a.employee_id, a.shift_id, s.shift_date`
	insertSQL    = `INSERT INTO shift_assignments`
	recomputeSQL = `UPDATE shifts s SET status`
)

func TestScheduleCommitServiceCommitPersistsAtomically(t *testing.T) {
	f := newCommitFixture(t, commitFixtureConfig{})
	f.saveProposal("p1", day(0), day(6),
		dto.AssignmentDraft{ShiftID: "s1", EmployeeID: "a", PositionID: "nurse"},
		dto.AssignmentDraft{ShiftID: "s2", EmployeeID: "b", PositionID: "nurse"},
	)

	f.mock.ExpectBegin()
	f.mock.ExpectExec(lockSQL).WithArgs("dept-1").WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectQuery(overlapSQL).WillReturnRows(sqlmock.NewRows([]string{"count", "first_date", "last_date"}).AddRow(0, nil, nil))
	f.mock.ExpectQuery(workedSQL).WillReturnRows(sqlmock.NewRows([]string{"employee_id", "shift_id", "shift_date", "start_time", "end_time"}))
	f.mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 2))
	f.mock.ExpectExec(recomputeSQL).WillReturnResult(sqlmock.NewResult(0, 2))
	f.mock.ExpectCommit()

	resp, err := f.service.Commit(context.Background(), dto.CommitScheduleRequest{ProposalID: "p1", AsOf: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, &dto.CommitScheduleResponse{ProposalID: "p1", Inserted: 2, ShiftsUpdated: 2, EmployeesNotified: 2}, resp)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	_, stillStored := f.service.store.get("p1")
	assert.False(t, stillStored)

	require.Len(t, f.notifier.sent, 2)
	first := f.notifier.sent[0]
	assert.Equal(t, "a", first.EmployeeID)
	assert.Equal(t, "a@example.com", first.Email)
	assert.Equal(t, models.NotificationTypeSchedulePublished, first.Type)
	assert.Equal(t, "Your schedule from 2024-03-04 to 2024-03-04 has been published.", first.Message)
	assert.Equal(t, "p1", first.Meta["proposal_id"])
	assert.Equal(t, "b", f.notifier.sent[1].EmployeeID)

	assert.ElementsMatch(t, []string{"a|2024-03-04", "b|2024-03-05"}, f.stats.invalidated)
}

func TestScheduleCommitServiceNotifiesEachEmployeeOnce(t *testing.T) {
	f := newCommitFixture(t, commitFixtureConfig{})
	f.saveProposal("p1", day(0), day(6),
		dto.AssignmentDraft{ShiftID: "s3", EmployeeID: "a", PositionID: "nurse"},
		dto.AssignmentDraft{ShiftID: "s1", EmployeeID: "a", PositionID: "nurse"},
	)
	f.expectCleanCommit(2)

	resp, err := f.service.Commit(context.Background(), dto.CommitScheduleRequest{ProposalID: "p1", AsOf: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Inserted)
	assert.Equal(t, 1, resp.EmployeesNotified)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "a", f.notifier.sent[0].EmployeeID)
	assert.Equal(t, "Your schedule from 2024-03-04 to 2024-03-06 has been published.", f.notifier.sent[0].Message)
	assert.Equal(t, "2024-03-04", f.notifier.sent[0].Meta["first_date"])
	assert.Equal(t, "2024-03-06", f.notifier.sent[0].Meta["last_date"])
}

func TestScheduleCommitServiceKeepsCommitWhenNotifyFails(t *testing.T) {
	f := newCommitFixture(t, commitFixtureConfig{})
	f.notifier.err = errors.New("broker down")
	f.saveProposal("p1", day(0), day(6),
		dto.AssignmentDraft{ShiftID: "s1", EmployeeID: "a", PositionID: "nurse"},
		dto.AssignmentDraft{ShiftID: "s2", EmployeeID: "b", PositionID: "nurse"},
	)
	f.expectCleanCommit(2)

	resp, err := f.service.Commit(context.Background(), dto.CommitScheduleRequest{ProposalID: "p1", AsOf: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Inserted)
	assert.Equal(t, 0, resp.EmployeesNotified)
	assert.NoError(t, f.mock.ExpectationsWereMet())
	assert.Empty(t, f.notifier.sent)
	assert.ElementsMatch(t, []string{"a|2024-03-04", "b|2024-03-05"}, f.stats.invalidated)
}

func TestScheduleCommitServiceInvalidatesFromLatestDateOfWeek(t *testing.T) {
	f := newCommitFixture(t, commitFixtureConfig{})
	f.saveProposal("p1", day(0), day(6),
		dto.AssignmentDraft{ShiftID: "s1", EmployeeID: "a", PositionID: "nurse"},
		dto.AssignmentDraft{ShiftID: "s7", EmployeeID: "a", PositionID: "nurse"},
		dto.AssignmentDraft{ShiftID: "s3", EmployeeID: "a", PositionID: "nurse"},
	)
	f.expectCleanCommit(3)

	_, err := f.service.Commit(context.Background(), dto.CommitScheduleRequest{ProposalID: "p1", AsOf: "2024-03-01"})
	require.NoError(t, err)
	assert.NoError(t, f.mock.ExpectationsWereMet())
	assert.Equal(t, []string{"a|2024-03-10"}, f.stats.invalidated)
}

func TestScheduleCommitServiceNormalisesOvertimeAndCompleted(t *testing.T) {
	f := newCommitFixture(t, commitFixtureConfig{overtimeThreshold: 2})
	f.saveProposal("p1", day(2), day(3),
		dto.AssignmentDraft{ShiftID: "s4", EmployeeID: "b", PositionID: "nurse"},
		dto.AssignmentDraft{ShiftID: "s3", EmployeeID: "a", PositionID: "nurse"},
	)

	f.mock.ExpectBegin()
	f.mock.ExpectExec(lockSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectQuery(overlapSQL).WillReturnRows(sqlmock.NewRows([]string{"count", "first_date", "last_date"}).AddRow(0, nil, nil))
	f.mock.ExpectQuery(workedSQL).WillReturnRows(sqlmock.NewRows([]string{"employee_id", "shift_id", "shift_date", "start_time", "end_time"}).
		AddRow("a", "old-1", day(0), "07:00", "15:00").
		AddRow("a", "old-2", day(1), "07:00", "15:00"))
	f.mock.ExpectExec(insertSQL).
		WithArgs(
			sqlmock.AnyArg(), "s3", "a", "nurse", "overtime", "completed", sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), "s4", "b", "nurse", "regular", "assigned", sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	f.mock.ExpectExec(recomputeSQL).WillReturnResult(sqlmock.NewResult(0, 2))
	f.mock.ExpectCommit()

	resp, err := f.service.Commit(context.Background(), dto.CommitScheduleRequest{ProposalID: "p1", AsOf: "2024-03-07"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Inserted)
	assert.Equal(t, 1, resp.Overtime)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestScheduleCommitServiceDefaultsToProposalAsOf(t *testing.T) {
	f := newCommitFixture(t, commitFixtureConfig{})
	f.service.store.save(scheduleProposal{
		ProposalID:   "p1",
		DepartmentID: "dept-1",
		StartDate:    day(0),
		EndDate:      day(6),
		AsOf:         day(3),
		Drafts: []dto.AssignmentDraft{
			{ShiftID: "s1", EmployeeID: "a", PositionID: "nurse"},
			{ShiftID: "s4", EmployeeID: "b", PositionID: "nurse"},
		},
		RequestedAt: time.Now(),
	})

	f.mock.ExpectBegin()
	f.mock.ExpectExec(lockSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectQuery(overlapSQL).WillReturnRows(sqlmock.NewRows([]string{"count", "first_date", "last_date"}).AddRow(0, nil, nil))
	f.mock.ExpectQuery(workedSQL).WillReturnRows(sqlmock.NewRows([]string{"employee_id", "shift_id", "shift_date", "start_time", "end_time"}))
	f.mock.ExpectExec(insertSQL).
		WithArgs(
			sqlmock.AnyArg(), "s1", "a", "nurse", "regular", "completed", sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), "s4", "b", "nurse", "regular", "assigned", sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	f.mock.ExpectExec(recomputeSQL).WillReturnResult(sqlmock.NewResult(0, 2))
	f.mock.ExpectCommit()

	_, err := f.service.Commit(context.Background(), dto.CommitScheduleRequest{ProposalID: "p1"})
	require.NoError(t, err)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestScheduleCommitServiceRollsBackOnFailure(t *testing.T) {
	f := newCommitFixture(t, commitFixtureConfig{})
	f.saveProposal("p1", day(0), day(6), dto.AssignmentDraft{ShiftID: "s1", EmployeeID: "a", PositionID: "nurse"})

	f.mock.ExpectBegin()
	f.mock.ExpectExec(lockSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectQuery(overlapSQL).WillReturnRows(sqlmock.NewRows([]string{"count", "first_date", "last_date"}).AddRow(0, nil, nil))
	f.mock.ExpectQuery(workedSQL).WillReturnRows(sqlmock.NewRows([]string{"employee_id", "shift_id", "shift_date", "start_time", "end_time"}))
	f.mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(recomputeSQL).WillReturnError(errors.New("deadlock detected"))
	f.mock.ExpectRollback()

	_, err := f.service.Commit(context.Background(), dto.CommitScheduleRequest{ProposalID: "p1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	assert.Empty(t, f.notifier.sent)
	assert.Empty(t, f.stats.invalidated)
	_, stillStored := f.service.store.get("p1")
	assert.True(t, stillStored, "a failed commit keeps the proposal for retry")
}

func TestScheduleCommitServiceRefusesOverlap(t *testing.T) {
	f := newCommitFixture(t, commitFixtureConfig{})
	f.saveProposal("p1", day(0), day(6), dto.AssignmentDraft{ShiftID: "s1", EmployeeID: "a", PositionID: "nurse"})

	f.mock.ExpectBegin()
	f.mock.ExpectExec(lockSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectQuery(overlapSQL).WillReturnRows(sqlmock.NewRows([]string{"count", "first_date", "last_date"}).AddRow(4, day(0), day(3)))
	f.mock.ExpectRollback()

	_, err := f.service.Commit(context.Background(), dto.CommitScheduleRequest{ProposalID: "p1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	details, ok := appErr.Details.(*models.ScheduleExistsError)
	require.True(t, ok)
	assert.Equal(t, 4, details.Count)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestScheduleCommitServiceDetectsConcurrentAssignment(t *testing.T) {
	f := newCommitFixture(t, commitFixtureConfig{})
	f.saveProposal("p1", day(0), day(6), dto.AssignmentDraft{ShiftID: "s1", EmployeeID: "a", PositionID: "nurse"})

	f.mock.ExpectBegin()
	f.mock.ExpectExec(lockSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectQuery(overlapSQL).WillReturnRows(sqlmock.NewRows([]string{"count", "first_date", "last_date"}).AddRow(0, nil, nil))
	f.mock.ExpectQuery(workedSQL).WillReturnRows(sqlmock.NewRows([]string{"employee_id", "shift_id", "shift_date", "start_time", "end_time"}).
		AddRow("a", "elsewhere", day(0), "23:00", "07:00"))
	f.mock.ExpectRollback()

	_, err := f.service.Commit(context.Background(), dto.CommitScheduleRequest{ProposalID: "p1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestScheduleCommitServiceMapsDuplicateInsertToConflict(t *testing.T) {
	f := newCommitFixture(t, commitFixtureConfig{})
	f.saveProposal("p1", day(0), day(6), dto.AssignmentDraft{ShiftID: "s1", EmployeeID: "a", PositionID: "nurse"})

	f.mock.ExpectBegin()
	f.mock.ExpectExec(lockSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectQuery(overlapSQL).WillReturnRows(sqlmock.NewRows([]string{"count", "first_date", "last_date"}).AddRow(0, nil, nil))
	f.mock.ExpectQuery(workedSQL).WillReturnRows(sqlmock.NewRows([]string{"employee_id", "shift_id", "shift_date", "start_time", "end_time"}))
	f.mock.ExpectExec(insertSQL).WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})
	f.mock.ExpectRollback()

	_, err := f.service.Commit(context.Background(), dto.CommitScheduleRequest{ProposalID: "p1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.NoError(t, f.mock.ExpectationsWereMet())
	assert.Empty(t, f.notifier.sent)
}

func TestScheduleCommitServiceValidatesDrafts(t *testing.T) {
	cases := []struct {
		name   string
		drafts []dto.AssignmentDraft
		msg    string
	}{
		{
			name:   "unknown shift",
			drafts: []dto.AssignmentDraft{{ShiftID: "s9", EmployeeID: "a", PositionID: "nurse"}},
			msg:    "shift s9 not found",
		},
		{
			name:   "shift outside proposal",
			drafts: []dto.AssignmentDraft{{ShiftID: "s8", EmployeeID: "a", PositionID: "nurse"}},
			msg:    "outside the proposal range",
		},
		{
			name:   "position not on shift",
			drafts: []dto.AssignmentDraft{{ShiftID: "s1", EmployeeID: "a", PositionID: "doctor"}},
			msg:    "position doctor is not staffed",
		},
		{
			name:   "inactive employee",
			drafts: []dto.AssignmentDraft{{ShiftID: "s1", EmployeeID: "z", PositionID: "nurse"}},
			msg:    "employee z is not active",
		},
		{
			name:   "unqualified employee",
			drafts: []dto.AssignmentDraft{{ShiftID: "s1", EmployeeID: "p", PositionID: "nurse"}},
			msg:    "not qualified",
		},
		{
			name: "same employee twice on one date",
			drafts: []dto.AssignmentDraft{
				{ShiftID: "s1", EmployeeID: "a", PositionID: "nurse"},
				{ShiftID: "s1b", EmployeeID: "a", PositionID: "nurse"},
			},
			msg: "assigned twice on 2024-03-04",
		},
		{
			name: "headcount exceeded",
			drafts: []dto.AssignmentDraft{
				{ShiftID: "s1", EmployeeID: "a", PositionID: "nurse"},
				{ShiftID: "s1", EmployeeID: "b", PositionID: "nurse"},
			},
			msg: "exceeds its required count",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCommitFixture(t, commitFixtureConfig{tx: noopTxProvider{}})
			f.saveProposal("p1", day(0), day(6), dto.AssignmentDraft{ShiftID: "s1", EmployeeID: "a", PositionID: "nurse"})

			_, err := f.service.Commit(context.Background(), dto.CommitScheduleRequest{ProposalID: "p1", Assignments: tc.drafts})
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Contains(t, appErr.Message, tc.msg)
		})
	}
}

func TestScheduleCommitServiceUnknownProposal(t *testing.T) {
	f := newCommitFixture(t, commitFixtureConfig{tx: noopTxProvider{}})

	_, err := f.service.Commit(context.Background(), dto.CommitScheduleRequest{ProposalID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = f.service.Commit(context.Background(), dto.CommitScheduleRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleCommitServiceRejectsEmptyProposal(t *testing.T) {
	f := newCommitFixture(t, commitFixtureConfig{tx: noopTxProvider{}})
	f.saveProposal("p1", day(0), day(6))

	_, err := f.service.Commit(context.Background(), dto.CommitScheduleRequest{ProposalID: "p1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleCommitServiceCompletePast(t *testing.T) {
	f := newCommitFixture(t, commitFixtureConfig{})
	asOf := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)

	f.mock.ExpectExec(`UPDATE shift_assignments a SET status = 'completed'`).
		WithArgs(asOf, "dept-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	resp, err := f.service.CompletePast(context.Background(), "dept-1", dto.CompletePastRequest{AsOf: "2024-03-06"})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Completed)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	_, err = f.service.CompletePast(context.Background(), "dept-1", dto.CompletePastRequest{AsOf: "06/03/2024"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type commitFixtureConfig struct {
	tx                txProvider
	overtimeThreshold int
}

type commitFixture struct {
	service  *ScheduleCommitService
	mock     sqlmock.Sqlmock
	notifier *notifierStub
	stats    *statsInvalidatorStub
}

func newCommitFixture(t *testing.T, cfg commitFixtureConfig) *commitFixture {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sqlxdb := sqlx.NewDb(db, "sqlmock")

	var tx txProvider = sqlxdb
	if cfg.tx != nil {
		tx = cfg.tx
	}

	s1b := testShift("s1b", day(0), "15:00", "23:00", slot("nurse", 1))
	outside := testShift("s8", day(7), "07:00", "15:00", slot("nurse", 1))
	shifts := shiftLookupStub{items: []models.Shift{
		testShift("s1", day(0), "07:00", "15:00", slot("nurse", 1)),
		s1b,
		testShift("s2", day(1), "07:00", "15:00", slot("nurse", 1)),
		testShift("s3", day(2), "07:00", "15:00", slot("nurse", 1)),
		testShift("s4", day(3), "07:00", "15:00", slot("nurse", 1)),
		testShift("s7", day(6), "07:00", "15:00", slot("nurse", 1)),
		outside,
	}}
	inactive := testEmployee("z", "nurse")
	inactive.IsActive = false
	employees := employeeLookupStub{items: []models.Employee{
		testEmployee("a", "nurse"),
		testEmployee("b", "nurse"),
		testEmployee("p", "porter"),
		inactive,
	}}

	notifier := &notifierStub{}
	stats := &statsInvalidatorStub{}
	service := NewScheduleCommitService(
		tx,
		shifts,
		repository.NewShiftRepository(sqlxdb),
		employees,
		repository.NewShiftAssignmentRepository(sqlxdb),
		stats,
		notifier,
		NewProposalStore(time.Hour),
		nil,
		nil,
		nil,
		ScheduleCommitConfig{OvertimeShiftThreshold: cfg.overtimeThreshold},
	)
	service.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }
	return &commitFixture{service: service, mock: mock, notifier: notifier, stats: stats}
}

func (f *commitFixture) expectCleanCommit(inserted int64) {
	f.mock.ExpectBegin()
	f.mock.ExpectExec(lockSQL).WithArgs("dept-1").WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectQuery(overlapSQL).WillReturnRows(sqlmock.NewRows([]string{"count", "first_date", "last_date"}).AddRow(0, nil, nil))
	f.mock.ExpectQuery(workedSQL).WillReturnRows(sqlmock.NewRows([]string{"employee_id", "shift_id", "shift_date", "start_time", "end_time"}))
	f.mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, inserted))
	f.mock.ExpectExec(recomputeSQL).WillReturnResult(sqlmock.NewResult(0, inserted))
	f.mock.ExpectCommit()
}

func (f *commitFixture) saveProposal(id string, start, end time.Time, drafts ...dto.AssignmentDraft) {
	f.service.store.save(scheduleProposal{
		ProposalID:   id,
		DepartmentID: "dept-1",
		StartDate:    start,
		EndDate:      end,
		Drafts:       drafts,
		RequestedAt:  time.Now(),
	})
}

type shiftLookupStub struct {
	items []models.Shift
}

func (s shiftLookupStub) FindByIDs(ctx context.Context, ids []string) ([]models.Shift, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []models.Shift
	for _, sh := range s.items {
		if _, ok := wanted[sh.ID]; ok {
			out = append(out, sh)
		}
	}
	return out, nil
}

type employeeLookupStub struct {
	items []models.Employee
}

func (s employeeLookupStub) FindByIDs(ctx context.Context, ids []string) ([]models.Employee, error) {
	return s.items, nil
}

type notifierStub struct {
	sent []models.Notification
	err  error
}

func (n *notifierStub) Notify(ctx context.Context, notification models.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

type statsInvalidatorStub struct {
	invalidated []string
}

func (s *statsInvalidatorStub) Invalidate(ctx context.Context, employeeID string, date time.Time) error {
	s.invalidated = append(s.invalidated, employeeID+"|"+date.Format(models.DateLayout))
	return nil
}
