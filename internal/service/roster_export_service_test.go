package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
	"github.com/noah-isme/shift-scheduler-api/pkg/export"
)

func TestRosterExportServiceCSV(t *testing.T) {
	repo := &rosterRepoStub{entries: []models.RosterEntry{{
		ShiftDate:    day(0),
		StartTime:    "07:00",
		EndTime:      "15:00",
		Category:     models.ShiftCategoryDay,
		PositionName: "Nurse",
		EmployeeName: "Alya Putri",
		Kind:         models.AssignmentKindRegular,
		Status:       models.AssignmentStatusAssigned,
	}}}
	service := NewRosterExportService(repo, nil, nil, nil, nil, 31)

	result, err := service.Export(context.Background(), dto.RosterExportQuery{DepartmentID: "dept-1", StartDate: "2024-03-04", EndDate: "2024-03-10"})
	require.NoError(t, err)
	assert.Equal(t, "roster_dept-1_2024-03-04_2024-03-10.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t,
		"Date,Start,End,Category,Position,Employee,Kind,Status\n2024-03-04,07:00,15:00,day,Nurse,Alya Putri,regular,assigned\n",
		string(result.Body))
	assert.Equal(t, "2024-03-10", repo.end.Format(models.DateLayout))
}

func TestRosterExportServicePDF(t *testing.T) {
	renderer := &rendererStub{body: []byte("%PDF-1.3")}
	service := NewRosterExportService(&rosterRepoStub{}, nil, renderer, nil, nil, 31)

	result, err := service.Export(context.Background(), dto.RosterExportQuery{DepartmentID: "dept-1", StartDate: "2024-03-04", EndDate: "2024-03-10", Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Body, []byte("%PDF")))
	assert.Equal(t, "2024-03-04 to 2024-03-10", renderer.table.Subtitle)
	assert.Len(t, renderer.table.Headers, 8)
}

func TestRosterExportServiceErrors(t *testing.T) {
	service := NewRosterExportService(&rosterRepoStub{}, nil, nil, nil, nil, 31)
	_, err := service.Export(context.Background(), dto.RosterExportQuery{DepartmentID: "dept-1", StartDate: "2024-03-04", EndDate: "2024-03-10", Format: "xlsx"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	failing := NewRosterExportService(&rosterRepoStub{err: errors.New("timeout")}, nil, nil, nil, nil, 31)
	_, err = failing.Export(context.Background(), dto.RosterExportQuery{DepartmentID: "dept-1", StartDate: "2024-03-04", EndDate: "2024-03-10"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

type rosterRepoStub struct {
	entries []models.RosterEntry
	err     error
	end     time.Time
}

func (r *rosterRepoStub) ListRoster(ctx context.Context, departmentID string, start, end time.Time) ([]models.RosterEntry, error) {
	r.end = end
	return r.entries, r.err
}

type rendererStub struct {
	body  []byte
	table export.Table
}

func (r *rendererStub) Render(table export.Table) ([]byte, error) {
	r.table = table
	return r.body, nil
}
