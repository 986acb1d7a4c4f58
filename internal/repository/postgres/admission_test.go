package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventrsvp/internal/domain"
)

func TestAdmissionControl_Admit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		eventID       string
		mock          func(mock sqlmock.Sqlmock)
		wantOccupancy int
		errIs         error
		wantErr       bool
	}{
		{
			name:    "slot available",
			eventID: testEventID,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE events SET occupancy = occupancy \+ 1\s+WHERE id = \$1 AND occupancy < capacity`).
					WithArgs(testEventID).
					WillReturnRows(eventRow(testEventID, 3, 1))
			},
			wantOccupancy: 1,
		},
		{
			name:    "full",
			eventID: testEventID,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE events SET occupancy = occupancy \+ 1`).
					WithArgs(testEventID).
					WillReturnError(sql.ErrNoRows)
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(testEventID).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			errIs: domain.ErrEventFull,
		},
		{
			name:    "event missing",
			eventID: testEventID,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE events SET occupancy = occupancy \+ 1`).
					WithArgs(testEventID).
					WillReturnError(sql.ErrNoRows)
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(testEventID).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			errIs: domain.ErrEventNotFound,
		},
		{
			name:    "malformed id never reaches the database",
			eventID: "not-a-uuid",
			mock:    func(mock sqlmock.Sqlmock) {},
			errIs:   domain.ErrEventNotFound,
		},
		{
			name:    "db error",
			eventID: testEventID,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			ac := NewAdmissionControl(db)
			e, err := ac.Admit(ctx, tt.eventID)
			switch {
			case tt.errIs != nil:
				require.ErrorIs(t, err, tt.errIs)
				assert.Nil(t, e)
			case tt.wantErr:
				require.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantOccupancy, e.Occupancy)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdmissionControl_Release(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		mock  func(mock sqlmock.Sqlmock)
		errIs error
	}{
		{
			name: "decrements",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE events SET occupancy = occupancy - 1\s+WHERE id = \$1 AND occupancy > 0`).
					WithArgs(testEventID).
					WillReturnRows(eventRow(testEventID, 3, 0))
			},
		},
		{
			name: "underflow aborts",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE events SET occupancy = occupancy - 1`).
					WithArgs(testEventID).
					WillReturnError(sql.ErrNoRows)
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(testEventID).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			errIs: ErrOccupancyUnderflow,
		},
		{
			name: "event missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE events SET occupancy = occupancy - 1`).
					WithArgs(testEventID).
					WillReturnError(sql.ErrNoRows)
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(testEventID).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			errIs: domain.ErrEventNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			e, err := NewAdmissionControl(db).Release(ctx, testEventID)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 0, e.Occupancy)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
