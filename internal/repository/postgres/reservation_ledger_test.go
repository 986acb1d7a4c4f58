package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventrsvp/internal/domain"
)

func TestReservationLedger_Add(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		errIs   error
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO reservations \(id, user_id, event_id, created_at\)`).
					WithArgs(sqlmock.AnyArg(), testUserID, testEventID, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "lib/pq unique violation",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO reservations`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			errIs: domain.ErrDuplicateReservation,
		},
		{
			name: "pgx unique violation",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO reservations`).
					WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			errIs: domain.ErrDuplicateReservation,
		},
		{
			name: "foreign key violation",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO reservations`).
					WillReturnError(&pq.Error{Code: "23503"})
			},
			errIs: domain.ErrEventNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO reservations`).
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
			res, err := NewReservationLedger(db).Add(ctx, testUserID, testEventID)
			switch {
			case tt.errIs != nil:
				require.ErrorIs(t, err, tt.errIs)
			case tt.wantErr:
				require.Error(t, err)
				assert.NotErrorIs(t, err, domain.ErrDuplicateReservation)
			default:
				require.NoError(t, err)
				assert.NotEmpty(t, res.ID)
				assert.Equal(t, testUserID, res.UserID)
				assert.Equal(t, testEventID, res.EventID)
				assert.False(t, res.CreatedAt.IsZero())
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReservationLedger_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("removes existing pair", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`DELETE FROM reservations\s+WHERE user_id = \$1 AND event_id = \$2`).
			WithArgs(testUserID, testEventID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "event_id", "created_at"}).
				AddRow("res-1", testUserID, testEventID, testTime))

		res, err := NewReservationLedger(db).Remove(ctx, testUserID, testEventID)
		require.NoError(t, err)
		assert.Equal(t, "res-1", res.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing pair", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`DELETE FROM reservations`).
			WithArgs(testUserID, testEventID).
			WillReturnError(sql.ErrNoRows)

		_, err = NewReservationLedger(db).Remove(ctx, testUserID, testEventID)
		require.ErrorIs(t, err, domain.ErrReservationNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReservationLedger_ListEventIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT event_id\s+FROM reservations\s+WHERE user_id = \$1\s+ORDER BY created_at ASC, event_id ASC`).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"event_id"}).AddRow("e1").AddRow("e2"))

	ids, err := NewReservationLedger(db).ListEventIDs(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationLedger_ListWithEvents(t *testing.T) {
	columns := append([]string{"id", "user_id", "event_id", "created_at"}, eventColumnNames...)
	listQuery := `SELECT r\.id, r\.user_id, r\.event_id, r\.created_at,\s+e\.id, .*FROM reservations r\s+JOIN events e ON e\.id = r\.event_id\s+WHERE r\.user_id = \$1\s+ORDER BY r\.created_at DESC`

	t.Run("one query joins reservations to events", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(listQuery).
			WithArgs(testUserID).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("r2", testUserID, testEventID, testTime.Add(time.Minute),
					testEventID, "Go meetup", "talks", testTime.Add(48*time.Hour), "Berlin", 10, 2, "owner-1", testTime, testTime).
				AddRow("r1", testUserID, "e-other", testTime,
					"e-other", "Rust night", "", testTime.Add(72*time.Hour), "Paris", 5, 5, "owner-2", testTime, testTime))

		list, err := NewReservationLedger(db).ListWithEvents(context.Background(), testUserID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "r2", list[0].Reservation.ID)
		assert.Equal(t, testEventID, list[0].Event.ID)
		assert.Equal(t, 2, list[0].Event.Occupancy)
		assert.Equal(t, "Rust night", list[1].Event.Title)
		assert.Equal(t, list[1].Reservation.EventID, list[1].Event.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no reservations gives an empty slice", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(listQuery).
			WithArgs(testUserID).
			WillReturnRows(sqlmock.NewRows(columns))

		list, err := NewReservationLedger(db).ListWithEvents(context.Background(), testUserID)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error is wrapped", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		boom := errors.New("connection reset")
		mock.ExpectQuery(listQuery).WithArgs(testUserID).WillReturnError(boom)

		_, err = NewReservationLedger(db).ListWithEvents(context.Background(), testUserID)
		require.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
