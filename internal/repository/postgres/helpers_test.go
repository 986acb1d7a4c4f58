package postgres

import (
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const (
	testEventID = "6f1c2a7e-3b4d-4e5f-8a9b-0c1d2e3f4a5b"
	testUserID  = "user-123"
)

var testTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

var eventColumnNames = []string{"id", "title", "description", "starts_at", "location", "capacity", "occupancy", "owner_id", "created_at", "updated_at"}

func eventRow(id string, capacity, occupancy int) *sqlmock.Rows {
	return sqlmock.NewRows(eventColumnNames).
		AddRow(id, "Go meetup", "talks", testTime.Add(48*time.Hour), "Berlin", capacity, occupancy, "owner-1", testTime, testTime)
}
