package schedule_test

import (
	"context"
	"database/sql"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/schedule"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*schedule.DB, *bun.DB) {
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{
		(*models.Bus)(nil), (*models.Route)(nil), (*models.Trip)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	return &schedule.DB{Bun: bunDB}, bunDB
}

func newDetector(db *schedule.DB) *schedule.Detector {
	return schedule.NewDetector(db, logger.NewLogger())
}

func seedTrip(t *testing.T, bunDB *bun.DB, tripID, busID, status string, departure, arrival time.Time) {
	trip := models.Trip{
		TripID:        tripID,
		RouteID:       "route-1",
		BusID:         busID,
		DepartureTime: departure,
		ArrivalTime:   arrival,
		Status:        status,
	}
	_, err := bunDB.NewInsert().Model(&trip).Exec(context.Background())
	require.NoError(t, err)
}

func TestValidateTiming(t *testing.T) {
	detector := schedule.NewDetector(nil, logger.NewLogger())
	now := time.Now()

	tests := []struct {
		name      string
		departure time.Time
		arrival   time.Time
		wantErr   bool
	}{
		{"valid window", now.Add(2 * time.Hour), now.Add(5 * time.Hour), false},
		{"departure equals arrival", now.Add(2 * time.Hour), now.Add(2 * time.Hour), true},
		{"departure after arrival", now.Add(5 * time.Hour), now.Add(2 * time.Hour), true},
		{"departure in the past", now.Add(-time.Hour), now.Add(2 * time.Hour), true},
		{"duration over 48 hours", now.Add(time.Hour), now.Add(50 * time.Hour), true},
		{"duration under 15 minutes", now.Add(time.Hour), now.Add(time.Hour + 10*time.Minute), true},
		{"exactly 15 minutes", now.Add(time.Hour), now.Add(time.Hour + 15*time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := detector.ValidateTiming(tt.departure, tt.arrival)
			if tt.wantErr {
				assert.ErrorIs(t, err, schedule.ErrInvalidTiming)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCompatibility(t *testing.T) {
	db, bunDB := setupTestDB(t)
	defer bunDB.Close()
	detector := newDetector(db)

	buses := []models.Bus{
		{BusID: "bus-1", OperatorID: "op-1", PlateNo: "AB-123", Active: true},
		{BusID: "bus-2", OperatorID: "op-2", PlateNo: "CD-456", Active: true},
	}
	_, err := bunDB.NewInsert().Model(&buses).Exec(context.Background())
	require.NoError(t, err)

	route := models.Route{RouteID: "route-1", OperatorID: "op-1", Origin: "Colombo", Destination: "Kandy"}
	_, err = bunDB.NewInsert().Model(&route).Exec(context.Background())
	require.NoError(t, err)

	assert.NoError(t, detector.ValidateCompatibility("route-1", "bus-1"))
	assert.ErrorIs(t, detector.ValidateCompatibility("route-1", "bus-2"), schedule.ErrIncompatibleOperator)
	assert.ErrorIs(t, detector.ValidateCompatibility("route-x", "bus-1"), schedule.ErrRouteNotFound)
	assert.ErrorIs(t, detector.ValidateCompatibility("route-1", "bus-x"), schedule.ErrBusNotFound)
}

func TestIsAvailable_OverlapShapes(t *testing.T) {
	db, bunDB := setupTestDB(t)
	defer bunDB.Close()
	detector := newDetector(db)

	base := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	// Existing trip occupies [base, base+4h)
	seedTrip(t, bunDB, "trip-existing", "bus-1", models.TripStatusScheduled, base, base.Add(4*time.Hour))

	tests := []struct {
		name      string
		departure time.Time
		arrival   time.Time
		available bool
	}{
		{"partial overlap at start", base.Add(-2 * time.Hour), base.Add(2 * time.Hour), false},
		{"partial overlap at end", base.Add(2 * time.Hour), base.Add(6 * time.Hour), false},
		{"fully contained", base.Add(time.Hour), base.Add(3 * time.Hour), false},
		{"fully containing", base.Add(-time.Hour), base.Add(5 * time.Hour), false},
		{"exact match", base, base.Add(4 * time.Hour), false},
		{"adjacent before", base.Add(-3 * time.Hour), base, true},
		{"adjacent after", base.Add(4 * time.Hour), base.Add(8 * time.Hour), true},
		{"disjoint", base.Add(24 * time.Hour), base.Add(28 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			available, err := detector.IsAvailable("bus-1", tt.departure, tt.arrival, "")
			assert.NoError(t, err)
			assert.Equal(t, tt.available, available)
		})
	}
}

func TestIsAvailable_Symmetry(t *testing.T) {
	db, bunDB := setupTestDB(t)
	defer bunDB.Close()
	detector := newDetector(db)

	base := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	// conflict(w1, w2) must equal conflict(w2, w1): seed each window on
	// its own bus and probe with the other one.
	seedTrip(t, bunDB, "trip-a", "bus-a", models.TripStatusScheduled, base, base.Add(4*time.Hour))
	seedTrip(t, bunDB, "trip-b", "bus-b", models.TripStatusScheduled, base.Add(2*time.Hour), base.Add(6*time.Hour))

	availA, err := detector.IsAvailable("bus-a", base.Add(2*time.Hour), base.Add(6*time.Hour), "")
	require.NoError(t, err)
	availB, err := detector.IsAvailable("bus-b", base, base.Add(4*time.Hour), "")
	require.NoError(t, err)

	assert.Equal(t, availA, availB)
	assert.False(t, availA)
}

func TestIsAvailable_IgnoresCancelledTrips(t *testing.T) {
	db, bunDB := setupTestDB(t)
	defer bunDB.Close()
	detector := newDetector(db)

	base := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	seedTrip(t, bunDB, "trip-cancelled", "bus-1", models.TripStatusCancelled, base, base.Add(4*time.Hour))

	available, err := detector.IsAvailable("bus-1", base, base.Add(4*time.Hour), "")
	assert.NoError(t, err)
	assert.True(t, available)
}

func TestIsAvailable_ExcludesOwnTripOnUpdate(t *testing.T) {
	db, bunDB := setupTestDB(t)
	defer bunDB.Close()
	detector := newDetector(db)

	base := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	seedTrip(t, bunDB, "trip-1", "bus-1", models.TripStatusScheduled, base, base.Add(4*time.Hour))

	// Re-validating trip-1's own (shifted) window must not see itself
	available, err := detector.IsAvailable("bus-1", base.Add(time.Hour), base.Add(5*time.Hour), "trip-1")
	assert.NoError(t, err)
	assert.True(t, available)

	available, err = detector.IsAvailable("bus-1", base.Add(time.Hour), base.Add(5*time.Hour), "")
	assert.NoError(t, err)
	assert.False(t, available)
}

func TestValidateSchedule_OrderOfChecks(t *testing.T) {
	db, bunDB := setupTestDB(t)
	defer bunDB.Close()
	detector := newDetector(db)

	bus := models.Bus{BusID: "bus-1", OperatorID: "op-1", PlateNo: "AB-123", Active: true}
	_, err := bunDB.NewInsert().Model(&bus).Exec(context.Background())
	require.NoError(t, err)
	route := models.Route{RouteID: "route-1", OperatorID: "op-1", Origin: "Colombo", Destination: "Galle"}
	_, err = bunDB.NewInsert().Model(&route).Exec(context.Background())
	require.NoError(t, err)

	departure := time.Now().Add(24 * time.Hour)
	arrival := departure.Add(3 * time.Hour)

	// Timing failure wins even when the route does not exist
	err = detector.ValidateSchedule("route-x", "bus-1", arrival, departure, "")
	assert.ErrorIs(t, err, schedule.ErrInvalidTiming)

	// Clean window passes all three checks
	assert.NoError(t, detector.ValidateSchedule("route-1", "bus-1", departure, arrival, ""))

	// Occupy the window, then expect a schedule conflict
	seedTrip(t, bunDB, "trip-1", "bus-1", models.TripStatusScheduled, departure, arrival)
	err = detector.ValidateSchedule("route-1", "bus-1", departure.Add(time.Hour), arrival.Add(time.Hour), "")
	assert.ErrorIs(t, err, schedule.ErrBusScheduleConflict)
}
