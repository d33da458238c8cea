package trip

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/largekite/travel-planner/internal/types"
)

func setupTripRepoTest(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewRepository(mockPool, logger), mockPool
}

func tripColumns() []string {
	return []string{"id", "user_id", "title", "trip_date", "center_lat", "center_lng", "travel_mode", "created_at", "updated_at"}
}

func slotColumns() []string {
	return []string{"id", "slot_kind", "position", "venue_name", "venue_lat", "venue_lng", "venue_metadata"}
}

func TestTripRepositoryImpl_CreateDayTrip(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("inserts trip and slots in one transaction", func(t *testing.T) {
		repo, mockPool := setupTripRepoTest(t)
		tripID := uuid.New()
		slotID := uuid.New()
		now := time.Now()
		lat, lng := 38.627, -90.199

		req := types.CreateDayTripRequest{
			Title:  "Saturday downtown",
			Center: &types.Coordinate{Latitude: 38.625, Longitude: -90.2},
			Slots: []types.TripSlotInput{
				{SlotKind: "breakfast", Venue: types.Venue{Name: "Bakery", Latitude: &lat, Longitude: &lng}},
			},
		}

		mockPool.ExpectBegin()
		mockPool.ExpectQuery(`INSERT INTO day_trips`).
			WithArgs(userID, "Saturday downtown", (*time.Time)(nil), &req.Center.Latitude, &req.Center.Longitude, "walk").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(tripID, now, now))
		mockPool.ExpectQuery(`INSERT INTO trip_slots`).
			WithArgs(tripID, "breakfast", 0, "Bakery", &lat, &lng, json.RawMessage(nil)).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(slotID))
		mockPool.ExpectCommit()

		trip, err := repo.CreateDayTrip(ctx, userID, req)
		require.NoError(t, err)
		assert.Equal(t, tripID, trip.ID)
		assert.Equal(t, types.TravelModeWalk, trip.TravelMode)
		require.Len(t, trip.Slots, 1)
		assert.Equal(t, slotID, trip.Slots[0].ID)
		assert.Equal(t, 0, trip.Slots[0].Position)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("rejects empty title", func(t *testing.T) {
		repo, mockPool := setupTripRepoTest(t)

		_, err := repo.CreateDayTrip(ctx, userID, types.CreateDayTripRequest{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "title is required")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("rejects slot without venue name", func(t *testing.T) {
		repo, mockPool := setupTripRepoTest(t)
		tripID := uuid.New()
		now := time.Now()

		req := types.CreateDayTripRequest{
			Title: "Broken",
			Slots: []types.TripSlotInput{{SlotKind: "lunch"}},
		}

		mockPool.ExpectBegin()
		mockPool.ExpectQuery(`INSERT INTO day_trips`).
			WithArgs(userID, "Broken", (*time.Time)(nil), (*float64)(nil), (*float64)(nil), "walk").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(tripID, now, now))
		mockPool.ExpectRollback()

		_, err := repo.CreateDayTrip(ctx, userID, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "venue name is required")
	})
}

func TestTripRepositoryImpl_GetDayTrip(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	tripID := uuid.New()

	t.Run("returns trip with slots in position order", func(t *testing.T) {
		repo, mockPool := setupTripRepoTest(t)
		now := time.Now()
		centerLat, centerLng := 38.625, -90.2
		lat, lng := 38.627, -90.199
		meta := json.RawMessage(`{"price":"$$"}`)

		mockPool.ExpectQuery(`SELECT (.+) FROM day_trips`).
			WithArgs(tripID, userID).
			WillReturnRows(pgxmock.NewRows(tripColumns()).
				AddRow(tripID, userID, "Saturday downtown", (*time.Time)(nil), &centerLat, &centerLng, "drive", now, now))
		mockPool.ExpectQuery(`SELECT (.+) FROM trip_slots`).
			WithArgs(tripID).
			WillReturnRows(pgxmock.NewRows(slotColumns()).
				AddRow(uuid.New(), "breakfast", 0, "Bakery", &lat, &lng, meta).
				AddRow(uuid.New(), "coffee", 1, "Pop-up Cart", (*float64)(nil), (*float64)(nil), json.RawMessage(nil)))

		trip, err := repo.GetDayTrip(ctx, userID, tripID)
		require.NoError(t, err)
		assert.Equal(t, "Saturday downtown", trip.Title)
		assert.Equal(t, types.TravelModeDrive, trip.TravelMode)
		require.NotNil(t, trip.Center)
		assert.Equal(t, centerLat, trip.Center.Latitude)
		require.Len(t, trip.Slots, 2)
		assert.Equal(t, "Bakery", trip.Slots[0].Venue.Name)
		assert.Nil(t, trip.Slots[1].Venue.Position())
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mockPool := setupTripRepoTest(t)

		mockPool.ExpectQuery(`SELECT (.+) FROM day_trips`).
			WithArgs(tripID, userID).
			WillReturnRows(pgxmock.NewRows(tripColumns()))

		_, err := repo.GetDayTrip(ctx, userID, tripID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no day trip found")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestTripRepositoryImpl_GetDayTrips(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("lists trips with total count", func(t *testing.T) {
		repo, mockPool := setupTripRepoTest(t)
		now := time.Now()

		mockPool.ExpectQuery(`SELECT (.+) FROM day_trips`).
			WithArgs(userID, 10, 0).
			WillReturnRows(pgxmock.NewRows(tripColumns()).
				AddRow(uuid.New(), userID, "Day 1", (*time.Time)(nil), (*float64)(nil), (*float64)(nil), "walk", now, now).
				AddRow(uuid.New(), userID, "Day 2", (*time.Time)(nil), (*float64)(nil), (*float64)(nil), "drive", now, now))
		mockPool.ExpectQuery(`SELECT COUNT`).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

		trips, total, err := repo.GetDayTrips(ctx, userID, 1, 10)
		require.NoError(t, err)
		assert.Len(t, trips, 2)
		assert.Equal(t, 7, total)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestTripRepositoryImpl_DeleteDayTrip(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	tripID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo, mockPool := setupTripRepoTest(t)

		mockPool.ExpectExec(`DELETE FROM day_trips`).
			WithArgs(tripID, userID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		err := repo.DeleteDayTrip(ctx, userID, tripID)
		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mockPool := setupTripRepoTest(t)

		mockPool.ExpectExec(`DELETE FROM day_trips`).
			WithArgs(tripID, userID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.DeleteDayTrip(ctx, userID, tripID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no day trip found")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
