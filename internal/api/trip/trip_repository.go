package trip

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/largekite/travel-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it too, which is what the repository tests run against.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository interface {
	CreateDayTrip(ctx context.Context, userID uuid.UUID, req types.CreateDayTripRequest) (*types.DayTrip, error)
	GetDayTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.DayTrip, error)
	GetDayTrips(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]types.DayTrip, int, error)
	UpdateDayTrip(ctx context.Context, userID, tripID uuid.UUID, updates types.UpdateDayTripRequest) (*types.DayTrip, error)
	DeleteDayTrip(ctx context.Context, userID, tripID uuid.UUID) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     DB
}

func NewRepository(db DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
	}
}

func (r *RepositoryImpl) CreateDayTrip(ctx context.Context, userID uuid.UUID, req types.CreateDayTripRequest) (*types.DayTrip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "CreateDayTrip", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "day_trips"),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	if req.Title == "" {
		return nil, fmt.Errorf("day trip title is required")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var centerLat, centerLng *float64
	if req.Center != nil && req.Center.Valid() {
		centerLat = &req.Center.Latitude
		centerLng = &req.Center.Longitude
	}
	mode := types.ParseTravelMode(req.TravelMode)

	trip := types.DayTrip{
		UserID:     userID,
		Title:      req.Title,
		TripDate:   req.TripDate,
		TravelMode: mode,
	}
	if centerLat != nil {
		trip.Center = &types.Coordinate{Latitude: *centerLat, Longitude: *centerLng}
	}

	query := `
        INSERT INTO day_trips (user_id, title, trip_date, center_lat, center_lng, travel_mode)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at
    `
	if err = tx.QueryRow(ctx, query,
		userID, req.Title, req.TripDate, centerLat, centerLng, string(mode),
	).Scan(&trip.ID, &trip.CreatedAt, &trip.UpdatedAt); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to insert day trip: %w", err)
	}

	trip.Slots, err = insertSlots(ctx, tx, trip.ID, req.Slots)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	span.SetStatus(codes.Ok, "Day trip created")
	return &trip, nil
}

func (r *RepositoryImpl) GetDayTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.DayTrip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "GetDayTrip", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "day_trips"),
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	query := `
        SELECT id, user_id, title, trip_date, center_lat, center_lng, travel_mode, created_at, updated_at
        FROM day_trips
        WHERE id = $1 AND user_id = $2
    `
	trip, err := scanDayTrip(r.db.QueryRow(ctx, query, tripID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			notFound := fmt.Errorf("no day trip found with ID %s for user %s", tripID, userID)
			span.RecordError(notFound)
			return nil, notFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to scan day_trips row: %w", err)
	}

	trip.Slots, err = r.loadSlots(ctx, tripID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Day trip retrieved")
	return trip, nil
}

// GetDayTrips lists a user's trips, newest first. Slots are not loaded here;
// the list view only needs trip headers.
func (r *RepositoryImpl) GetDayTrips(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]types.DayTrip, int, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "GetDayTrips", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "day_trips"),
		attribute.String("user.id", userID.String()),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	))
	defer span.End()

	offset := (page - 1) * pageSize
	query := `
        SELECT id, user_id, title, trip_date, center_lat, center_lng, travel_mode, created_at, updated_at
        FROM day_trips
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.db.Query(ctx, query, userID, pageSize, offset)
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to query day_trips: %w", err)
	}
	defer rows.Close()

	var trips []types.DayTrip
	for rows.Next() {
		trip, err := scanDayTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan day_trips row: %w", err)
		}
		trips = append(trips, *trip)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating day_trips rows: %w", err)
	}

	var totalRecords int
	countQuery := `SELECT COUNT(*) FROM day_trips WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&totalRecords); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to count day_trips: %w", err)
	}

	span.SetAttributes(
		attribute.Int("total_records", totalRecords),
		attribute.Int("trips.count", len(trips)),
	)
	span.SetStatus(codes.Ok, "Day trips retrieved")
	return trips, totalRecords, nil
}

func (r *RepositoryImpl) UpdateDayTrip(ctx context.Context, userID, tripID uuid.UUID, updates types.UpdateDayTripRequest) (*types.DayTrip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "UpdateDayTrip", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "day_trips"),
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	setClauses := []string{}
	args := []any{}
	argCount := 1

	if updates.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argCount))
		args = append(args, *updates.Title)
		argCount++
	}
	if updates.TripDate != nil {
		setClauses = append(setClauses, fmt.Sprintf("trip_date = $%d", argCount))
		args = append(args, *updates.TripDate)
		argCount++
	}
	if updates.Center != nil {
		setClauses = append(setClauses, fmt.Sprintf("center_lat = $%d", argCount))
		args = append(args, updates.Center.Latitude)
		argCount++
		setClauses = append(setClauses, fmt.Sprintf("center_lng = $%d", argCount))
		args = append(args, updates.Center.Longitude)
		argCount++
	}
	if updates.TravelMode != nil {
		setClauses = append(setClauses, fmt.Sprintf("travel_mode = $%d", argCount))
		args = append(args, string(types.ParseTravelMode(*updates.TravelMode)))
		argCount++
	}

	if len(setClauses) == 0 && updates.Slots == nil {
		return nil, fmt.Errorf("no fields to update for day trip %s", tripID)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argCount))
	args = append(args, time.Now())
	argCount++

	whereIDPlaceholder := argCount
	args = append(args, tripID)
	argCount++
	userIDPlaceholder := argCount
	args = append(args, userID)

	query := fmt.Sprintf(`
        UPDATE day_trips
        SET %s
        WHERE id = $%d AND user_id = $%d
    `, strings.Join(setClauses, ", "), whereIDPlaceholder, userIDPlaceholder)

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to update day_trips: %w", err)
	}
	if tag.RowsAffected() == 0 {
		notFound := fmt.Errorf("day trip with ID %s not found for user %s", tripID, userID)
		span.RecordError(notFound)
		span.SetStatus(codes.Error, "Day trip not found or not owned by user")
		return nil, notFound
	}

	if updates.Slots != nil {
		if _, err = tx.Exec(ctx, `DELETE FROM trip_slots WHERE trip_id = $1`, tripID); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to clear trip_slots: %w", err)
		}
		if _, err = insertSlots(ctx, tx, tripID, *updates.Slots); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	span.SetStatus(codes.Ok, "Day trip updated")
	return r.GetDayTrip(ctx, userID, tripID)
}

func (r *RepositoryImpl) DeleteDayTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "DeleteDayTrip", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "day_trips"),
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	// Slots go with the trip via ON DELETE CASCADE.
	tag, err := r.db.Exec(ctx, `DELETE FROM day_trips WHERE id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete day trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		notFound := fmt.Errorf("no day trip found with ID %s for user %s", tripID, userID)
		span.RecordError(notFound)
		return notFound
	}

	span.SetStatus(codes.Ok, "Day trip deleted")
	return nil
}

func (r *RepositoryImpl) loadSlots(ctx context.Context, tripID uuid.UUID) ([]types.TripSlot, error) {
	query := `
        SELECT id, slot_kind, position, venue_name, venue_lat, venue_lng, venue_metadata
        FROM trip_slots
        WHERE trip_id = $1
        ORDER BY position ASC
    `
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trip_slots: %w", err)
	}
	defer rows.Close()

	var slots []types.TripSlot
	for rows.Next() {
		var slot types.TripSlot
		if err := rows.Scan(
			&slot.ID,
			&slot.SlotKind,
			&slot.Position,
			&slot.Venue.Name,
			&slot.Venue.Latitude,
			&slot.Venue.Longitude,
			&slot.Venue.Metadata,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trip_slots row: %w", err)
		}
		slots = append(slots, slot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trip_slots rows: %w", err)
	}
	return slots, nil
}

func insertSlots(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, inputs []types.TripSlotInput) ([]types.TripSlot, error) {
	query := `
        INSERT INTO trip_slots (trip_id, slot_kind, position, venue_name, venue_lat, venue_lng, venue_metadata)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	slots := make([]types.TripSlot, 0, len(inputs))
	for i, input := range inputs {
		if input.Venue.Name == "" {
			return nil, fmt.Errorf("slot %d: venue name is required", i)
		}
		slot := types.TripSlot{
			SlotKind: input.SlotKind,
			Position: i,
			Venue:    input.Venue,
		}
		if err := tx.QueryRow(ctx, query,
			tripID, input.SlotKind, i,
			input.Venue.Name, input.Venue.Latitude, input.Venue.Longitude, input.Venue.Metadata,
		).Scan(&slot.ID); err != nil {
			return nil, fmt.Errorf("failed to insert trip slot %d: %w", i, err)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func scanDayTrip(row pgx.Row) (*types.DayTrip, error) {
	var trip types.DayTrip
	var centerLat, centerLng *float64
	var mode string
	if err := row.Scan(
		&trip.ID,
		&trip.UserID,
		&trip.Title,
		&trip.TripDate,
		&centerLat,
		&centerLng,
		&mode,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if centerLat != nil && centerLng != nil {
		trip.Center = &types.Coordinate{Latitude: *centerLat, Longitude: *centerLng}
	}
	trip.TravelMode = types.ParseTravelMode(mode)
	return &trip, nil
}
