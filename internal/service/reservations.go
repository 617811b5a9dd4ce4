package service

import (
	"context"
	"fmt"
	"time"

	"stagedoor/internal/apperrors"
	"stagedoor/internal/logger"
	"stagedoor/internal/models"

	"github.com/google/uuid"
)

// HoldWindow is the fixed, non-renewable length of a seat hold. Expiry is
// detected lazily by later readers; no server-side timer exists.
const HoldWindow = 10 * time.Minute

type ReservationService struct {
	showRepo   ShowStore
	seatRepo   SeatStore
	natsClient Publisher
}

func NewReservationService(showRepo ShowStore, seatRepo SeatStore, natsClient Publisher) *ReservationService {
	return &ReservationService{
		showRepo:   showRepo,
		seatRepo:   seatRepo,
		natsClient: natsClient,
	}
}

// Reserve places a time-boxed hold on every requested seat, or on none of
// them. Concurrency correctness comes from the store's conditional write: a
// racing caller affects fewer rows than requested and is rolled back.
func (s *ReservationService) Reserve(ctx context.Context, req *models.ReserveSeatsRequest) (*models.ReserveSeatsResponse, error) {
	seatIDs, err := normalizeSeatIDs(req.SeatIDs)
	if err != nil {
		return nil, err
	}

	show, err := s.showRepo.GetByID(ctx, req.ShowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	if show == nil {
		return nil, apperrors.NewNotFound("show")
	}

	seats, err := s.seatRepo.GetForShow(ctx, req.ShowID, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get seats: %w", err)
	}
	if len(seats) != len(seatIDs) {
		return nil, apperrors.NewNotFound("one or more seats")
	}

	now := time.Now()
	var unavailable []string
	var expired []string
	for _, seat := range seats {
		switch {
		case seat.Status == models.SeatAvailable:
			// eligible
		case seat.HoldExpired(now):
			expired = append(expired, seat.ID)
		default:
			// active hold, sold or blocked
			unavailable = append(unavailable, seat.ID)
		}
	}

	if len(unavailable) > 0 {
		return nil, &apperrors.ConflictError{UnavailableSeatIDs: unavailable}
	}

	// Reclaim lazily-expired holds before the conditional reserve; the gate
	// below only matches AVAILABLE rows. A cleanup failure surfaces to the
	// caller as a conflict on those seats, never as this error.
	if len(expired) > 0 {
		if _, err := s.seatRepo.ReleaseExpired(ctx, expired); err != nil {
			logger.WithContext(ctx).Error("Failed to reclaim expired holds",
				"error", err,
				"show_id", req.ShowID,
				"seat_count", len(expired))
		}
	}

	reservedUntil := now.Add(HoldWindow)
	reserved, err := s.seatRepo.ReserveSeats(ctx, req.ShowID, seatIDs, reservedUntil)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve seats: %w", err)
	}

	if len(reserved) != len(seatIDs) {
		// Lost a race between the read and the conditional write. The winning
		// party holds the missing seats, so only the count is known. Roll the
		// partial subset back before reporting.
		if len(reserved) > 0 {
			if err := s.seatRepo.ReleaseSeats(ctx, reserved); err != nil {
				logger.WithContext(ctx).Error("Failed to roll back partial reservation",
					"error", err,
					"show_id", req.ShowID,
					"seat_count", len(reserved))
			}
		}
		return nil, &apperrors.ConflictError{FailedCount: len(seatIDs) - len(reserved)}
	}

	event := models.ReservationCreatedEvent{
		ShowID:        req.ShowID,
		SeatIDs:       seatIDs,
		ReservedUntil: reservedUntil,
		Timestamp:     now,
	}

	if s.natsClient != nil {
		if err := s.natsClient.Publish(models.EventReservationCreated, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish reservation created event",
				"error", err,
				"show_id", req.ShowID,
				"event_type", models.EventReservationCreated)
		}
	}

	return &models.ReserveSeatsResponse{ReservedUntil: reservedUntil}, nil
}

// normalizeSeatIDs validates and dedupes a seat id list.
func normalizeSeatIDs(seatIDs []string) ([]string, error) {
	if len(seatIDs) == 0 {
		return nil, apperrors.NewValidation("seat_ids must not be empty")
	}

	seen := make(map[string]struct{}, len(seatIDs))
	result := make([]string, 0, len(seatIDs))
	for _, id := range seatIDs {
		if _, err := uuid.Parse(id); err != nil {
			return nil, apperrors.NewValidation("invalid seat id: %s", id)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}

	return result, nil
}
