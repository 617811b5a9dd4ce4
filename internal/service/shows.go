package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stagedoor/internal/apperrors"
	"stagedoor/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ShowService struct {
	showRepo   ShowStore
	seatRepo   SeatStore
	searcher   ShowSearcher
	natsClient Publisher
}

func NewShowService(showRepo ShowStore, seatRepo SeatStore, searcher ShowSearcher, natsClient Publisher) *ShowService {
	return &ShowService{
		showRepo:   showRepo,
		seatRepo:   seatRepo,
		searcher:   searcher,
		natsClient: natsClient,
	}
}

// Create registers a show and materializes its seat map from the requested
// sections. Seat creation is idempotent per show, so retrying a create that
// failed midway does not duplicate seats.
func (s *ShowService) Create(ctx context.Context, req *models.CreateShowRequest) (*models.CreateShowResponse, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.NewValidation("title is required")
	}
	if req.BasePrice < 0 {
		return nil, apperrors.NewValidation("base_price cannot be negative")
	}

	sections := req.Sections
	if len(sections) == 0 {
		// Without an explicit layout the show gets a single flat section.
		sections = []models.SectionRequest{
			{Name: "Stalls", Rows: 10, SeatsPerRow: 20, Price: req.BasePrice},
		}
	}
	for i := range sections {
		if strings.TrimSpace(sections[i].Name) == "" {
			return nil, apperrors.NewValidation("section name is required")
		}
		if sections[i].Rows <= 0 || sections[i].SeatsPerRow <= 0 {
			return nil, apperrors.NewValidation("section %s must have positive rows and seats_per_row", sections[i].Name)
		}
		if sections[i].Price < 0 {
			return nil, apperrors.NewValidation("section %s price cannot be negative", sections[i].Name)
		}
		if sections[i].Price == 0 {
			sections[i].Price = req.BasePrice
		}
	}

	show := &models.Show{
		Title:         strings.TrimSpace(req.Title),
		VenueID:       req.VenueID,
		EnsembleID:    req.EnsembleID,
		DatetimeStart: req.DatetimeStart,
		Status:        models.ShowOnSale,
		BasePrice:     req.BasePrice,
	}
	if err := s.showRepo.Create(ctx, show); err != nil {
		return nil, fmt.Errorf("failed to create show: %w", err)
	}

	seatsCreated, err := s.seatRepo.CreateSeatMap(ctx, show.ID, sections)
	if err != nil {
		return nil, fmt.Errorf("failed to create seat map: %w", err)
	}

	if s.natsClient != nil {
		event := models.ShowCreatedEvent{
			ShowID:    show.ID,
			Title:     show.Title,
			Timestamp: time.Now().UTC(),
		}
		if perr := s.natsClient.Publish(models.EventShowCreated, event); perr != nil {
			slog.Error("Failed to publish show created event", "show_id", show.ID, "error", perr)
		}
	}

	return &models.CreateShowResponse{ID: show.ID, SeatsCreated: seatsCreated}, nil
}

// List returns the show catalog. A non-empty query goes through the search
// index; if the index is unavailable the database listing serves as fallback.
func (s *ShowService) List(ctx context.Context, query, date string, page, pageSize int) (models.ListShowsResponse, error) {
	page, pageSize = normalizePagination(page, pageSize)

	var shows []models.Show
	var err error
	searched := false

	if query != "" && s.searcher != nil {
		shows, err = s.searcher.Search(ctx, query, date, page, pageSize)
		if err != nil {
			slog.Error("Search index unavailable, falling back to database", "error", err)
		} else {
			searched = true
		}
	}
	if !searched {
		shows, err = s.showRepo.List(ctx, date, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list shows: %w", err)
		}
	}

	items := make(models.ListShowsResponse, 0, len(shows))
	for i := range shows {
		items = append(items, models.ListShowsResponseItem{
			ID:             shows[i].ID,
			Title:          shows[i].Title,
			DatetimeStart:  shows[i].DatetimeStart,
			Status:         shows[i].Status,
			AvailableSeats: shows[i].AvailableSeats,
		})
	}
	return items, nil
}

func (s *ShowService) GetByID(ctx context.Context, id int64) (*models.Show, error) {
	show, err := s.showRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	if show == nil {
		return nil, apperrors.NewNotFound("show")
	}
	return show, nil
}

// ListSeats returns a page of the seat map. Seats whose hold window has
// already elapsed are reported as AVAILABLE even though the row still says
// RESERVED; the actual flip happens lazily on the next reservation attempt.
func (s *ShowService) ListSeats(ctx context.Context, showID int64, page, pageSize int, section, status *string) (models.ListSeatsResponse, error) {
	page, pageSize = normalizePagination(page, pageSize)

	show, err := s.showRepo.GetByID(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	if show == nil {
		return nil, apperrors.NewNotFound("show")
	}

	seats, err := s.seatRepo.ListByShow(ctx, showID, page, pageSize, section, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}

	now := time.Now().UTC()
	items := make(models.ListSeatsResponse, 0, len(seats))
	for i := range seats {
		item := models.ListSeatsResponseItem{
			ID:      seats[i].ID,
			Section: seats[i].Section,
			Row:     seats[i].Row,
			Number:  seats[i].Number,
			Status:  seats[i].Status,
			Price:   seats[i].Price,
		}
		if seats[i].Status == models.SeatReserved {
			if seats[i].HoldExpired(now) {
				item.Status = models.SeatAvailable
			} else {
				item.ReservedUntil = seats[i].ReservedUntil
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
