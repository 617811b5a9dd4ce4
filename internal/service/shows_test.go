package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stagedoor/internal/apperrors"
	"stagedoor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateShowMaterializesSeatMap(t *testing.T) {
	shows := newFakeShowStore()
	seats := newFakeSeatStore()
	publisher := &fakePublisher{}
	svc := NewShowService(shows, seats, nil, publisher)

	resp, err := svc.Create(context.Background(), &models.CreateShowRequest{
		Title:         "Twelfth Night",
		DatetimeStart: time.Now().Add(96 * time.Hour),
		BasePrice:     3000,
		Sections: []models.SectionRequest{
			{Name: "Stalls", Rows: 5, SeatsPerRow: 10, Price: 4000},
			{Name: "Balcony", Rows: 3, SeatsPerRow: 8},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 74, resp.SeatsCreated)

	show, err := svc.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShowOnSale, show.Status)

	// sections without an explicit price inherit the base price
	listed, err := seats.ListByShow(context.Background(), resp.ID, 1, 100, strPtr("Balcony"), nil)
	require.NoError(t, err)
	require.NotEmpty(t, listed)
	assert.Equal(t, int64(3000), listed[0].Price)

	assert.True(t, publisher.published(models.EventShowCreated))
}

func TestCreateShowDefaultsToSingleSection(t *testing.T) {
	shows := newFakeShowStore()
	seats := newFakeSeatStore()
	svc := NewShowService(shows, seats, nil, nil)

	resp, err := svc.Create(context.Background(), &models.CreateShowRequest{
		Title:         "As You Like It",
		DatetimeStart: time.Now().Add(96 * time.Hour),
		BasePrice:     2500,
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.SeatsCreated)
}

func TestCreateShowValidation(t *testing.T) {
	svc := NewShowService(newFakeShowStore(), newFakeSeatStore(), nil, nil)

	_, err := svc.Create(context.Background(), &models.CreateShowRequest{Title: "   "})
	_, ok := apperrors.AsValidation(err)
	assert.True(t, ok)

	_, err = svc.Create(context.Background(), &models.CreateShowRequest{
		Title:    "Bad Layout",
		Sections: []models.SectionRequest{{Name: "Pit", Rows: 0, SeatsPerRow: 10}},
	})
	_, ok = apperrors.AsValidation(err)
	assert.True(t, ok)
}

func TestListShowsUsesSearchForQueries(t *testing.T) {
	shows := newFakeShowStore()
	searcher := &fakeSearcher{
		results: []models.Show{{ID: 9, Title: "Hamlet", Status: models.ShowOnSale}},
	}
	svc := NewShowService(shows, newFakeSeatStore(), searcher, nil)

	dbShow := &models.Show{Title: "Macbeth", DatetimeStart: time.Now().Add(time.Hour), Status: models.ShowOnSale}
	require.NoError(t, shows.Create(context.Background(), dbShow))

	// plain listing comes from the database
	list, err := svc.List(context.Background(), "", "", 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Macbeth", list[0].Title)
	assert.Empty(t, searcher.queries)

	// a query routes through the search index
	list, err = svc.List(context.Background(), "haml", "", 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Hamlet", list[0].Title)
	assert.Equal(t, []string{"haml"}, searcher.queries)
}

func TestListShowsFallsBackWhenSearchFails(t *testing.T) {
	shows := newFakeShowStore()
	searcher := &fakeSearcher{err: errors.New("index unreachable")}
	svc := NewShowService(shows, newFakeSeatStore(), searcher, nil)

	dbShow := &models.Show{Title: "Macbeth", DatetimeStart: time.Now().Add(time.Hour), Status: models.ShowOnSale}
	require.NoError(t, shows.Create(context.Background(), dbShow))

	list, err := svc.List(context.Background(), "macb", "", 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Macbeth", list[0].Title)
}

func TestListSeatsReportsExpiredHoldsAsAvailable(t *testing.T) {
	shows := newFakeShowStore()
	seats := newFakeSeatStore()
	svc := NewShowService(shows, seats, nil, nil)

	show := &models.Show{Title: "Othello", DatetimeStart: time.Now().Add(time.Hour), Status: models.ShowOnSale}
	require.NoError(t, shows.Create(context.Background(), show))

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(5 * time.Minute)
	expired := seats.addSeat(show.ID, "Stalls", "A", 1, models.SeatReserved, 3000, &past)
	active := seats.addSeat(show.ID, "Stalls", "A", 2, models.SeatReserved, 3000, &future)

	list, err := svc.ListSeats(context.Background(), show.ID, 1, 100, nil, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[string]models.ListSeatsResponseItem{}
	for _, item := range list {
		byID[item.ID] = item
	}

	assert.Equal(t, models.SeatAvailable, byID[expired].Status)
	assert.Nil(t, byID[expired].ReservedUntil)

	assert.Equal(t, models.SeatReserved, byID[active].Status)
	require.NotNil(t, byID[active].ReservedUntil)
	assert.WithinDuration(t, future, *byID[active].ReservedUntil, time.Second)
}

func TestListSeatsUnknownShow(t *testing.T) {
	svc := NewShowService(newFakeShowStore(), newFakeSeatStore(), nil, nil)

	_, err := svc.ListSeats(context.Background(), 404, 1, 100, nil, nil)
	_, ok := apperrors.AsNotFound(err)
	assert.True(t, ok)
}

func strPtr(s string) *string { return &s }
