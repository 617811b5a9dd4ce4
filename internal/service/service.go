package service

import (
	"stagedoor/internal/external"
	"stagedoor/internal/messaging"
	"stagedoor/internal/repository"
	"stagedoor/internal/search"
)

// Services агрегирует все сервисы приложения
type Services struct {
	Shows        *ShowService
	Reservations *ReservationService
	Bookings     *BookingService
	Tickets      *TicketService
}

func NewServices(repos *repository.Repositories, natsClient *messaging.NATSClient, esClient *search.ElasticsearchClient, emailClient *external.EmailClient) *Services {
	var publisher Publisher
	if natsClient != nil {
		publisher = natsClient
	}

	// A typed nil must not end up behind the interface, or the nil checks
	// in the services stop working.
	var searcher ShowSearcher
	if esClient != nil {
		searcher = esClient
	}

	var dispatcher EmailDispatcher
	if emailClient != nil {
		dispatcher = emailClient
	}

	return &Services{
		Shows:        NewShowService(repos.Shows, repos.Seats, searcher, publisher),
		Reservations: NewReservationService(repos.Shows, repos.Seats, publisher),
		Bookings:     NewBookingService(repos.Shows, repos.Seats, repos.Bookings, repos.Discounts, publisher, dispatcher),
		Tickets:      NewTicketService(repos.Bookings, publisher),
	}
}
