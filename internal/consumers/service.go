package consumers

import (
	"fmt"
	"log/slog"

	"stagedoor/internal/external"
	"stagedoor/internal/messaging"
	"stagedoor/internal/models"
	"stagedoor/internal/repository"
	"stagedoor/internal/search"

	"github.com/nats-io/stan.go"
)

// Service запускает фоновые обработчики событий
type Service struct {
	repos       *repository.Repositories
	natsClient  *messaging.NATSClient
	esClient    *search.ElasticsearchClient
	emailClient *external.EmailClient

	subscriptions []stan.Subscription
}

func NewService(repos *repository.Repositories, natsClient *messaging.NATSClient, esClient *search.ElasticsearchClient, emailClient *external.EmailClient) *Service {
	return &Service{
		repos:       repos,
		natsClient:  natsClient,
		esClient:    esClient,
		emailClient: emailClient,
	}
}

// Start subscribes to the domain event subjects. The ticket email retry runs
// as a queue subscription so only one worker instance handles each booking.
func (s *Service) Start() error {
	sub, err := s.natsClient.SubscribeQueue(models.EventBookingConfirmed, "ticket-mailer", s.handleBookingConfirmed)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", models.EventBookingConfirmed, err)
	}
	s.subscriptions = append(s.subscriptions, sub)

	sub, err = s.natsClient.Subscribe(models.EventShowCreated, s.handleShowCreated)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", models.EventShowCreated, err)
	}
	s.subscriptions = append(s.subscriptions, sub)

	slog.Info("Consumers started", "subscriptions", len(s.subscriptions))
	return nil
}

// Stop отписывается от всех событий
func (s *Service) Stop() {
	for _, sub := range s.subscriptions {
		if err := sub.Close(); err != nil {
			slog.Error("Failed to close subscription", "error", err)
		}
	}
	s.subscriptions = nil
}
