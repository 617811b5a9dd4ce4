package repository

import (
	"stagedoor/internal/database"
)

type Repositories struct {
	Shows     *ShowRepository
	Seats     *SeatRepository
	Bookings  *BookingRepository
	Discounts *DiscountRepository
	Users     *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Shows:     NewShowRepository(db),
		Seats:     NewSeatRepository(db),
		Bookings:  NewBookingRepository(db),
		Discounts: NewDiscountRepository(db),
		Users:     NewUserRepository(db),
	}
}
