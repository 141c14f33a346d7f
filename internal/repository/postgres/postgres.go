package postgres

import (
	"database/sql"

	"packbooker-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.ReservationRepository
	repository.RequestRepository
	repository.OrderRepository
	repository.ProductRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		ReservationRepository: NewReservationRepository(db),
		RequestRepository:     NewRequestRepository(db),
		OrderRepository:       NewOrderRepository(db),
		ProductRepository:     NewProductRepository(db),
	}
}
