package flights

import (
	"context"
	"time"

	"github.com/akolesov/flightbooking/internal/domain"
	"github.com/akolesov/flightbooking/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, origin, destination, departureDate string) ([]domain.Flight, error)
	SearchRoundTrip(ctx context.Context, origin, destination, departureDate, returnDate string) ([]domain.Flight, []domain.Flight, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type FlightService struct {
	repo  repository.FlightRepository
	cache Cache
}

type CreateFlightInput struct {
	FlightNumber  string    `json:"flight_number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	FareCents     int64     `json:"fare_cents"`
}

func NewFlightService(repo repository.FlightRepository, cache Cache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

// Search filters by origin/destination substring. The departure date is
// parsed as YYYY-MM-DD; a blank or malformed date simply drops the date
// filter rather than failing the search.
func (s *FlightService) Search(ctx context.Context, origin, destination, departureDate string) ([]domain.Flight, error) {
	return s.repo.Search(ctx, origin, destination, parseDepartureDate(departureDate))
}

// SearchRoundTrip runs the outbound search and, when the return date parses,
// a second search with origin and destination swapped. A blank or malformed
// return date yields no inbound leg instead of an error.
func (s *FlightService) SearchRoundTrip(ctx context.Context, origin, destination, departureDate, returnDate string) ([]domain.Flight, []domain.Flight, error) {
	outbound, err := s.repo.Search(ctx, origin, destination, parseDepartureDate(departureDate))
	if err != nil {
		return nil, nil, err
	}

	back := parseDepartureDate(returnDate)
	if back == nil {
		return outbound, nil, nil
	}
	inbound, err := s.repo.Search(ctx, destination, origin, back)
	if err != nil {
		return nil, nil, err
	}
	return outbound, inbound, nil
}

func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	if input.FlightNumber == "" {
		return nil, domain.NewValidationError("flight number is required")
	}
	if input.FareCents < 0 {
		return nil, domain.NewValidationError("fare must not be negative")
	}

	flight := &domain.Flight{
		FlightNumber:  input.FlightNumber,
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartureTime: input.DepartureTime,
		ArrivalTime:   input.ArrivalTime,
		FareCents:     input.FareCents,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	return flight, nil
}

func parseDepartureDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &parsed
}

var _ FlightUseCase = (*FlightService)(nil)
