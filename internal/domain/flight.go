package domain

import "time"

type Flight struct {
	ID            int64
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	FareCents     int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
