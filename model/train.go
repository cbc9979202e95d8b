package model

type Train struct {
	Id               int64     `json:"id"`
	Name             string    `json:"name"`
	Price            float64   `json:"price"`
	DepartureStation string    `json:"departureStation"`
	ArrivalStation   string    `json:"arrivalStation"`
	DepartureTime    Timestamp `json:"departureTime"`
	ArrivalTime      Timestamp `json:"arrivalTime"`
	AvailableSeats   int       `json:"availableSeats"`
}

type Seat struct {
	Id         int64  `json:"id"`
	SeatNumber string `json:"seatNumber"`
	Reserved   bool   `json:"reserved"`
}
