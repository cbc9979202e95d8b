package model

type Reservation struct {
	ReservationId    int64     `json:"reservationId"`
	TrainId          int64     `json:"trainId"`
	TrainName        string    `json:"trainName"`
	SeatNumber       string    `json:"seatNumber"`
	Price            float64   `json:"price"`
	DepartureStation string    `json:"departureStation"`
	ArrivalStation   string    `json:"arrivalStation"`
	DepartureTime    Timestamp `json:"departureTime"`
	ArrivalTime      Timestamp `json:"arrivalTime"`
	ReservedAt       Timestamp `json:"reservedAt"`
}

type ReservationRequest struct {
	TrainId    int64  `json:"trainId"`
	SeatNumber string `json:"seatNumber"`
}
