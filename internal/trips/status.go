package trips

type TripStatus string

const (
	StatusScheduled TripStatus = "scheduled"
	StatusDeparted  TripStatus = "departed"
	StatusCancelled TripStatus = "cancelled"
)
