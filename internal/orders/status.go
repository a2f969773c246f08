package orders

type Status string

const (
	StatusPlaced     Status = "PLACED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusCancelled  Status = "CANCELLED"
)

// SHIPPED dan CANCELLED terminal; CANCELLED hanya dari PLACED/PROCESSING.
var validNext = map[Status]map[Status]bool{
	StatusPlaced:     {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {},
	StatusCancelled:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func IsTerminal(s Status) bool {
	return len(validNext[s]) == 0
}
