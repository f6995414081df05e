// Package catalog holds the read-only trip dataset the booking flow and the
// route-search tool query. Trips are reference data: callers that need to keep
// one (e.g. a booking) must copy it.
package catalog

import "strings"

// Trip is a single bookable route between two cities.
type Trip struct {
	ID             string  `json:"id"`
	Operator       string  `json:"operator"`
	OperatorLogo   string  `json:"operatorLogo"`
	From           string  `json:"from"`
	To             string  `json:"to"`
	DepartureTime  string  `json:"departureTime"`
	ArrivalTime    string  `json:"arrivalTime"`
	Duration       string  `json:"duration"`
	Price          float64 `json:"price"`
	VehicleType    string  `json:"vehicleType"`
	Rating         float64 `json:"rating"`
	AvailableSeats int     `json:"availableSeats"`
}

// Normalize lower-cases a place name and strips the literal word "city" so
// that "Ho Chi Minh City" matches the stored "Ho Chi Minh City" through
// substring logic and users can say either form.
func Normalize(place string) string {
	cleaned := strings.ReplaceAll(strings.ToLower(place), "city", "")
	return strings.TrimSpace(cleaned)
}

// Search returns every trip whose origin and destination contain the
// normalized origin/destination as a case-insensitive substring. The travel
// date is intentionally not part of the predicate: the catalog carries no
// per-date inventory.
func Search(origin, destination string) []Trip {
	originClean := Normalize(origin)
	destClean := Normalize(destination)

	var results []Trip
	for _, trip := range Trips {
		if strings.Contains(strings.ToLower(trip.From), originClean) &&
			strings.Contains(strings.ToLower(trip.To), destClean) {
			results = append(results, trip)
		}
	}
	return results
}

// Trips is the reference dataset.
var Trips = []Trip{
	{
		ID:             "HN-SP-001",
		Operator:       "Sapa Express",
		OperatorLogo:   "/sapa-express.png",
		From:           "Hanoi",
		To:             "Sapa",
		DepartureTime:  "07:00",
		ArrivalTime:    "12:30",
		Duration:       "5h 30m",
		Price:          350000,
		VehicleType:    "Sleeper Bus",
		Rating:         4.8,
		AvailableSeats: 22,
	},
	{
		ID:             "HN-SP-002",
		Operator:       "GreenLion Bus",
		OperatorLogo:   "/green-lion.png",
		From:           "Hanoi",
		To:             "Sapa",
		DepartureTime:  "22:00",
		ArrivalTime:    "03:30",
		Duration:       "5h 30m",
		Price:          320000,
		VehicleType:    "Sleeper Bus",
		Rating:         4.5,
		AvailableSeats: 15,
	},
	{
		ID:             "HN-SP-003",
		Operator:       "Sao Viet",
		OperatorLogo:   "/sao-viet.png",
		From:           "Hanoi",
		To:             "Sapa",
		DepartureTime:  "09:00",
		ArrivalTime:    "14:00",
		Duration:       "5h 00m",
		Price:          450000,
		VehicleType:    "Limousine",
		Rating:         4.9,
		AvailableSeats: 8,
	},
	{
		ID:             "HCM-DL-001",
		Operator:       "Phuong Trang",
		OperatorLogo:   "/phuong-trang.png",
		From:           "Ho Chi Minh City",
		To:             "Da Lat",
		DepartureTime:  "23:00",
		ArrivalTime:    "05:00",
		Duration:       "6h 00m",
		Price:          280000,
		VehicleType:    "Sleeper Bus",
		Rating:         4.6,
		AvailableSeats: 30,
	},
	{
		ID:             "HCM-DL-002",
		Operator:       "Thanh Buoi",
		OperatorLogo:   "/thanh-buoi.png",
		From:           "Ho Chi Minh City",
		To:             "Da Lat",
		DepartureTime:  "10:00",
		ArrivalTime:    "16:30",
		Duration:       "6h 30m",
		Price:          300000,
		VehicleType:    "Sleeper Bus",
		Rating:         4.7,
		AvailableSeats: 18,
	},
	{
		ID:             "DN-HA-001",
		Operator:       "Hoi An Express",
		OperatorLogo:   "/hoi-an-express.png",
		From:           "Da Nang",
		To:             "Hoi An",
		DepartureTime:  "11:00",
		ArrivalTime:    "11:45",
		Duration:       "45m",
		Price:          120000,
		VehicleType:    "Seater Bus",
		Rating:         4.9,
		AvailableSeats: 25,
	},
	{
		ID:             "HN-HL-001",
		Operator:       "Kumho Viet Thanh",
		OperatorLogo:   "/kumho.png",
		From:           "Hanoi",
		To:             "Ha Long",
		DepartureTime:  "08:00",
		ArrivalTime:    "10:30",
		Duration:       "2h 30m",
		Price:          250000,
		VehicleType:    "Limousine",
		Rating:         4.8,
		AvailableSeats: 7,
	},
}
