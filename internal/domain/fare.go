package domain

import "math"

const (
	PassengerAdult   = "adult"
	PassengerStudent = "student"
	PassengerChild   = "child"
	PassengerSenior  = "senior"
)

var PassengerTypes = []string{PassengerAdult, PassengerStudent, PassengerChild, PassengerSenior}

// Fare - flat price between two stops of a route, in whole currency units
type Fare struct {
	ID            string  `json:"id"`
	RouteID       string  `json:"route_id"`
	FromStopID    string  `json:"from_stop_id"`
	ToStopID      string  `json:"to_stop_id"`
	PassengerType string  `json:"passenger_type"`
	Price         int64   `json:"price_tzs"`
	Note          *string `json:"note"`
}

// FareSegment - one fare table row keyed by 1-based stop positions
type FareSegment struct {
	From  int   `json:"from"`
	To    int   `json:"to"`
	Price int64 `json:"price"`
}

type Multipliers struct {
	Peak    float64
	OffPeak float64
}

func DefaultMultipliers() Multipliers {
	return Multipliers{Peak: 1.0, OffPeak: 1.0}
}

func (m Multipliers) For(peak bool) float64 {
	if peak {
		return m.Peak
	}
	return m.OffPeak
}

// CalculateFare sums every segment fully contained in [from, to] and applies
// the peak or off-peak multiplier, rounded to the nearest whole unit.
// from and to may be given in either order. No matching rows yields 0.
func CalculateFare(from, to int, table []FareSegment, peak bool, m Multipliers) int64 {
	if from > to {
		from, to = to, from
	}

	var sum int64
	for _, row := range table {
		if row.From >= from && row.To <= to {
			sum += row.Price
		}
	}
	if sum == 0 {
		return 0
	}

	return int64(math.Round(float64(sum) * m.For(peak)))
}

// FareTableFromRoute converts stored fares into segments by looking up each
// fare's stops in the route order. Fares for other passenger types and fares
// whose stops are not on the route are skipped.
func FareTableFromRoute(stops []RouteStop, fares []Fare, passengerType string) []FareSegment {
	if passengerType == "" {
		passengerType = PassengerAdult
	}

	pos := make(map[string]int, len(stops))
	for _, s := range stops {
		pos[s.StopID] = s.Seq
	}

	table := make([]FareSegment, 0, len(fares))
	for _, f := range fares {
		if f.PassengerType != passengerType {
			continue
		}
		a, okA := pos[f.FromStopID]
		b, okB := pos[f.ToStopID]
		if !okA || !okB {
			continue
		}
		if a > b {
			a, b = b, a
		}
		table = append(table, FareSegment{From: a, To: b, Price: f.Price})
	}
	return table
}

// GroupFaresByPassenger - fares keyed by passenger type, order preserved
func GroupFaresByPassenger(fares []Fare) map[string][]Fare {
	out := make(map[string][]Fare)
	for _, f := range fares {
		out[f.PassengerType] = append(out[f.PassengerType], f)
	}
	return out
}
