package domain

// Listing is the read-only view of a bookable property. The reservation
// core never mutates listings; they are owned by the listing service.
type Listing struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	PricePerNight float64 `json:"price_per_night"`
}
