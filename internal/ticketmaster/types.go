package ticketmaster

import "encoding/json"

// EventsPage is one page of the discovery events endpoint.
type EventsPage struct {
	Embedded *EmbeddedEvents `json:"_embedded"`
	Page     PageInfo        `json:"page"`
}

type EmbeddedEvents struct {
	Events []RawEvent `json:"events"`
}

type PageInfo struct {
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
}

// HasEvents reports whether the response carried an _embedded block at all.
func (p EventsPage) HasEvents() bool {
	return p.Embedded != nil
}

// Events returns the events of the page, nil if there is no _embedded block.
func (p EventsPage) Events() []RawEvent {
	if p.Embedded == nil {
		return nil
	}
	return p.Embedded.Events
}

// RawEvent mirrors the parts of an event object that get flattened, every
// nested object is optional.
type RawEvent struct {
	ID              *string          `json:"id"`
	Name            *string          `json:"name"`
	Url             *string          `json:"url"`
	Type            *string          `json:"type"`
	Locale          *string          `json:"locale"`
	Dates           *EventDates      `json:"dates"`
	Sales           *EventSales      `json:"sales"`
	Classifications []Classification `json:"classifications"`
	PriceRanges     []PriceRange     `json:"priceRanges"`
	Embedded        *EventEmbedded   `json:"_embedded"`
}

type EventDates struct {
	Start  *EventStart  `json:"start"`
	Status *EventStatus `json:"status"`
}

type EventStart struct {
	LocalDate *string `json:"localDate"`
	LocalTime *string `json:"localTime"`
}

type EventStatus struct {
	Code *string `json:"code"`
}

type EventSales struct {
	Public *PublicSale `json:"public"`
}

type PublicSale struct {
	StartDateTime *string `json:"startDateTime"`
	EndDateTime   *string `json:"endDateTime"`
}

type EventEmbedded struct {
	Venues      []Venue      `json:"venues"`
	Attractions []Attraction `json:"attractions"`
}

type Named struct {
	Name *string `json:"name"`
}

type Venue struct {
	ID       *string   `json:"id"`
	Name     *string   `json:"name"`
	City     *Named    `json:"city"`
	State    *Named    `json:"state"`
	Country  *Named    `json:"country"`
	Location *Location `json:"location"`
}

// Location coordinates usually come back as strings, but plain numbers show
// up as well.
type Location struct {
	Latitude  json.RawMessage `json:"latitude"`
	Longitude json.RawMessage `json:"longitude"`
}

type Attraction struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

type Classification struct {
	Segment  *Named `json:"segment"`
	Genre    *Named `json:"genre"`
	SubGenre *Named `json:"subGenre"`
	// usually a boolean, kept raw since some records carry a string
	Family json.RawMessage `json:"family"`
}

type PriceRange struct {
	Type     *string         `json:"type"`
	Currency *string         `json:"currency"`
	Min      json.RawMessage `json:"min"`
	Max      json.RawMessage `json:"max"`
}
