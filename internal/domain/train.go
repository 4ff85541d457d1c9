package domain

type TrainFrequency string

const (
	FrequencyDaily   TrainFrequency = "daily"
	FrequencyWeekly  TrainFrequency = "weekly"
	FrequencyMonthly TrainFrequency = "monthly"
)

type TrainStatus string

const (
	TrainStatusActive   TrainStatus = "active"
	TrainStatusInactive TrainStatus = "inactive"
)

type Train struct {
	ID            string         `json:"id" validate:"-"`
	TrainNumber   string         `json:"trainNumber" validate:"required"`
	TrainName     string         `json:"trainName" validate:"required"`
	Source        string         `json:"source" validate:"required"`
	Destination   string         `json:"destination" validate:"required"`
	DepartureTime string         `json:"departureTime" validate:"required"`
	ArrivalTime   string         `json:"arrivalTime" validate:"required"`
	Frequency     TrainFrequency `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	BasePrice     float64        `json:"basePrice" validate:"gt=0"`
	TotalSeats    int            `json:"totalSeats" validate:"gt=0"`
	Status        TrainStatus    `json:"status" validate:"required,oneof=active inactive"`
}

// ApplyDefaults fills the fields the catalog treats as optional on create.
func (t *Train) ApplyDefaults() {
	if t.Frequency == "" {
		t.Frequency = FrequencyDaily
	}
	if t.Status == "" {
		t.Status = TrainStatusActive
	}
}

// TrainFilter narrows a catalog listing. Zero value lists everything.
type TrainFilter struct {
	Source      string
	Destination string
	Query       string
	Status      TrainStatus
}

func (f TrainFilter) IsZero() bool {
	return f == TrainFilter{}
}
