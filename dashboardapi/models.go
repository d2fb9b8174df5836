package dashboardapi

import "time"

type TourStatus string

const (
	TourDraft     TourStatus = "draft"
	TourPublished TourStatus = "published"
	TourActive    TourStatus = "active"
	TourCompleted TourStatus = "completed"
	TourCancelled TourStatus = "cancelled"
	TourSuspended TourStatus = "suspended"
)

type PriceTier struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

type Pricing struct {
	Tiers    []PriceTier `json:"tiers"`
	Currency string      `json:"currency"`
}

type Tour struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	StartDate           string     `json:"startDate,omitempty"`
	EndDate             string     `json:"endDate,omitempty"`
	MaxParticipants     int        `json:"maxParticipants"`
	CurrentParticipants int        `json:"currentParticipants"`
	Status              TourStatus `json:"status"`
	OrganizerID         string     `json:"organizerId,omitempty"`
	Pricing             *Pricing   `json:"pricing,omitempty"`
	CreatedAt           *time.Time `json:"createdAt,omitempty"`
	UpdatedAt           *time.Time `json:"updatedAt,omitempty"`
}

type Location struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Address      *string    `json:"address"`
	Latitude     string     `json:"latitude,omitempty"`
	Longitude    string     `json:"longitude,omitempty"`
	LocationType string     `json:"locationType,omitempty"`
	Category     *string    `json:"category"`
	Rating       *float64   `json:"rating"`
	Images       []string   `json:"images"`
	Amenities    []string   `json:"amenities"`
	IsVerified   bool       `json:"isVerified"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// AddressOrEmpty returns the address, or "" when the server sent null.
func (l Location) AddressOrEmpty() string {
	if l.Address == nil {
		return ""
	}
	return *l.Address
}

// TourPrice is the single price a tour is created with.
type TourPrice struct {
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
}

// ScheduleItem is one activity in a tour's day plan.
type ScheduleItem struct {
	DayNumber    int    `json:"dayNumber"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	LocationID   string `json:"locationId"`
	ActivityType string `json:"activityType"`
	Description  string `json:"description"`
	Notes        string `json:"notes,omitempty"`
}

// TourInput is the body of a tour create or update. Unset fields are left
// out, so an update only touches what was given.
type TourInput struct {
	Title           string         `json:"title,omitempty"`
	Description     string         `json:"description,omitempty"`
	StartDate       string         `json:"startDate,omitempty"`
	EndDate         string         `json:"endDate,omitempty"`
	MaxParticipants int            `json:"maxParticipants,omitempty"`
	Status          TourStatus     `json:"status,omitempty"`
	Pricing         *TourPrice     `json:"pricing,omitempty"`
	Tags            []string       `json:"tags,omitempty"`
	Schedules       []ScheduleItem `json:"schedules,omitempty"`
}

type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation"`
}

// ParticipantUser is the account summary embedded in a participant record.
type ParticipantUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// TourParticipant is a user's registration on a tour.
type TourParticipant struct {
	ID                  string           `json:"id"`
	TourID              string           `json:"tourId"`
	UserID              string           `json:"userId"`
	RegistrationDate    string           `json:"registrationDate,omitempty"`
	Status              string           `json:"status,omitempty"`
	EmergencyContact    EmergencyContact `json:"emergencyContact"`
	SpecialRequirements string           `json:"specialRequirements,omitempty"`
	DietaryRestrictions string           `json:"dietaryRestrictions,omitempty"`
	MedicalConditions   string           `json:"medicalConditions,omitempty"`
	RoomPreference      string           `json:"roomPreference,omitempty"`
	TransportationNeeds string           `json:"transportationNeeds,omitempty"`
	PaymentStatus       string           `json:"paymentStatus,omitempty"`
	AmountPaid          float64          `json:"amountPaid"`
	Notes               string           `json:"notes,omitempty"`
	User                ParticipantUser  `json:"user"`
	CreatedAt           *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt           *time.Time       `json:"updatedAt,omitempty"`
}

type assignParticipantsRequest struct {
	UserIDs []string `json:"userIds"`
}

// UserInput is the body of a user create or update. Password is only sent when set.
type UserInput struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Role     string `json:"role,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type ContactInfo struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

type OpeningHours struct {
	MonFri string `json:"mon_fri,omitempty"`
	Sat    string `json:"sat,omitempty"`
	Sun    string `json:"sun,omitempty"`
}

// LocationInput is the body of a location create or update.
type LocationInput struct {
	Name         string        `json:"name,omitempty"`
	Description  string        `json:"description,omitempty"`
	LocationType string        `json:"locationType,omitempty"`
	Address      string        `json:"address,omitempty"`
	Category     string        `json:"category,omitempty"`
	ContactInfo  *ContactInfo  `json:"contactInfo,omitempty"`
	OpeningHours *OpeningHours `json:"openingHours,omitempty"`
	Images       []string      `json:"images,omitempty"`
	Amenities    []string      `json:"amenities,omitempty"`
}
