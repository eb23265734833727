package models

import "github.com/OktaWirawan/anitasalonn/internal/store"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	// Booking statuses kept in Indonesian: they are stored values the
	// existing data files and dashboard depend on.
	BookingStatusPending   = "Tertunda"
	BookingStatusConfirmed = "Dikonfirmasi"
	BookingStatusCancelled = "Dibatalkan"
	BookingStatusDone      = "Selesai"

	ContactStatusNew = "Baru"
)

const (
	ResourceUsers    = "users"
	ResourceBookings = "bookings"
	ResourceContacts = "contacts"
)

// RegistrationDateLayout matches the dd/mm/yyyy strings the original
// data files carry in the user "date" field.
const RegistrationDateLayout = "02/01/2006"

type Booking struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Service   string `json:"service"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Message   string `json:"message,omitempty"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Definitions enumerates the fixed resource set. Anything outside it is
// an unknown resource. Users seed at 101 while bookings and contacts
// seed at 1; the gap is historical and existing data files rely on it.
func Definitions() []store.Definition {
	return []store.Definition{
		{
			Name:    ResourceUsers,
			File:    "users.json",
			IDFloor: 101,
			Fields:  []string{"name", "email", "password", "role", "date"},
			Secret:  []string{"password"},
			Defaults: store.Record{
				"role": RoleUser,
			},
		},
		{
			Name:    ResourceBookings,
			File:    "bookings.json",
			IDFloor: 1,
			Fields:  []string{"name", "email", "phone", "service", "date", "time", "message", "status", "timestamp"},
			Defaults: store.Record{
				"status": BookingStatusPending,
			},
		},
		{
			Name:    ResourceContacts,
			File:    "contacts.json",
			IDFloor: 1,
			Fields:  []string{"name", "email", "subject", "message", "status", "timestamp"},
		},
	}
}
