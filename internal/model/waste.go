package model

import (
	"time"

	"github.com/google/uuid"
)

type WasteType string

const (
	WasteGeneral WasteType = "indifferenziato"
	WastePlastic WasteType = "plastica"
	WastePaper   WasteType = "carta"
	WasteGlass   WasteType = "vetro"
	WasteOrganic WasteType = "organico"
	WasteMetal   WasteType = "metalli"
	WasteOther   WasteType = "altro"
)

var wasteLabels = map[WasteType]string{
	WasteGeneral: "Indifferenziato",
	WastePlastic: "Plastica",
	WastePaper:   "Carta",
	WasteGlass:   "Vetro",
	WasteOrganic: "Organico",
	WasteMetal:   "Metalli",
	WasteOther:   "Altro",
}

func (w WasteType) Valid() bool {
	_, ok := wasteLabels[w]
	return ok
}

func (w WasteType) Label() string {
	if l, ok := wasteLabels[w]; ok {
		return l
	}
	return string(w)
}

type WasteSchedule struct {
	ID           uuid.UUID `json:"id"`
	HouseholdID  uuid.UUID `json:"household_id"`
	WasteType    WasteType `json:"waste_type"`
	DayOfWeek    int       `json:"day_of_week"`
	ReminderTime string    `json:"reminder_time"`
	DeadlineTime *string   `json:"deadline_time"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// NextCollection is the next weekday with at least one scheduled pickup.
type NextCollection struct {
	DayOfWeek int             `json:"day_of_week"`
	DayLabel  string          `json:"day_label"`
	Schedules []WasteSchedule `json:"schedules"`
}
