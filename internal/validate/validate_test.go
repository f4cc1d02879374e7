package validate

import (
	"errors"
	"testing"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/model"
)

type sample struct {
	Name      string          `json:"name" validate:"required,max=10"`
	Frequency model.Frequency `json:"frequency" validate:"enum"`
	Reminder  string          `json:"reminder_time" validate:"hhmm"`
	Day       int             `json:"due_day" validate:"min=1,max=31"`
	Email     string          `json:"email" validate:"omitempty,email"`
}

func valid() sample {
	return sample{Name: "Piatti", Frequency: model.FrequencyDaily, Reminder: "20:30", Day: 5}
}

func TestStructValid(t *testing.T) {
	if err := Struct(valid()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructMessages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*sample)
		want   string
	}{
		{"required", func(s *sample) { s.Name = "" }, "name is required"},
		{"max string", func(s *sample) { s.Name = "way too long name" }, "name must be at most 10 characters"},
		{"enum", func(s *sample) { s.Frequency = "yearly" }, "frequency has an unsupported value"},
		{"hhmm", func(s *sample) { s.Reminder = "25:00" }, "reminder_time must be a time in HH:MM format"},
		{"min int", func(s *sample) { s.Day = 0 }, "due_day must be at least 1"},
		{"email", func(s *sample) { s.Email = "nope" }, "email must be a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := Struct(s)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
			if got := apperr.Message(err); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}
