package bookings

import (
	"errors"
	"fmt"
	"time"
)

type Type string

const (
	TypeIn  Type = "IN"
	TypeOut Type = "OUT"
)

var ErrInvalidBooking = errors.New("bookings: invalid booking")

// Sign даёт знак движения для остатка склада: приход +1, расход -1.
func (t Type) Sign() int {
	if t == TypeIn {
		return 1
	}
	return -1
}

func (t Type) Valid() bool { return t == TypeIn || t == TypeOut }

// Booking: неизменяемая запись журнала. Исправления оформляются встречной записью.
type Booking struct {
	ID        string
	Type      Type
	ProjectID string // пусто для складских приходов
	CreatedAt time.Time
	CreatedBy string
	Note      string
	Items     []Item
}

// Item: строка записи. Code/Description/Unit денормализованы на момент записи.
type Item struct {
	MaterialID   string
	Code         string
	Description  string
	Unit         string
	Quantity     int
	IsConfigured bool // из конфигуратора PV-системы
	IsManual     bool // добавлено монтёром вручную
}

func (b Booking) Validate() error {
	if !b.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidBooking, b.Type)
	}
	if len(b.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidBooking)
	}
	for i, it := range b.Items {
		if it.MaterialID == "" {
			return fmt.Errorf("%w: item %d has no material id", ErrInvalidBooking, i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be > 0", ErrInvalidBooking, i)
		}
	}
	return nil
}
