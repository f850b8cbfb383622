package domain

import "time"

// ATM models a serviced cash machine.
type ATM struct {
	ID           string
	SerialNumber string
	Model        string
	ZoneID       string
	ClientID     string
	Address      string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Zone is a geographic service area.
type Zone struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Client is a bank or operator owning ATMs.
type Client struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
