package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const reservationKeyPrefix = "maintenance:active:technician:"

// TechnicianReservations is a Redis-backed fast-path claim on a
// technician before starting maintenance. The database partial unique
// index remains the authoritative guard; the TTL only bounds how long a
// stale claim can linger if a release is missed.
type TechnicianReservations struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTechnicianReservations builds the reservation store.
func NewTechnicianReservations(client *redis.Client, ttl time.Duration) *TechnicianReservations {
	return &TechnicianReservations{client: client, ttl: ttl}
}

// Reserve claims the technician. Returns false when another claim holds.
func (r *TechnicianReservations) Reserve(ctx context.Context, technicianID string) (bool, error) {
	return r.client.SetNX(ctx, reservationKeyPrefix+technicianID, "1", r.ttl).Result()
}

// Release frees the technician's claim.
func (r *TechnicianReservations) Release(ctx context.Context, technicianID string) error {
	return r.client.Del(ctx, reservationKeyPrefix+technicianID).Err()
}
