package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Guard is the redis fast path in front of the database seat lock. A
// SetNX per seat sheds most of the contention on popular seats before it
// reaches the conditional UPDATE; the database remains the source of
// truth, so a lost guard key only costs an extra failed lock attempt.
type Guard struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *log.Logger
}

func NewGuard(client *redis.Client, ttl time.Duration) *Guard {
	return &Guard{
		Client: client,
		TTL:    ttl,
		Logger: log.Default(),
	}
}

func guardKey(tripID, seatID string) string {
	return fmt.Sprintf("seat_hold:%s:%s", tripID, seatID)
}

// CheckSeatAvailability reports whether a seat has no guard key, without
// claiming it.
func (g *Guard) CheckSeatAvailability(tripID, seatID string) (bool, error) {
	_, err := g.Client.Get(context.Background(), guardKey(tripID, seatID)).Result()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// HoldSeat claims the guard key for one seat.
func (g *Guard) HoldSeat(tripID, seatID, bookingID string) (bool, error) {
	return g.Client.SetNX(context.Background(), guardKey(tripID, seatID), bookingID, g.TTL).Result()
}

// DropSeat releases a guard key, but only for the booking that holds it.
func (g *Guard) DropSeat(tripID, seatID, bookingID string) error {
	ctx := context.Background()
	key := guardKey(tripID, seatID)
	val, err := g.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already expired or dropped
	}
	if err != nil {
		return err
	}
	if val == bookingID {
		_, err := g.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}

// HoldSeats claims guard keys for all seats of a booking. On any failure
// every key already claimed in this call is dropped again.
func (g *Guard) HoldSeats(tripID string, seatIDs []string, bookingID string) (bool, error) {
	held := []string{}
	for _, seatID := range seatIDs {
		ok, err := g.HoldSeat(tripID, seatID, bookingID)
		if err != nil {
			for _, h := range held {
				_ = g.DropSeat(tripID, h, bookingID)
			}
			return false, err
		}
		if !ok {
			for _, h := range held {
				_ = g.DropSeat(tripID, h, bookingID)
			}
			return false, nil
		}
		held = append(held, seatID)
	}
	return true, nil
}

// DropSeats releases the guard keys of a booking's seats.
func (g *Guard) DropSeats(tripID string, seatIDs []string, bookingID string) error {
	var firstErr error
	for _, seatID := range seatIDs {
		err := g.DropSeat(tripID, seatID, bookingID)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
