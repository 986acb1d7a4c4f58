// Command conctest fires concurrent reservations at a live database and checks that the
// event is never overbooked and that occupancy matches the reservation count.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventrsvp/config"
	"eventrsvp/internal/domain"
	"eventrsvp/internal/repository/postgres"
	"eventrsvp/internal/services"
)

func main() {
	users := flag.Int("users", 50, "number of concurrent users")
	capacity := flag.Int("capacity", 5, "event capacity")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	if err := run(cfg, logger, *users, *capacity); err != nil {
		logger.Error("conctest failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, users, capacity int) error {
	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.DBDriver, cfg.DBUrl, cfg.DBMaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}

	eventRepo := postgres.NewEventRepository(db)
	store := postgres.NewReservationStore(db, logger)
	svc := services.NewReservationService(store, nil, logger, cfg.ReservationTx)

	event := domain.NewEvent(domain.EventInput{
		Title:    "conctest " + time.Now().Format(time.RFC3339),
		StartsAt: time.Now().Add(24 * time.Hour),
		Capacity: capacity,
	}, "conctest", time.Now().UTC())
	if err := eventRepo.Create(ctx, event); err != nil {
		return err
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		outcome = map[string]int{}
	)
	start := time.Now()
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(ctx, event.ID, uuid.NewString())
			key := "reserved"
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrEventFull):
				key = "full"
			case errors.Is(err, domain.ErrStoreUnavailable):
				key = "unavailable"
			default:
				key = "other"
			}
			mu.Lock()
			outcome[key]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	after, err := eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		return err
	}
	var live int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE event_id = $1`, event.ID).Scan(&live); err != nil {
		return err
	}

	fmt.Printf("attempts: %d  reserved: %d  full: %d  unavailable: %d  other: %d  took: %s\n",
		users, outcome["reserved"], outcome["full"], outcome["unavailable"], outcome["other"], time.Since(start))
	fmt.Printf("capacity: %d  occupancy: %d  live reservations: %d\n", after.Capacity, after.Occupancy, live)

	want := min(users, capacity)
	if outcome["reserved"] != want && outcome["unavailable"] == 0 {
		return fmt.Errorf("expected %d reservations, got %d", want, outcome["reserved"])
	}
	if after.Occupancy > after.Capacity || after.Occupancy != live || live != outcome["reserved"] {
		return fmt.Errorf("inconsistent state: occupancy %d, capacity %d, live %d", after.Occupancy, after.Capacity, live)
	}
	fmt.Println("PASS")
	return nil
}
