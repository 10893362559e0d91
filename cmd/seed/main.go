package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"fitnessbooking/internal/config"
	"fitnessbooking/internal/database"
	"fitnessbooking/internal/modules/booking"
	"fitnessbooking/internal/modules/catalog"
	"fitnessbooking/internal/pkg/tz"
	"fitnessbooking/internal/repository"
)

type seedClass struct {
	name       string
	instructor string
	daysAhead  int
	clock      string
	slots      int
}

var schedule = []seedClass{
	{"Sunrise Yoga", "Priya Sharma", 1, "06:30", 20},
	{"Zumba", "Rahul Verma", 1, "18:00", 25},
	{"HIIT Blast", "Ananya Iyer", 2, "07:00", 15},
	{"Power Yoga", "Priya Sharma", 3, "06:30", 2},
	{"Spin Express", "Karan Mehta", 4, "19:30", 12},
}

var members = []struct{ name, email string }{
	{"Asha Rao", "asha@example.com"},
	{"Vikram Singh", "vikram@example.com"},
	{"Meera Nair", "meera@example.com"},
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.ConnectQuiet(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// bookings reference classes, so they go first
	log.Println("Cleaning old data...")
	for _, table := range []string{"bookings", "fitness_classes"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("clean %s failed: %v", table, err)
		}
	}

	clock, err := tz.NewNormalizer(cfg.DefaultTimezone, nil)
	if err != nil {
		log.Fatal(err)
	}

	classRepo := repository.NewClassRepository(db)
	catalogService := catalog.NewService(classRepo, clock, nil)
	bookingService := booking.NewService(
		repository.NewStore(db),
		repository.NewBookingRepository(db),
		classRepo,
		clock,
		nil,
		nil,
	)

	ctx := context.Background()
	today := time.Now().In(clock.DefaultLocation())

	log.Println("Creating classes...")
	classIDs := make([]string, 0, len(schedule))
	for _, sc := range schedule {
		day := today.AddDate(0, 0, sc.daysAhead).Format("2006-01-02")
		c, err := catalogService.CreateClass(ctx, catalog.CreateClassRequest{
			Name:           sc.name,
			Instructor:     sc.instructor,
			DateTime:       fmt.Sprintf("%sT%s:00", day, sc.clock),
			AvailableSlots: sc.slots,
		})
		if err != nil {
			log.Fatalf("create class %q failed: %v", sc.name, err)
		}
		classIDs = append(classIDs, c.ID)
		log.Printf("class %s %q at %s (%d slots)", c.ID, c.Name, c.StartTime.In(clock.DefaultLocation()).Format(time.RFC3339), c.TotalSlots)
	}

	log.Println("Creating bookings...")
	var booked int
	for i, m := range members {
		for _, id := range []string{classIDs[0], classIDs[3], classIDs[i%len(classIDs)]} {
			_, err := bookingService.CreateBooking(ctx, booking.CreateBookingRequest{
				ClassID:   id,
				UserName:  m.name,
				UserEmail: m.email,
			})
			switch {
			case err == nil:
				booked++
			case errors.Is(err, booking.ErrDuplicateBooking), errors.Is(err, booking.ErrNoCapacity):
				log.Printf("skip %s -> %s: %v", m.email, id, err)
			default:
				log.Fatalf("booking failed: %v", err)
			}
		}
	}

	log.Printf("Seed complete: classes=%d bookings=%d", len(classIDs), booked)
}
