// Command main runs the database seeder for the CFP backend.
package main

import (
	"flag"
	"log"

	"cfp/internal/config"
	"cfp/internal/database"
	"cfp/internal/seed"
)

func main() {
	numFormateurs := flag.Int("formateurs", 15, "Number of formateurs to create")
	numApprenants := flag.Int("apprenants", 60, "Number of apprenants to create")
	numConges := flag.Int("conges", 25, "Number of leave requests to create")
	numPermissions := flag.Int("permissions", 15, "Number of permission requests to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Apply a specific seeder preset (e.g., DemoCentre)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")

	if *preset != "" {
		log.Printf("Applying preset: %s (ignoring other flags)\n", *preset)
	} else {
		log.Printf("Target: %d formateurs, %d apprenants, clean=%v\n", *numFormateurs, *numApprenants, *shouldClean)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if *preset != "" {
		if err := s.ApplyPreset(*preset); err != nil {
			log.Fatalf("Preset seeding failed: %v", err)
		}
		return
	}

	if err := seed.Seed(db, seed.Options{
		NumFormateurs:  *numFormateurs,
		NumApprenants:  *numApprenants,
		NumConges:      *numConges,
		NumPermissions: *numPermissions,
		ShouldClean:    false,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
