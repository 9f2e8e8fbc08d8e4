package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mansoorceksport/fitledger/internal/config"
	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB.Database)
	repo := repository.NewMongoExerciseRepository(db)

	// MET values from the Compendium of Physical Activities
	exercises := []domain.Exercise{
		// Cardio
		{Name: "Walking (moderate pace)", Category: "cardio", MuscleGroup: "Full Body", METValue: 3.5},
		{Name: "Brisk Walking", Category: "cardio", MuscleGroup: "Full Body", METValue: 4.3},
		{Name: "Running (8 km/h)", Category: "cardio", MuscleGroup: "Legs", METValue: 8.3},
		{Name: "Running (10 km/h)", Category: "cardio", MuscleGroup: "Legs", METValue: 9.8},
		{Name: "Running (12 km/h)", Category: "cardio", MuscleGroup: "Legs", METValue: 11.8},
		{Name: "Cycling (leisure)", Category: "cardio", MuscleGroup: "Legs", METValue: 4.0},
		{Name: "Cycling (moderate)", Category: "cardio", MuscleGroup: "Legs", METValue: 8.0},
		{Name: "Stationary Bike", Category: "cardio", MuscleGroup: "Legs", METValue: 7.0},
		{Name: "Rowing Machine", Category: "cardio", MuscleGroup: "Back/Legs", METValue: 7.0},
		{Name: "Elliptical Trainer", Category: "cardio", MuscleGroup: "Full Body", METValue: 5.0},
		{Name: "Jump Rope", Category: "cardio", MuscleGroup: "Full Body", METValue: 12.3},
		{Name: "Stair Climber", Category: "cardio", MuscleGroup: "Legs", METValue: 9.0},
		{Name: "Swimming (freestyle, moderate)", Category: "cardio", MuscleGroup: "Full Body", METValue: 5.8},
		{Name: "Hiking", Category: "cardio", MuscleGroup: "Legs", METValue: 6.0},

		// Strength
		{Name: "Barbell Squat", Category: "strength", MuscleGroup: "Legs", METValue: 5.0},
		{Name: "Deadlift", Category: "strength", MuscleGroup: "Back/Legs", METValue: 6.0},
		{Name: "Barbell Bench Press", Category: "strength", MuscleGroup: "Chest", METValue: 5.0},
		{Name: "Overhead Press", Category: "strength", MuscleGroup: "Shoulders", METValue: 5.0},
		{Name: "Barbell Row", Category: "strength", MuscleGroup: "Back", METValue: 5.0},
		{Name: "Pull Up", Category: "strength", MuscleGroup: "Back", METValue: 8.0},
		{Name: "Push Up", Category: "strength", MuscleGroup: "Chest", METValue: 8.0},
		{Name: "Walking Lunge", Category: "strength", MuscleGroup: "Legs", METValue: 4.0},
		{Name: "Kettlebell Swing", Category: "strength", MuscleGroup: "Full Body", METValue: 9.8},
		{Name: "Circuit Training", Category: "strength", MuscleGroup: "Full Body", METValue: 8.0},
		{Name: "Machine Weights (light)", Category: "strength", MuscleGroup: "Full Body", METValue: 3.5},

		// Flexibility & core
		{Name: "Hatha Yoga", Category: "flexibility", MuscleGroup: "Full Body", METValue: 2.5},
		{Name: "Power Yoga", Category: "flexibility", MuscleGroup: "Full Body", METValue: 4.0},
		{Name: "Pilates", Category: "flexibility", MuscleGroup: "Core", METValue: 3.0},
		{Name: "Stretching", Category: "flexibility", MuscleGroup: "Full Body", METValue: 2.3},
		{Name: "Plank", Category: "strength", MuscleGroup: "Core", METValue: 3.8},

		// Sports
		{Name: "Basketball (game)", Category: "sports", MuscleGroup: "Full Body", METValue: 8.0},
		{Name: "Football (casual)", Category: "sports", MuscleGroup: "Full Body", METValue: 7.0},
		{Name: "Tennis (singles)", Category: "sports", MuscleGroup: "Full Body", METValue: 8.0},
		{Name: "Badminton", Category: "sports", MuscleGroup: "Full Body", METValue: 5.5},
		{Name: "Boxing (bag)", Category: "sports", MuscleGroup: "Full Body", METValue: 5.5},
	}

	for _, ex := range exercises {
		if err := repo.Create(ctx, &ex); err != nil {
			if errors.Is(err, domain.ErrDuplicateExercise) {
				fmt.Printf("Skipping duplicate: %s\n", ex.Name)
			} else {
				log.Printf("Error creating %s: %v\n", ex.Name, err)
			}
		} else {
			fmt.Printf("Created: %s (MET %.1f)\n", ex.Name, ex.METValue)
		}
	}
	fmt.Println("Seeding Exercises Complete.")
}
