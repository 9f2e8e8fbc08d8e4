package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mansoorceksport/fitledger/internal/config"
	"github.com/mansoorceksport/fitledger/internal/server"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Command line flags
	userID := flag.String("user", "", "User ID to recalculate totals for (required)")
	skipRecipes := flag.Bool("skip-recipes", false, "Only recalculate workout aggregates")
	flag.Parse()

	if *userID == "" {
		fmt.Println("Usage: recalculate_totals -user <USER_ID> [-skip-recipes]")
		fmt.Println("\nThis script re-aggregates every workout of a user from its frozen entry calories")
		fmt.Println("and recomputes the stored totals of the user's recipes from current food data.")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
	defer redisClient.Close()

	svc := server.NewServices(server.AppDependencies{
		Config:      cfg,
		MongoDB:     client.Database(cfg.MongoDB.Database),
		RedisClient: redisClient,
	})

	fmt.Printf("🔍 Recalculating workout totals for user: %s\n", *userID)
	workouts, err := svc.Workouts.RecalculateTotals(ctx, *userID)
	if err != nil {
		log.Fatalf("Failed to recalculate workouts: %v", err)
	}
	fmt.Printf("   ✅ Workouts updated: %d\n", workouts)

	if !*skipRecipes {
		fmt.Printf("🔍 Recomputing recipe totals for user: %s\n", *userID)
		recipes, err := svc.Nutrition.RecalculateRecipes(ctx, *userID)
		if err != nil {
			log.Fatalf("Failed to recompute recipes after %d: %v", recipes, err)
		}
		fmt.Printf("   ✅ Recipes updated: %d\n", recipes)
	}
}
