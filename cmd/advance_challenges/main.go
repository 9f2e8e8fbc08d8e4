package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/mansoorceksport/fitledger/internal/config"
	"github.com/mansoorceksport/fitledger/internal/server"
	"github.com/mansoorceksport/fitledger/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Meant to run once a day from cron: moves challenges along their
// date-driven statuses, then republishes every active leaderboard.
func main() {
	date := flag.String("date", "", "Day to evaluate as YYYY-MM-DD (default: today, UTC)")
	skipPublish := flag.Bool("skip-publish", false, "Do not republish active leaderboards")
	flag.Parse()

	today := time.Now().UTC()
	if *date != "" {
		parsed, err := time.Parse(time.DateOnly, *date)
		if err != nil {
			log.Fatalf("Invalid -date %q: %v", *date, err)
		}
		today = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
	defer redisClient.Close()

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		log.Printf("Warning: Failed to create metrics instruments: %v", err)
	}

	svc := server.NewServices(server.AppDependencies{
		Config:      cfg,
		MongoDB:     client.Database(cfg.MongoDB.Database),
		RedisClient: redisClient,
		Metrics:     metrics,
	})

	fmt.Printf("📅 Advancing challenges as of %s\n", today.Format(time.DateOnly))
	moved, err := svc.Challenges.AdvanceStatuses(ctx, today)
	if err != nil {
		log.Fatalf("Failed to advance challenges: %v", err)
	}
	fmt.Printf("   ✅ Challenges transitioned: %d\n", moved)

	if *skipPublish {
		return
	}
	published, err := svc.Leaderboards.PublishActive(ctx, today)
	if err != nil {
		log.Fatalf("Failed to publish leaderboards after %d: %v", published, err)
	}
	fmt.Printf("   ✅ Leaderboards published: %d\n", published)
}
