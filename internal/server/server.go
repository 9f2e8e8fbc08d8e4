package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/fitledger/internal/config"
	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/engine"
	"github.com/mansoorceksport/fitledger/internal/handler"
	"github.com/mansoorceksport/fitledger/internal/middleware"
	"github.com/mansoorceksport/fitledger/internal/repository"
	"github.com/mansoorceksport/fitledger/internal/service"
	"github.com/mansoorceksport/fitledger/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	// Archive overrides the object store; nil builds one from Config.S3
	Archive domain.ArchiveRepository
	Metrics *telemetry.Metrics
}

// Services is the wired service layer, shared by the HTTP app and the CLI tools
type Services struct {
	Profiles     *service.ProfileService
	Workouts     *service.WorkoutService
	Nutrition    *service.NutritionService
	Goals        *service.GoalService
	Challenges   *service.ChallengeService
	Leaderboards *service.LeaderboardService
	Dashboard    *service.DashboardService

	ExerciseRepo domain.ExerciseRepository
}

// NewServices builds repositories and services over the given stores
func NewServices(deps AppDependencies) *Services {
	cfg := deps.Config
	cacheTTL := cfg.Redis.CacheTTL

	// Initialize repositories
	cacheRepo := repository.NewRedisCacheRepository(deps.RedisClient)
	profileRepo := repository.NewMongoProfileRepository(deps.MongoDB)
	exerciseRepo := repository.NewCachedExerciseRepository(repository.NewMongoExerciseRepository(deps.MongoDB), cacheRepo)
	workoutRepo := repository.NewMongoWorkoutRepository(deps.MongoDB)
	foodRepo := repository.NewMongoFoodRepository(deps.MongoDB)
	recipeRepo := repository.NewMongoRecipeRepository(deps.MongoDB)
	mealRepo := repository.NewMongoMealEntryRepository(deps.MongoDB)
	waterRepo := repository.NewMongoWaterIntakeRepository(deps.MongoDB)
	nutritionGoalRepo := repository.NewMongoNutritionGoalRepository(deps.MongoDB)
	goalRepo := repository.NewMongoGoalRepository(deps.MongoDB)
	challengeRepo := repository.NewMongoChallengeRepository(deps.MongoDB)
	participantRepo := repository.NewMongoParticipantRepository(deps.MongoDB)
	progressRepo := repository.NewMongoChallengeProgressRepository(deps.MongoDB)
	counterRepo := repository.NewMongoCounterRepository(deps.MongoDB)
	leaderboardRepo := repository.NewMongoLeaderboardRepository(deps.MongoDB)

	archive := deps.Archive
	if archive == nil {
		archive = newArchive(cfg.S3)
	}

	scaling, err := engine.ParseRecipeScaling(cfg.Engine.RecipeScaling)
	if err != nil {
		log.Printf("Warning: %v, falling back to weight scaling", err)
		scaling = engine.RecipeScalingByWeight
	}

	// Initialize services
	profileService := service.NewProfileService(profileRepo, cacheRepo, cacheTTL)
	workoutService := service.NewWorkoutService(exerciseRepo, workoutRepo, profileService, cacheRepo, deps.Metrics)
	nutritionService := service.NewNutritionService(service.NutritionRepositories{
		Foods:          foodRepo,
		Recipes:        recipeRepo,
		Meals:          mealRepo,
		Water:          waterRepo,
		NutritionGoals: nutritionGoalRepo,
		Workouts:       workoutRepo,
		Profiles:       profileRepo,
	}, cacheRepo, cacheTTL, scaling, deps.Metrics)
	goalService := service.NewGoalService(goalRepo)
	challengeService := service.NewChallengeService(challengeRepo, participantRepo, progressRepo, counterRepo, deps.Metrics)
	leaderboardService := service.NewLeaderboardService(
		leaderboardRepo,
		workoutRepo,
		participantRepo,
		cacheRepo,
		archive,
		cacheTTL,
		cfg.Leaderboard.DefaultMaxEntries,
		deps.Metrics,
	)
	dashboardService := service.NewDashboardService(profileService, workoutService, nutritionService, goalService)

	return &Services{
		Profiles:     profileService,
		Workouts:     workoutService,
		Nutrition:    nutritionService,
		Goals:        goalService,
		Challenges:   challengeService,
		Leaderboards: leaderboardService,
		Dashboard:    dashboardService,
		ExerciseRepo: exerciseRepo,
	}
}

func newArchive(cfg config.S3Config) domain.ArchiveRepository {
	if !cfg.Enabled {
		return repository.NoopArchiveRepository{}
	}
	s3Repo, err := repository.NewS3ArchiveRepository(context.Background(), cfg)
	if err != nil {
		log.Printf("Warning: Failed to initialize S3 archive, leaderboard archiving disabled: %v", err)
		return repository.NoopArchiveRepository{}
	}
	return s3Repo
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	svc := NewServices(deps)
	cfg := deps.Config

	// Initialize handlers
	profileHandler := handler.NewProfileHandler(svc.Profiles, svc.Dashboard)
	workoutHandler := handler.NewWorkoutHandler(svc.Workouts, svc.ExerciseRepo)
	nutritionHandler := handler.NewNutritionHandler(svc.Nutrition)
	goalHandler := handler.NewGoalHandler(svc.Goals)
	challengeHandler := handler.NewChallengeHandler(svc.Challenges)
	leaderboardHandler := handler.NewLeaderboardHandler(svc.Leaderboards)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Fitledger API",
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(telemetry.FiberMiddleware())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "fitledger",
		})
	})

	auth := middleware.VerifyToken(cfg.JWT.Secret, cfg.JWT.Issuer)
	adminOnly := middleware.AuthorizeRole(domain.RoleAdmin)
	idempotent := middleware.IdempotencyMiddleware(deps.RedisClient, cfg.Server.IdempotencyTTL)

	// API v1 routes
	v1 := app.Group("/v1")

	// ===========================================
	// MEMBER API - /v1/me/*
	// ===========================================
	me := v1.Group("/me")
	me.Use(auth)
	me.Use(middleware.AuthorizeRole(domain.RoleMember, domain.RoleAdmin))

	me.Get("/profile", profileHandler.GetProfile)
	me.Put("/profile", profileHandler.UpdateProfile)
	me.Get("/metrics", profileHandler.GetMetrics)
	me.Get("/dashboard", profileHandler.GetDashboard)

	meWorkouts := me.Group("/workouts")
	meWorkouts.Post("/", idempotent, workoutHandler.CreateWorkout)
	meWorkouts.Get("/", workoutHandler.ListWorkouts)
	meWorkouts.Get("/streak", workoutHandler.GetStreak)
	meWorkouts.Get("/:id", workoutHandler.GetWorkout)
	meWorkouts.Delete("/:id", workoutHandler.DeleteWorkout)
	meWorkouts.Patch("/:id/status", workoutHandler.SetStatus)
	meWorkouts.Post("/:id/complete", workoutHandler.CompleteWorkout)
	meWorkouts.Post("/:id/exercises", idempotent, workoutHandler.AddExercise)
	meWorkouts.Patch("/:id/exercises/:entryId", workoutHandler.UpdateWorkoutExercise)
	meWorkouts.Delete("/:id/exercises/:entryId", workoutHandler.RemoveWorkoutExercise)

	meMeals := me.Group("/meals")
	meMeals.Post("/", idempotent, nutritionHandler.LogMeal)
	meMeals.Get("/", nutritionHandler.ListMeals)
	meMeals.Delete("/:id", nutritionHandler.DeleteMeal)

	me.Post("/water", idempotent, nutritionHandler.LogWater)
	me.Get("/water", nutritionHandler.GetWater)

	meNutrition := me.Group("/nutrition")
	meNutrition.Get("/goal", nutritionHandler.GetNutritionGoal)
	meNutrition.Put("/goal", nutritionHandler.SetNutritionGoal)
	meNutrition.Get("/summary", nutritionHandler.GetDailySummary)

	meGoals := me.Group("/goals")
	meGoals.Post("/", goalHandler.CreateGoal)
	meGoals.Get("/", goalHandler.ListGoals)
	meGoals.Get("/:id", goalHandler.GetGoal)
	meGoals.Post("/:id/progress", idempotent, goalHandler.RecordProgress)
	meGoals.Patch("/:id/status", goalHandler.UpdateStatus)

	// ===========================================
	// EXERCISES & FOODS API (Shared)
	// ===========================================
	// Public Read, Admin Write

	// Exercises
	v1.Get("/exercises", workoutHandler.ListExercises)
	adminEx := v1.Group("/exercises")
	adminEx.Use(auth, adminOnly)
	adminEx.Post("/", workoutHandler.CreateExercise)
	adminEx.Put("/:id", workoutHandler.UpdateExercise)
	adminEx.Delete("/:id", workoutHandler.DeleteExercise)

	// Foods
	v1.Get("/foods", nutritionHandler.SearchFoods)
	v1.Get("/foods/:id", nutritionHandler.GetFood)
	v1.Get("/foods/:id/serving", nutritionHandler.GetFoodServing)
	adminFoods := v1.Group("/foods")
	adminFoods.Use(auth, adminOnly)
	adminFoods.Post("/", nutritionHandler.CreateFood)
	adminFoods.Put("/:id", nutritionHandler.UpdateFood)
	adminFoods.Delete("/:id", nutritionHandler.DeleteFood)

	// Recipes
	recipes := v1.Group("/recipes")
	recipes.Use(auth)
	recipes.Post("/", nutritionHandler.CreateRecipe)
	recipes.Get("/", nutritionHandler.ListRecipes)
	recipes.Get("/:id", nutritionHandler.GetRecipe)
	recipes.Delete("/:id", nutritionHandler.DeleteRecipe)
	recipes.Put("/:id/ingredients", nutritionHandler.SetIngredients)
	recipes.Post("/:id/ingredients", nutritionHandler.AddIngredient)
	recipes.Delete("/:id/ingredients/:foodId", nutritionHandler.RemoveIngredient)

	// ===========================================
	// CHALLENGES & LEADERBOARDS
	// ===========================================
	challenges := v1.Group("/challenges")
	challenges.Use(auth)
	challenges.Post("/", challengeHandler.CreateChallenge)
	challenges.Get("/", challengeHandler.ListChallenges)
	challenges.Get("/:id", challengeHandler.GetChallenge)
	challenges.Patch("/:id/status", challengeHandler.TransitionChallenge)
	challenges.Post("/:id/join", challengeHandler.JoinChallenge)
	challenges.Post("/:id/progress", idempotent, challengeHandler.RecordProgress)
	challenges.Get("/:id/progress", challengeHandler.GetProgressHistory)
	challenges.Get("/:id/standings", challengeHandler.GetStandings)
	challenges.Post("/:id/dropout", challengeHandler.DropOut)
	challenges.Post("/:id/participants/:userId/disqualify", adminOnly, challengeHandler.Disqualify)

	leaderboards := v1.Group("/leaderboards")
	leaderboards.Use(auth)
	leaderboards.Get("/", leaderboardHandler.ListLeaderboards)
	leaderboards.Get("/:id", leaderboardHandler.GetLeaderboard)
	leaderboards.Post("/", adminOnly, leaderboardHandler.CreateLeaderboard)
	leaderboards.Post("/:id/publish", adminOnly, leaderboardHandler.PublishLeaderboard)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
