package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var categories = []string{
	"Technology",
	"Programming",
	"Business",
	"Design",
	"AI",
	"Cameras",
	"Tablets & E-readers",
	"Audio",
	"Drones",
	"Storage",
}

type seedProduct struct {
	name        string
	price       string
	category    string
	stock       int64
	description string
}

var products = []seedProduct{
	{"Canon EOS R10", "979", "Cameras", 7, "Mirrorless digital camera"},
	{"GoPro Hero 12", "399", "Cameras", 14, "Action camera for adventure"},
	{"iPad Air 5", "599", "Tablets & E-readers", 16, "Powerful tablet with M1 chip"},
	{"Kindle Paperwhite", "139", "Tablets & E-readers", 22, "E-reader with glare-free display"},
	{"Bose SoundLink Flex", "149", "Audio", 19, "Portable Bluetooth speaker"},
	{"DJI Mini 3", "469", "Drones", 9, "Compact drone with 4K camera"},
	{"Razer BlackWidow V4", "169", "Design", 13, "RGB mechanical gaming keyboard"},
	{"SteelSeries Arctis Nova 7", "179", "Programming", 11, "Wireless gaming headset"},
	{"Samsung T7 Shield SSD", "129", "Storage", 27, "Portable rugged SSD storage"},
	{"Xiaomi Smart Band 8", "59", "AI", 35, "Fitness tracking smart band"},
}

// 何回流しても同じ状態になる（同名は作らない）
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if err := seed(context.Background(), cfg); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, cfg config.Config) error {
	if cfg.RunMigrations {
		if err := db.Migrate(cfg.DSN()); err != nil {
			return err
		}
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)

	categoryIDs := make(map[string]int64, len(categories))
	for _, name := range categories {
		c, err := categoryRepo.EnsureByName(ctx, name)
		if err != nil {
			return err
		}
		categoryIDs[name] = c.ID
	}
	slog.Info("categories seeded", "count", len(categoryIDs))

	created := 0
	for _, sp := range products {
		categoryID := categoryIDs[sp.category]
		_, ok, err := productRepo.CreateIfAbsent(ctx, model.Product{
			Name:        sp.name,
			Description: sp.description,
			Price:       decimal.RequireFromString(sp.price),
			Stock:       sp.stock,
			CategoryID:  &categoryID,
		})
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}
	slog.Info("products seeded", "created", created, "total", len(products))

	//管理者（ADMIN_EMAIL / ADMIN_PASSWORD）
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		slog.Info("ADMIN_EMAIL/ADMIN_PASSWORD not set, skip admin")
		return nil
	}

	hash, err := auth.NewBcryptPasswordHasher(cfg.BcryptCost).Hash(password)
	if err != nil {
		return err
	}
	if err := userRepo.UpsertByEmail(ctx, &model.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}); err != nil {
		return err
	}
	slog.Info("admin upserted", "email", email)
	return nil
}
