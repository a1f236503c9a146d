package db

import (
	"github.com/testimonialhq/testimonials-backend/internal/app/model"
	"github.com/testimonialhq/testimonials-backend/pkg/logger"
	"github.com/testimonialhq/testimonials-backend/pkg/util"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.TestimonialCategory{},
		&model.Testimonial{},
		&model.TestimonialMedia{},
		&model.ModerationLog{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData()
}

func seedInitialData() error {
	logger.Info("Seeding initial data...")

	if err := seedCategories(); err != nil {
		logger.Error("Failed to seed categories", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedCategories creates the default category set
func seedCategories() error {
	var count int64
	if err := DB.Model(&model.TestimonialCategory{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Categories already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding category data...")

	categories := []model.TestimonialCategory{
		{Name: "Product", Description: "Feedback about products", Order: 1},
		{Name: "Service", Description: "Feedback about customer service", Order: 2},
		{Name: "Support", Description: "Feedback about technical support", Order: 3},
		{Name: "Delivery", Description: "Feedback about shipping and delivery", Order: 4},
		{Name: "General", Description: "Everything else", Order: 5},
	}

	totalInserted := 0
	for _, category := range categories {
		category.IsActive = true
		category.Slug = util.Slugify(category.Name)
		if err := DB.Create(&category).Error; err != nil {
			logger.Error("Failed to create category", err, map[string]interface{}{
				"category": category.Name,
			})
			return err
		}
		totalInserted++
	}

	logger.Info("Categories seeded successfully", map[string]interface{}{
		"total_categories": totalInserted,
	})

	return nil
}
