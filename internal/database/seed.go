package database

import (
	"context"
	"fmt"

	"mandi/internal/models"

	"gorm.io/gorm"
)

var defaultCategories = []models.Category{
	{Name: "Vegetables", NameHindi: "सब्ज़ियाँ", Description: "Fresh vegetables"},
	{Name: "Spices", NameHindi: "मसाले", Description: "Whole and ground spices"},
	{Name: "Grains & Flour", NameHindi: "अनाज और आटा", Description: "Rice, wheat, besan and flours"},
	{Name: "Dairy", NameHindi: "डेयरी", Description: "Milk, paneer, curd and butter"},
	{Name: "Oils", NameHindi: "तेल", Description: "Cooking oils and ghee"},
	{Name: "Packaging", NameHindi: "पैकेजिंग", Description: "Plates, cups, bags and foil"},
}

// SeedCategories inserts the default categories that are not present yet.
func SeedCategories(ctx context.Context, db *gorm.DB) (int, error) {
	created := 0
	for _, c := range defaultCategories {
		var count int64
		if err := db.WithContext(ctx).Model(&models.Category{}).Where("name = ?", c.Name).Count(&count).Error; err != nil {
			return created, fmt.Errorf("failed to look up category %s: %w", c.Name, err)
		}
		if count > 0 {
			continue
		}
		c.IsActive = true
		if err := db.WithContext(ctx).Create(&c).Error; err != nil {
			return created, fmt.Errorf("failed to seed category %s: %w", c.Name, err)
		}
		created++
	}
	return created, nil
}
