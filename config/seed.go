package config

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"funeral-backend/models"
	"funeral-backend/utils"
)

// SeedDatabase inserts one demo provider with a package and add-ons when the
// providers table is empty.
func SeedDatabase(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.Provider{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("demo data already present")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		provider := models.Provider{UserID: 1, BusinessName: "Evergreen Funeral Services", Email: "hello@evergreen.local"}
		if err := tx.Create(&provider).Error; err != nil {
			return err
		}

		packages := []models.ServicePackage{
			{ProviderID: provider.ID, Name: "Traditional Service", Price: 4500, IsActive: true},
			{ProviderID: provider.ID, Name: "Memorial Gathering", Price: 2200, IsActive: true},
		}
		if err := tx.Create(&packages).Error; err != nil {
			return err
		}

		addons := []models.AddonCatalogItem{
			{ProviderID: provider.ID, Name: "Floral Wreath", AddonType: models.AddonTypeItem, StockQuantity: utils.PtrInt(10), Price: 150, IsActive: true},
			{ProviderID: provider.ID, Name: "Memorial Candles (set)", AddonType: models.AddonTypeItem, StockQuantity: utils.PtrInt(25), Price: 40, IsActive: true},
			{ProviderID: provider.ID, Name: "Live Streaming", AddonType: models.AddonTypeService, Price: 300, IsActive: true},
		}
		if err := tx.Create(&addons).Error; err != nil {
			return err
		}

		log.Info("demo data seeded", zap.Uint("provider_id", provider.ID))
		return nil
	})
}
