package db

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/exoticmods/exoticbill/internal/models"
)

//go:embed seed_items.yaml
var seedItemsYAML []byte

type seedItem struct {
	Name  string  `yaml:"name"`
	Price float64 `yaml:"price"`
	Stock int     `yaml:"stock"`
}

// seedItems loads the starter catalog if and only if the item table is empty.
// A partially stocked or customized catalog is never touched.
func seedItems(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Item{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	var catalog []seedItem
	if err := yaml.Unmarshal(seedItemsYAML, &catalog); err != nil {
		return fmt.Errorf("parse seed catalog: %w", err)
	}
	for _, it := range catalog {
		item := models.Item{Name: it.Name, UnitPrice: it.Price, Stock: it.Stock}
		if err := db.Create(&item).Error; err != nil {
			return err
		}
	}
	return nil
}
