// Package seed provides database seeding utilities for development and testing.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"wayfarer/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// Fixtures is the curated built-in directory content. Objectives and guides
// are the platform's editorial catalog; contests carry relative day offsets
// so a fresh environment always has one open contest.
type Fixtures struct {
	Objectives []ObjectiveFixture `yaml:"objectives"`
	Guides     []GuideFixture     `yaml:"guides"`
	Contests   []ContestFixture   `yaml:"contests"`
}

type ObjectiveFixture struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Region      string `yaml:"region"`
	Description string `yaml:"description"`
}

type GuideFixture struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Region      string `yaml:"region"`
	Languages   string `yaml:"languages"`
	Description string `yaml:"description"`
}

type ContestFixture struct {
	Title            string `yaml:"title"`
	Slug             string `yaml:"slug"`
	Description      string `yaml:"description"`
	StartsOffsetDays int    `yaml:"starts_offset_days"`
	EndsOffsetDays   int    `yaml:"ends_offset_days"`
}

// LoadFixtures parses the embedded fixture catalog.
func LoadFixtures() (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(fixturesYAML, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

// Directory seeds the built-in objectives, guides, and contests. Upserts by
// slug so re-running refreshes editorial fields without duplicating rows.
func Directory(db *gorm.DB) error {
	fixtures, err := LoadFixtures()
	if err != nil {
		return err
	}

	slugConflict := func(columns ...string) clause.OnConflict {
		return clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}
	}

	for _, item := range fixtures.Objectives {
		objective := models.Objective{
			Name:        item.Name,
			Slug:        item.Slug,
			Region:      item.Region,
			Description: item.Description,
		}
		if err := db.Clauses(slugConflict("name", "region", "description", "updated_at")).
			Create(&objective).Error; err != nil {
			return fmt.Errorf("seed objective %s: %w", item.Slug, err)
		}
	}

	for _, item := range fixtures.Guides {
		guide := models.Guide{
			Name:        item.Name,
			Slug:        item.Slug,
			Region:      item.Region,
			Languages:   item.Languages,
			Description: item.Description,
		}
		if err := db.Clauses(slugConflict("name", "region", "languages", "description", "updated_at")).
			Create(&guide).Error; err != nil {
			return fmt.Errorf("seed guide %s: %w", item.Slug, err)
		}
	}

	now := time.Now()
	for _, item := range fixtures.Contests {
		contest := models.Contest{
			Title:       item.Title,
			Slug:        item.Slug,
			Description: item.Description,
			StartsAt:    now.AddDate(0, 0, item.StartsOffsetDays),
			EndsAt:      now.AddDate(0, 0, item.EndsOffsetDays),
		}
		if err := db.Clauses(slugConflict("title", "description", "updated_at")).
			Create(&contest).Error; err != nil {
			return fmt.Errorf("seed contest %s: %w", item.Slug, err)
		}
	}

	return nil
}
