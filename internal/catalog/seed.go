package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Seed is the YAML bootstrap document for a fresh deployment.
type Seed struct {
	Client     *SeedClient    `yaml:"client"`
	Categories []SeedCategory `yaml:"categories"`
}

// SeedClient describes the business account created when none exists.
type SeedClient struct {
	BusinessName   string `yaml:"businessName"`
	UserName       string `yaml:"userName"`
	Password       string `yaml:"password"`
	Pin            int    `yaml:"pin"`
	ConvenienceFee string `yaml:"convenienceFee"`
}

type SeedCategory struct {
	Name  string     `yaml:"name"`
	Items []SeedItem `yaml:"items"`
}

// SeedItem keeps money as strings so YAML floats never round.
type SeedItem struct {
	Name              string `yaml:"name"`
	Price             string `yaml:"price"`
	ParcelFeePerPiece string `yaml:"parcelFeePerPiece"`
	Image             string `yaml:"image"`
	Description       string `yaml:"description"`
	Unpublished       bool   `yaml:"unpublished"`
}

// SeedReport counts rows inserted by ApplySeed.
type SeedReport struct {
	CategoriesCreated int
	ItemsCreated      int
	ItemsSkipped      int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// LoadSeed reads and validates a seed file.
func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Validate reports every malformed category or item at once.
func (s *Seed) Validate() error {
	var errs error
	for ci, category := range s.Categories {
		if strings.TrimSpace(category.Name) == "" {
			errs = multierr.Append(errs, fmt.Errorf("categories[%d]: name is required", ci))
		}
		for ii, item := range category.Items {
			prefix := fmt.Sprintf("categories[%d].items[%d]", ci, ii)
			if strings.TrimSpace(item.Name) == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s: name is required", prefix))
			}
			if strings.TrimSpace(item.Image) == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s: image is required", prefix))
			}
			if _, err := parseSeedMoney(item.Price); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: price: %w", prefix, err))
			}
			if _, err := parseSeedMoney(item.ParcelFeePerPiece); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: parcelFeePerPiece: %w", prefix, err))
			}
		}
	}
	return errs
}

// ApplySeed inserts missing categories and items, matching existing rows by name.
// Running it twice leaves the catalog unchanged.
func ApplySeed(ctx context.Context, runner txRunner, repo *Repository, seed *Seed) (SeedReport, error) {
	var report SeedReport
	if seed == nil {
		return report, nil
	}
	if err := seed.Validate(); err != nil {
		return report, err
	}

	err := runner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := repo.WithTx(tx)
		for _, sc := range seed.Categories {
			name := strings.TrimSpace(sc.Name)
			category, err := txRepo.FindActiveCategoryByName(ctx, name)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				category = &models.Category{CategoryName: name}
				if err := txRepo.CreateCategory(ctx, category); err != nil {
					return fmt.Errorf("create category %q: %w", name, err)
				}
				report.CategoriesCreated++
			case err != nil:
				return fmt.Errorf("load category %q: %w", name, err)
			}

			for _, si := range sc.Items {
				itemName := strings.TrimSpace(si.Name)
				_, err := txRepo.FindItemByName(ctx, category.ID, itemName)
				if err == nil {
					report.ItemsSkipped++
					continue
				}
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("load item %q: %w", itemName, err)
				}

				price, _ := parseSeedMoney(si.Price)
				fee, _ := parseSeedMoney(si.ParcelFeePerPiece)
				item := &models.Item{
					CategoryID:        category.ID,
					ItemName:          itemName,
					ItemPrice:         price,
					Image:             strings.TrimSpace(si.Image),
					Description:       strings.TrimSpace(si.Description),
					ParcelFeePerPiece: fee,
					IsAvailable:       true,
					IsPublished:       true,
				}
				if err := txRepo.CreateItem(ctx, item); err != nil {
					return fmt.Errorf("create item %q: %w", itemName, err)
				}
				if si.Unpublished {
					if _, err := txRepo.UpdateItem(ctx, item.ID, map[string]any{columnPublished: false}); err != nil {
						return fmt.Errorf("unpublish item %q: %w", itemName, err)
					}
				}
				report.ItemsCreated++
			}
		}
		return nil
	})
	if err != nil {
		return SeedReport{}, err
	}
	return report, nil
}

func parseSeedMoney(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("must be zero or greater")
	}
	return amount.Round(2), nil
}
