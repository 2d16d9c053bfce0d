package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"cloud.google.com/go/spanner"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
	"github.com/light-bringer/storefront-filters/internal/app/filter/repo"
	"github.com/light-bringer/storefront-filters/internal/pkg/committer"
	"github.com/light-bringer/storefront-filters/internal/pkg/logging"
)

// Config for the seed job
type Config struct {
	SpannerDB   string
	CatalogFile string
	DryRun      bool
}

// catalogFile is the YAML layout of a catalog seed.
type catalogFile struct {
	Shop     string `yaml:"shop"`
	Products []struct {
		Handle      string          `yaml:"handle"`
		Vendor      string          `yaml:"vendor"`
		ProductType string          `yaml:"productType"`
		Tags        []string        `yaml:"tags"`
		Options     []domain.Option `yaml:"options"`
		MinPrice    *float64        `yaml:"minPrice"`
		MaxPrice    *float64        `yaml:"maxPrice"`
	} `yaml:"products"`
	// Collections maps a collection handle to product handles in display order.
	Collections map[string][]string `yaml:"collections"`
}

func main() {
	config := Config{}
	flag.StringVar(&config.SpannerDB, "database", os.Getenv("SPANNER_DATABASE"), "Spanner database (format: projects/PROJECT/instances/INSTANCE/databases/DATABASE)")
	flag.StringVar(&config.CatalogFile, "file", "", "YAML catalog file (required)")
	flag.BoolVar(&config.DryRun, "dry-run", false, "Validate the file and count mutations without writing")
	flag.Parse()

	logger, err := logging.New("info", true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if config.CatalogFile == "" {
		logger.Fatal("-file flag is required")
	}
	if config.SpannerDB == "" && !config.DryRun {
		logger.Fatal("-database flag or SPANNER_DATABASE is required")
	}

	if err := seed(context.Background(), config, logger); err != nil {
		logger.Fatal("Seed failed", zap.Error(err))
	}
}

func seed(ctx context.Context, config Config, logger *zap.Logger) error {
	raw, err := os.ReadFile(config.CatalogFile)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	shop, products, collections, err := parseCatalog(raw)
	if err != nil {
		return err
	}

	plan, err := repo.NewCatalogWriter().ReplaceShopPlan(shop, products, collections)
	if err != nil {
		return err
	}

	logger.Info("Catalog plan built",
		zap.String("shop", shop),
		zap.Int("products", len(products)),
		zap.Int("collections", len(collections)),
		zap.Int("mutations", plan.Count()),
	)

	if config.DryRun {
		logger.Info("DRY RUN: nothing written")
		return nil
	}

	client, err := spanner.NewClient(ctx, config.SpannerDB)
	if err != nil {
		return fmt.Errorf("failed to create Spanner client: %w", err)
	}
	defer client.Close()

	comm := committer.NewCommitter(client)
	if plan.Count() <= committer.MaxMutationsPerCommit {
		if err := comm.Apply(ctx, plan); err != nil {
			return fmt.Errorf("failed to write catalog: %w", err)
		}
	} else {
		// The delete mutations come first, so a partial failure leaves a
		// truncated mirror rather than a mix of old and new rows.
		logger.Warn("Catalog too large for one commit, writing in batches", zap.Int("mutations", plan.Count()))
		n, err := comm.ApplyInBatches(ctx, plan, committer.MaxMutationsPerCommit)
		if err != nil {
			return fmt.Errorf("failed to write catalog after %d batches: %w", n, err)
		}
	}

	logger.Info("Catalog mirror replaced", zap.String("shop", shop))
	return nil
}

func parseCatalog(raw []byte) (string, []repo.MirrorProduct, map[string][]string, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return "", nil, nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	products := make([]repo.MirrorProduct, 0, len(file.Products))
	for _, p := range file.Products {
		products = append(products, repo.MirrorProduct{
			ProductRecord: domain.ProductRecord{
				Handle:      p.Handle,
				Vendor:      p.Vendor,
				ProductType: p.ProductType,
				Tags:        p.Tags,
				Options:     p.Options,
			},
			MinPrice: p.MinPrice,
			MaxPrice: p.MaxPrice,
		})
	}
	return file.Shop, products, file.Collections, nil
}
