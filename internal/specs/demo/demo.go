// Package demo holds example suites that ship with the e2ekit binary.
package demo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"e2ekit/internal/config"
	"e2ekit/internal/discovery"
	"e2ekit/internal/domain"
	"e2ekit/internal/dsl"
	"e2ekit/internal/execution"
	"e2ekit/internal/fixtures"
	"e2ekit/internal/steplog"
)

// ProductsDataset is the fixtures-relative path of the checkout dataset
const ProductsDataset = "checkout/products.dataset.yaml"

// Product is the payload of a checkout dataset entry
type Product struct {
	Name     string `yaml:"name" json:"name"`
	Quantity int    `yaml:"quantity" json:"quantity"`
	UPC      string `yaml:"upc,omitempty" json:"upc,omitempty"`
}

// builtinProducts are used when the project has no products dataset
var builtinProducts = []dsl.Entry[Product]{
	{Title: "single item", Data: Product{Name: "Notebook", Quantity: 1}},
	{Title: "bulk order", Data: Product{Name: "Pencil", Quantity: 24}},
}

// Register adds the demo suites to c. Suites read cfg when they are built, so
// it may still be loaded after Register returns.
func Register(c *execution.Catalog, cfg *config.Config, fs afero.Fs) {
	c.MustAdd("accounts", func(s *execution.Suite) { accounts(s, cfg) })
	c.MustAdd("catalog", catalog)
	c.MustAdd("checkout", func(s *execution.Suite) { checkout(s, cfg, fs) })
	c.MustAdd("downloads", func(s *execution.Suite) { downloads(s, cfg, fs) })
}

func accounts(s *execution.Suite, cfg *config.Config) {
	s.Describe("Accounts", func() {
		dsl.TestCase(s, dsl.Case{
			IDs:   1,
			Title: "environment has base urls",
			Test: func(ctx context.Context) error {
				steplog.FromContext(ctx).Step("Checking base urls", map[string]any{"env": cfg.Environment})
				if cfg.BaseURLs.API == "" || cfg.BaseURLs.App == "" {
					return fmt.Errorf("base urls are not configured for %s", cfg.Environment)
				}
				return nil
			},
		})

		s.Describe("Users", func() {
			dsl.TestCase(s, dsl.Case{
				IDs:       []int{2, 3},
				Title:     "admin credentials are configured",
				Condition: func() bool { return len(cfg.Users) > 0 },
				Test: func(ctx context.Context) error {
					admin, err := cfg.GetUser("admin")
					if err != nil {
						return err
					}
					steplog.FromContext(ctx).Step("Resolved user", map[string]any{"username": admin.Username})
					if !strings.Contains(admin.Username, "@") {
						return fmt.Errorf("admin username %q is not an email", admin.Username)
					}
					return nil
				},
			})
		})
	})
}

func catalog(s *execution.Suite) {
	s.Describe("Catalog", func() {
		dsl.RegisterCases(s, map[string]string{
			"C20": "UPC has twelve digits and a check digit",
			"C21": "UPC check digit validates",
		}, "generated UPCs are valid", func(ctx context.Context, logCase dsl.CaseLog) error {
			upc := fixtures.UPC()
			if len(upc) != 13 {
				return fmt.Errorf("UPC %s has %d digits", upc, len(upc))
			}
			logCase("C20")
			if !fixtures.ValidUPC(upc) {
				return fmt.Errorf("UPC %s has a wrong check digit", upc)
			}
			logCase("C21")
			return nil
		})

		dsl.Theory(s, []dsl.Iteration[string]{
			{IDs: "C22", Title: "season Spring is listed", Data: "Spring"},
			{IDs: "C23", Title: "season Winter is listed", Data: "Winter"},
		}, func(ctx context.Context, season string) error {
			for i := 0; i < 64; i++ {
				if fixtures.Season() == season {
					return nil
				}
			}
			return fmt.Errorf("season %s never generated", season)
		}, domain.ModeNone)

		dsl.RegisterCasesWithMode(s, map[string]string{
			"C24": "secondary address has a number",
		}, "secondary addresses", domain.ModeNone, func(ctx context.Context, logCase dsl.CaseLog) error {
			addr := fixtures.SecondaryAddress()
			if !strings.ContainsAny(addr, "0123456789") {
				return fmt.Errorf("address %q has no number", addr)
			}
			logCase("C24")
			return nil
		})
	})
}

func checkout(s *execution.Suite, cfg *config.Config, fs afero.Fs) {
	products := builtinProducts
	path := filepath.Join(cfg.GetFixturesPath(), ProductsDataset)
	if ok, _ := afero.Exists(fs, path); ok {
		loaded, err := discovery.LoadDataset[Product](fs, path)
		if err != nil {
			panic(err)
		}
		products = loaded
	}

	s.Describe("Checkout", func() {
		dsl.TestGroup(s, dsl.Group[Product]{
			IDs:   "C30",
			Title: "adds products to the cart",
			Data:  products,
			Test: func(ctx context.Context, entry dsl.Entry[Product]) error {
				p := entry.Data
				if p.Quantity < 1 {
					return fmt.Errorf("%s: quantity must be positive, got %d", p.Name, p.Quantity)
				}
				upc := p.UPC
				if upc == "" {
					upc = fixtures.UPC()
				}
				if !fixtures.ValidUPC(upc) {
					return fmt.Errorf("%s: invalid UPC %s", p.Name, upc)
				}
				steplog.FromContext(ctx).Step("Added to cart", map[string]any{"product": p.Name, "upc": upc, "quantity": p.Quantity})
				return nil
			},
		})
	})
}

func downloads(s *execution.Suite, cfg *config.Config, fs afero.Fs) {
	files := fixtures.NewFiles(fs)
	dir := cfg.GetDownloadsPath()

	s.Describe("Downloads", func() {
		dsl.TestCase(s, dsl.Case{
			IDs:   "C40",
			Title: "export lands in the downloads folder",
			Test: func(ctx context.Context) error {
				if err := files.ClearFolder(dir); err != nil {
					return err
				}
				report := filepath.Join(dir, "report.csv")

				// the export finishes in the background, renamed once complete
				go func() {
					time.Sleep(100 * time.Millisecond)
					if _, err := files.ReadOrCreateFile(report+".part", "id,name\n1,Notebook\n"); err == nil {
						_ = fs.Rename(report+".part", report)
					}
				}()

				found, err := fixtures.Recurse(ctx, func(ctx context.Context) ([]string, error) {
					return files.ListFiles(dir)
				}, func(names []string) bool {
					for _, n := range names {
						if n == filepath.Base(report) {
							return true
						}
					}
					return false
				}, fixtures.RecurseOptions{Limit: 10, Delay: 50 * time.Millisecond, Log: "Waiting for export"})
				if err != nil {
					var limit *fixtures.RecurseLimitError
					if errors.As(err, &limit) {
						return fmt.Errorf("export did not appear: %w", err)
					}
					return err
				}

				var csvs []string
				for _, n := range found {
					if filepath.Ext(n) == ".csv" {
						csvs = append(csvs, n)
					}
				}
				return fixtures.Iterate(ctx, csvs, func(ctx context.Context, name string) error {
					content, err := files.ReadOrCreateFile(filepath.Join(dir, name), "")
					if err != nil {
						return err
					}
					if len(content) == 0 {
						return fmt.Errorf("%s is empty", name)
					}
					return files.DeleteFile(filepath.Join(dir, name))
				}, fixtures.RecurseOptions{Delay: time.Millisecond})
			},
		})
	})
}
