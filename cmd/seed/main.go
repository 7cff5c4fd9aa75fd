package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/velocraft/velocraft-backend/config"
	"github.com/velocraft/velocraft-backend/internal/app/model"
	"github.com/velocraft/velocraft-backend/internal/db"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Seeds the catalog tables. Without arguments the built-in demo bicycle
// catalog is loaded; with an XLSX path the catalog is imported from the
// workbook (sheets: Product, Options, CompatibilityRules, PriceRules).
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	var catalog *catalogImport
	if len(os.Args) >= 2 {
		filePath := os.Args[1]
		fmt.Printf("Reading XLSX file: %s\n", filePath)
		catalog, err = readCatalogFromXLSX(filePath)
		if err != nil {
			log.Fatal("Failed to read XLSX:", err)
		}
	} else {
		fmt.Println("No XLSX file given, using built-in demo catalog")
		catalog = demoCatalog()
	}

	fmt.Printf("Product: %s\n", catalog.product.Name)
	fmt.Printf("Parts: %d, Options: %d\n", len(catalog.parts), countOptions(catalog.parts))
	fmt.Printf("Compatibility rules: %d, Price rules: %d\n", len(catalog.compatRules), len(catalog.priceRules))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	if err := importCatalog(db.GetDB(), catalog); err != nil {
		log.Fatal("Failed to import catalog:", err)
	}

	fmt.Println("Import completed successfully!")
}

// catalogImport holds one product's catalog before IDs are assigned. Rules
// reference options by part and option name; importCatalog resolves them
// after the option rows exist.
type catalogImport struct {
	product     model.Product
	parts       []partImport
	compatRules []compatRuleImport
	priceRules  []priceRuleImport
}

type partImport struct {
	name     string
	required bool
	options  []optionImport
}

type optionImport struct {
	name    string
	price   decimal.Decimal
	inStock bool
}

type optionRef struct {
	part   string
	option string
}

type compatRuleImport struct {
	subject  optionRef
	polarity model.RulePolarity
	object   optionRef
}

type priceRuleImport struct {
	target     *optionRef // nil for product-scoped rules
	amount     decimal.Decimal
	conditions []optionRef
}

func countOptions(parts []partImport) int {
	n := 0
	for _, p := range parts {
		n += len(p.options)
	}
	return n
}

func importCatalog(gdb *gorm.DB, catalog *catalogImport) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		product := catalog.product
		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		// option IDs by (part, option) name for rule resolution
		optionIDs := make(map[optionRef]uint)

		for _, p := range catalog.parts {
			part := model.Part{ProductID: product.ID, Name: p.name, Required: p.required}
			if err := tx.Create(&part).Error; err != nil {
				return fmt.Errorf("failed to create part %q: %w", p.name, err)
			}
			for _, o := range p.options {
				option := model.Option{PartID: part.ID, Name: o.name, Price: o.price, InStock: o.inStock}
				if err := tx.Create(&option).Error; err != nil {
					return fmt.Errorf("failed to create option %q: %w", o.name, err)
				}
				optionIDs[optionRef{part: p.name, option: o.name}] = option.ID
			}
		}

		resolve := func(ref optionRef) (uint, error) {
			id, ok := optionIDs[ref]
			if !ok {
				return 0, fmt.Errorf("unknown option %q of part %q", ref.option, ref.part)
			}
			return id, nil
		}

		for _, r := range catalog.compatRules {
			subjectID, err := resolve(r.subject)
			if err != nil {
				return err
			}
			objectID, err := resolve(r.object)
			if err != nil {
				return err
			}
			rule := model.CompatibilityRule{
				ProductID:       product.ID,
				SubjectOptionID: subjectID,
				ObjectOptionID:  objectID,
				Polarity:        r.polarity,
			}
			if err := tx.Create(&rule).Error; err != nil {
				return fmt.Errorf("failed to create compatibility rule: %w", err)
			}
		}

		for _, r := range catalog.priceRules {
			rule := model.PriceRule{ProductID: product.ID, Amount: r.amount}
			if r.target != nil {
				targetID, err := resolve(*r.target)
				if err != nil {
					return err
				}
				rule.OptionID = &targetID
			}
			for _, cond := range r.conditions {
				condID, err := resolve(cond)
				if err != nil {
					return err
				}
				rule.Conditions = append(rule.Conditions, model.PriceRuleCondition{OptionID: condID})
			}
			if err := tx.Create(&rule).Error; err != nil {
				return fmt.Errorf("failed to create price rule: %w", err)
			}
		}

		return nil
	})
}

// demoCatalog is the bicycle shop catalog used for local development.
func demoCatalog() *catalogImport {
	price := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	return &catalogImport{
		product: model.Product{Name: "Custom Bike", Description: "Build your own bicycle", BasePrice: decimal.Zero},
		parts: []partImport{
			{name: "Frame", required: true, options: []optionImport{
				{name: "Full-suspension", price: price(130), inStock: true},
				{name: "Diamond", price: price(100), inStock: true},
			}},
			{name: "Wheels", required: true, options: []optionImport{
				{name: "Road wheels", price: price(80), inStock: true},
				{name: "Mountain wheels", price: price(100), inStock: true},
				{name: "Fat bike wheels", price: price(120), inStock: true},
			}},
			{name: "Rim color", required: true, options: []optionImport{
				{name: "Red", price: price(20), inStock: true},
				{name: "Black", price: price(20), inStock: true},
			}},
			{name: "Chain", required: true, options: []optionImport{
				{name: "Single-speed chain", price: price(43), inStock: true},
				{name: "8-speed chain", price: price(55), inStock: true},
			}},
		},
		compatRules: []compatRuleImport{
			{
				subject:  optionRef{part: "Frame", option: "Full-suspension"},
				polarity: model.PolarityInclude,
				object:   optionRef{part: "Wheels", option: "Mountain wheels"},
			},
			{
				subject:  optionRef{part: "Frame", option: "Diamond"},
				polarity: model.PolarityExclude,
				object:   optionRef{part: "Wheels", option: "Road wheels"},
			},
			{
				subject:  optionRef{part: "Wheels", option: "Fat bike wheels"},
				polarity: model.PolarityInclude,
				object:   optionRef{part: "Rim color", option: "Black"},
			},
		},
		priceRules: []priceRuleImport{
			{
				target: &optionRef{part: "Rim color", option: "Black"},
				amount: decimal.NewFromInt(30),
				conditions: []optionRef{
					{part: "Frame", option: "Full-suspension"},
					{part: "Wheels", option: "Mountain wheels"},
				},
			},
		},
	}
}

func readCatalogFromXLSX(filePath string) (*catalogImport, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	catalog := &catalogImport{}

	if err := readProductSheet(f, catalog); err != nil {
		return nil, err
	}
	if err := readOptionsSheet(f, catalog); err != nil {
		return nil, err
	}
	if err := readCompatRulesSheet(f, catalog); err != nil {
		return nil, err
	}
	if err := readPriceRulesSheet(f, catalog); err != nil {
		return nil, err
	}

	return catalog, nil
}

// Sheet "Product": header row, one data row (Name, Description, BasePrice).
func readProductSheet(f *excelize.File, catalog *catalogImport) error {
	rows, err := f.GetRows("Product")
	if err != nil {
		return fmt.Errorf("failed to read Product sheet: %w", err)
	}
	if len(rows) < 2 {
		return fmt.Errorf("Product sheet needs a header and one data row")
	}

	row := rows[1]
	if len(row) < 3 {
		return fmt.Errorf("Product sheet row needs Name, Description, BasePrice")
	}
	basePrice, err := decimal.NewFromString(strings.TrimSpace(row[2]))
	if err != nil {
		return fmt.Errorf("invalid base price %q: %w", row[2], err)
	}

	catalog.product = model.Product{
		Name:        strings.TrimSpace(row[0]),
		Description: strings.TrimSpace(row[1]),
		BasePrice:   basePrice,
	}
	return nil
}

// Sheet "Options": Part, Required, Option, Price, InStock. Consecutive rows
// with the same part name fold into one part.
func readOptionsSheet(f *excelize.File, catalog *catalogImport) error {
	rows, err := f.GetRows("Options")
	if err != nil {
		return fmt.Errorf("failed to read Options sheet: %w", err)
	}

	skipped := 0
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 5 {
			skipped++
			continue
		}

		partName := strings.TrimSpace(row[0])
		required := parseBool(row[1])
		optionName := strings.TrimSpace(row[2])
		price, err := decimal.NewFromString(strings.TrimSpace(row[3]))
		if err != nil {
			return fmt.Errorf("row %d: invalid price %q: %w", i+1, row[3], err)
		}
		inStock := parseBool(row[4])

		option := optionImport{name: optionName, price: price, inStock: inStock}
		if n := len(catalog.parts); n > 0 && catalog.parts[n-1].name == partName {
			catalog.parts[n-1].options = append(catalog.parts[n-1].options, option)
		} else {
			catalog.parts = append(catalog.parts, partImport{
				name:     partName,
				required: required,
				options:  []optionImport{option},
			})
		}
	}

	if skipped > 0 {
		fmt.Printf("Options sheet: skipped %d incomplete rows\n", skipped)
	}
	if len(catalog.parts) == 0 {
		return fmt.Errorf("Options sheet has no data rows")
	}
	return nil
}

// Sheet "CompatibilityRules": SubjectPart, SubjectOption, Polarity,
// ObjectPart, ObjectOption.
func readCompatRulesSheet(f *excelize.File, catalog *catalogImport) error {
	rows, err := f.GetRows("CompatibilityRules")
	if err != nil {
		// rules are optional, a missing sheet means an open catalog
		return nil
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 5 {
			continue
		}

		polarity := model.RulePolarity(strings.ToLower(strings.TrimSpace(row[2])))
		if polarity != model.PolarityInclude && polarity != model.PolarityExclude {
			return fmt.Errorf("row %d: invalid polarity %q", i+1, row[2])
		}

		catalog.compatRules = append(catalog.compatRules, compatRuleImport{
			subject:  optionRef{part: strings.TrimSpace(row[0]), option: strings.TrimSpace(row[1])},
			polarity: polarity,
			object:   optionRef{part: strings.TrimSpace(row[3]), option: strings.TrimSpace(row[4])},
		})
	}
	return nil
}

// Sheet "PriceRules": Amount, TargetPart, TargetOption, Conditions. A
// condition cell holds "Part: Option; Part: Option". Empty target columns
// make the rule product-scoped.
func readPriceRulesSheet(f *excelize.File, catalog *catalogImport) error {
	rows, err := f.GetRows("PriceRules")
	if err != nil {
		return nil
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 4 {
			continue
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(row[0]))
		if err != nil {
			return fmt.Errorf("row %d: invalid amount %q: %w", i+1, row[0], err)
		}

		rule := priceRuleImport{amount: amount}
		targetPart := strings.TrimSpace(row[1])
		targetOption := strings.TrimSpace(row[2])
		if targetPart != "" && targetOption != "" {
			rule.target = &optionRef{part: targetPart, option: targetOption}
		}

		for _, pair := range strings.Split(row[3], ";") {
			parts := strings.SplitN(pair, ":", 2)
			if len(parts) != 2 {
				return fmt.Errorf("row %d: invalid condition %q, want \"Part: Option\"", i+1, pair)
			}
			rule.conditions = append(rule.conditions, optionRef{
				part:   strings.TrimSpace(parts[0]),
				option: strings.TrimSpace(parts[1]),
			})
		}

		catalog.priceRules = append(catalog.priceRules, rule)
	}
	return nil
}

func parseBool(value string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return strings.EqualFold(strings.TrimSpace(value), "yes")
	}
	return v
}
