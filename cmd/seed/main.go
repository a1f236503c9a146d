package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/testimonialhq/testimonials-backend/config"
	"github.com/testimonialhq/testimonials-backend/internal/app/model"
	"github.com/testimonialhq/testimonials-backend/internal/app/repository"
	"github.com/testimonialhq/testimonials-backend/internal/db"
	"github.com/testimonialhq/testimonials-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

// Imports testimonials from an xlsx export. Expected columns:
// Author, Email, Company, Title, Content, Rating, Source, Status.
// Rows that fail validation are skipped, imported rows keep the
// status given in the file (defaulting to pending).

const importColumns = 8

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	repo := repository.NewTestimonialRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	testimonials, err := readTestimonialsFromXLSX(filePath, cfg.Testimonials.MaxRating, cfg.Testimonials.MinContentLength)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total testimonials to import: %d\n", len(testimonials))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := repo.BulkCreate(testimonials, batchSize); err != nil {
		log.Fatal("Failed to bulk create testimonials:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total testimonials imported: %d\n", len(testimonials))
}

func readTestimonialsFromXLSX(filePath string, maxRating, minContentLength int) ([]model.Testimonial, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var testimonials []model.Testimonial
	seen := make(map[string]bool)       // duplicate rows
	slugCounter := make(map[string]int) // slug collisions within the file
	skippedCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < importColumns {
			skippedCount++
			continue
		}

		authorName := strings.TrimSpace(row[0])
		authorEmail := strings.TrimSpace(row[1])
		company := strings.TrimSpace(row[2])
		title := strings.TrimSpace(row[3])
		content := strings.TrimSpace(row[4])
		ratingStr := strings.TrimSpace(row[5])
		source := model.TestimonialSource(strings.TrimSpace(row[6]))
		status := model.TestimonialStatus(strings.TrimSpace(row[7]))

		if authorName == "" || content == "" {
			skippedCount++
			continue
		}
		if len([]rune(content)) < minContentLength {
			skippedCount++
			continue
		}

		rating, err := strconv.Atoi(ratingStr)
		if err != nil || rating < 1 || rating > maxRating {
			skippedCount++
			continue
		}

		if source == "" {
			source = model.SourceOther
		}
		if !model.ValidSource(source) {
			skippedCount++
			continue
		}

		if status == "" {
			status = model.StatusPending
		}
		if !model.ValidStatus(status) {
			skippedCount++
			continue
		}

		key := fmt.Sprintf("%s|%s", authorName, content)
		if seen[key] {
			skippedCount++
			continue
		}
		seen[key] = true

		base := title
		if base == "" {
			base = authorName
		}
		baseSlug := util.Slugify(base)
		if baseSlug == "" {
			baseSlug = "testimonial"
		}
		slug := baseSlug
		if count, exists := slugCounter[baseSlug]; exists {
			slugCounter[baseSlug] = count + 1
			slug = fmt.Sprintf("%s-%d", baseSlug, count+1)
		} else {
			slugCounter[baseSlug] = 1
		}

		testimonials = append(testimonials, model.Testimonial{
			AuthorName:  authorName,
			AuthorEmail: authorEmail,
			Company:     company,
			Title:       title,
			Content:     content,
			Rating:      rating,
			Slug:        slug,
			Source:      source,
			Status:      status,
		})

		if len(testimonials)%500 == 0 {
			fmt.Printf("Processed %d testimonials...\n", len(testimonials))
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid testimonials: %d\n", len(testimonials))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)

	return testimonials, nil
}
