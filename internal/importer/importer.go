// Package importer loads cards from spreadsheets into a deck.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"flashstudy/internal/database"
	"flashstudy/internal/models"
	"flashstudy/internal/repository"
)

// Config describes where the cards live in the sheet
type Config struct {
	UserID    int64
	DeckName  string
	DeckColor string
	SheetName string // empty means the first sheet
	StartRow  int    // 1-based; rows before it are headers
}

// Result holds the outcome of an import
type Result struct {
	DeckID      int64
	DeckCreated bool
	Processed   int
	Created     int
	Skipped     int
	Errors      []string
}

// Importer writes spreadsheet rows as new cards
type Importer struct {
	db          *database.DB
	initialEase float64
	log         logrus.FieldLogger
}

// New creates an importer. New cards start with initialEase.
func New(db *database.DB, initialEase float64, log logrus.FieldLogger) *Importer {
	return &Importer{db: db, initialEase: initialEase, log: log}
}

// ImportFile imports an .xlsx or .csv file, picking the format by extension
func (im *Importer) ImportFile(ctx context.Context, path string, cfg Config) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var rows [][]string
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		rows, err = readCSV(f)
	} else {
		rows, err = readXLSX(f, cfg.SheetName)
	}
	if err != nil {
		return nil, err
	}
	return im.ImportRows(ctx, rows, cfg)
}

// ImportXLSX imports cards from an Excel workbook
func (im *Importer) ImportXLSX(ctx context.Context, r io.Reader, cfg Config) (*Result, error) {
	rows, err := readXLSX(r, cfg.SheetName)
	if err != nil {
		return nil, err
	}
	return im.ImportRows(ctx, rows, cfg)
}

func readXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

// ImportRows writes rows of (front, back, tags) as cards. Rows without a
// front or back are skipped and reported. All cards commit together.
func (im *Importer) ImportRows(ctx context.Context, rows [][]string, cfg Config) (*Result, error) {
	if cfg.UserID <= 0 || strings.TrimSpace(cfg.DeckName) == "" {
		return nil, fmt.Errorf("%w: user and deck name are required", models.ErrInvalidParameter)
	}
	startRow := cfg.StartRow
	if startRow < 1 {
		startRow = 2
	}

	result := &Result{Errors: []string{}}
	now := time.Now().UTC().Truncate(time.Second)

	err := im.db.WithTx(ctx, func(tx *database.Tx) error {
		decks := repository.NewDeckRepository(tx)
		deck, err := decks.FindByName(ctx, cfg.UserID, cfg.DeckName)
		if err != nil {
			return err
		}
		if deck == nil {
			deck = &models.Deck{UserID: cfg.UserID, Name: cfg.DeckName, Color: cfg.DeckColor, CreatedAt: now}
			if err := decks.Create(ctx, deck); err != nil {
				return err
			}
			result.DeckCreated = true
		}
		result.DeckID = deck.ID

		cards := repository.NewCardRepository(tx)
		for i, row := range rows {
			if i < startRow-1 {
				continue
			}
			result.Processed++

			front, back := cell(row, 0), cell(row, 1)
			if front == "" || back == "" {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: front and back are required", i+1))
				continue
			}
			card := &models.Card{
				DeckID:     deck.ID,
				Front:      front,
				Back:       back,
				Tags:       models.ParseTagList(cell(row, 2)),
				EaseFactor: im.initialEase,
				CreatedAt:  now,
			}
			if err := cards.Create(ctx, card); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	im.log.WithFields(logrus.Fields{
		"deck_id": result.DeckID,
		"created": result.Created,
		"skipped": result.Skipped,
	}).Info("Cards imported")
	return result, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
