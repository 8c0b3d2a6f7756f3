package etl

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"

	"aegis/pkg/core/apperr"
)

// LoadCategoryTemplate loads the six-column canonical category shape
// spec.md §4.11 describes from YAML, CSV, or XLSX, dispatching on path's
// extension. Missing required columns return a *apperr.Error tagged
// KindConfig.
func LoadCategoryTemplate(path string) ([]CategoryTemplate, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadCategoryYAML(path)
	case ".csv":
		return loadCategoryCSV(path)
	case ".xlsx":
		return loadCategoryXLSX(path)
	default:
		return nil, apperr.Config("etl.category", "unsupported category template extension: "+path, nil)
	}
}

func loadCategoryYAML(path string) ([]CategoryTemplate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Config("etl.category", "failed to read category template: "+path, err)
	}
	var rows []CategoryTemplate
	if err := yaml.Unmarshal(raw, &rows); err != nil {
		return nil, apperr.Config("etl.category", "failed to parse category template YAML: "+path, err)
	}
	return validateCategories(rows)
}

func loadCategoryCSV(path string) ([]CategoryTemplate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Config("etl.category", "failed to open category template: "+path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, apperr.Config("etl.category", "failed to parse category template CSV: "+path, err)
	}
	if len(records) == 0 {
		return nil, apperr.Config("etl.category", "category template CSV has no rows: "+path, nil)
	}

	header := records[0]
	rows := make([]CategoryTemplate, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, categoryFromRow(header, rec))
	}
	return validateCategories(rows)
}

func loadCategoryXLSX(path string) ([]CategoryTemplate, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperr.Config("etl.category", "failed to open category template: "+path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperr.Config("etl.category", "failed to read category template sheet: "+path, err)
	}
	if len(records) == 0 {
		return nil, apperr.Config("etl.category", "category template XLSX has no rows: "+path, nil)
	}

	header := records[0]
	rows := make([]CategoryTemplate, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, categoryFromRow(header, rec))
	}
	return validateCategories(rows)
}

func categoryFromRow(header, row []string) CategoryTemplate {
	get := func(col string) string {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), col) && i < len(row) {
				return row[i]
			}
		}
		return ""
	}
	return CategoryTemplate{
		Category:       get("category"),
		Description:    get("description"),
		CategoryGroup:  get("category_group"),
		ContentType:    get("content_type"),
		SourcePriority: get("source_priority"),
		Notes:          get("notes"),
	}
}

func validateCategories(rows []CategoryTemplate) ([]CategoryTemplate, error) {
	for _, row := range rows {
		if row.Category == "" || row.Description == "" {
			return nil, apperr.Config("etl.category", "category template row missing required column (category, description)", nil)
		}
	}
	return rows, nil
}
