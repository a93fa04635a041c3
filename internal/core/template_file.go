package core

// template_file.go renders a template definition into a downloadable
// XLSX workbook: the entity sheet carries the headers, the
// "valid values" hint row, and one example row; a second sheet
// enumerates every closed domain so crews can fill files offline.

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const domainSheetName = "Valid Values"

// BuildTemplateFile generates the XLSX template artifact for an
// entity type.
func BuildTemplateFile(entity EntityType) ([]byte, error) {
	def, err := GetTemplate(entity)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := def.Label
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, row := range [][]string{def.Headers(), def.HintRow(), def.ExampleRow()} {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := writeDomainSheet(f, def); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// TemplateFileName returns the suggested download name for an entity's
// template.
func TemplateFileName(entity EntityType) string {
	return fmt.Sprintf("%s-import-template.xlsx", entity)
}

// writeDomainSheet adds one column per enumerated field, header on top
// and the closed domain values below it.
func writeDomainSheet(f *excelize.File, def TemplateDefinition) error {
	if _, err := f.NewSheet(domainSheetName); err != nil {
		return fmt.Errorf("create domain sheet: %w", err)
	}

	col := 0
	for _, spec := range def.Fields {
		if spec.Type != FieldEnum {
			continue
		}
		col++

		cell, err := excelize.CoordinatesToCellName(col, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(domainSheetName, cell, spec.Name); err != nil {
			return err
		}

		for i, v := range spec.EnumValues {
			cell, err := excelize.CoordinatesToCellName(col, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(domainSheetName, cell, v); err != nil {
				return err
			}
		}
	}

	return nil
}
