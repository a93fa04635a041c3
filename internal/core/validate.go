package core

// validate.go applies the per-entity rules to parsed rows and produces
// normalized values. Validation never returns an error for bad data:
// every field failure is collected into the row's message list and the
// report summary, so the client sees all problems at once.
//
// Validate is purely deterministic given its inputs. Cross-reference
// fields are checked for presence only here; the optional existence
// check needs the storage collaborator and lives in Service.DryRun.

import (
	"fmt"
	"strings"
)

// Validate checks every row against the entity's template rules.
// A file with zero data rows yields Summary.Errors == 1 and no rows.
func Validate(entity EntityType, rows []RawRow) (*ValidationReport, error) {
	def, err := GetTemplate(entity)
	if err != nil {
		return nil, err
	}

	report := &ValidationReport{
		Columns: def.Headers(),
		Rows:    make([]RowResult, 0, len(rows)),
	}

	if len(rows) == 0 {
		// Empty-file policy: one synthetic error so the summary blocks
		// a later commit.
		report.Summary.Errors = 1
		return report, nil
	}

	known := make(map[string]bool, len(def.Fields))
	for _, f := range def.Fields {
		known[f.Name] = true
	}

	for _, row := range rows {
		result := validateRow(def, row)

		// Unrecognized columns pass through unnormalized under their
		// original header.
		for h, v := range row.Values {
			if !known[h] && v != "" {
				result.Normalized[h] = v
			}
		}

		switch result.Status {
		case StatusError:
			report.Summary.Errors++
		case StatusWarning:
			report.Summary.Warnings++
		default:
			report.Summary.OK++
		}
		report.Rows = append(report.Rows, result)
	}

	return report, nil
}

// validateRow applies every field rule and returns the per-row result.
func validateRow(def TemplateDefinition, row RawRow) RowResult {
	result := RowResult{
		RowNumber:  row.Number,
		Status:     StatusOK,
		Normalized: make(map[string]any, len(def.Fields)),
	}

	for _, spec := range def.Fields {
		raw := CleanCell(row.Values[spec.Name])

		if raw == "" {
			if spec.Required {
				result.fail(fmt.Sprintf("required field %q is empty", spec.Name))
			}
			continue
		}

		switch spec.Type {
		case FieldText, FieldCrossRef:
			result.Normalized[spec.Name] = raw

		case FieldEnum:
			canonical, ok := CanonicalEnum(raw, spec.EnumValues)
			if !ok {
				result.fail(fmt.Sprintf("invalid value %q for %q: must be one of: %s",
					raw, spec.Name, joinDomain(spec.EnumValues)))
				continue
			}
			result.Normalized[spec.Name] = canonical

		case FieldFlag:
			canonical, ok := ToYesNo(raw)
			if !ok {
				result.fail(fmt.Sprintf("invalid value %q for %q: must be Yes or No", raw, spec.Name))
				continue
			}
			result.Normalized[spec.Name] = canonical

		case FieldNumeric:
			n, ok := ToNumber(raw)
			if !ok {
				result.fail(fmt.Sprintf("invalid number %q for %q", raw, spec.Name))
				continue
			}
			if n < 0 {
				result.fail(fmt.Sprintf("%q must be zero or greater, got %q", spec.Name, raw))
				continue
			}
			result.Normalized[spec.Name] = n
		}
	}

	return result
}

// fail records an error message and escalates the row status.
func (r *RowResult) fail(msg string) {
	r.Status = StatusError
	r.Messages = append(r.Messages, msg)
}

// warn records a warning message; it never downgrades an error.
func (r *RowResult) warn(msg string) {
	if r.Status == StatusOK {
		r.Status = StatusWarning
	}
	r.Messages = append(r.Messages, msg)
}

// naturalKey extracts the row's business identifier from its
// normalized values. Empty when any key field failed validation.
func naturalKey(def TemplateDefinition, result RowResult) string {
	parts := make([]string, 0, 1)
	for _, name := range def.KeyFields() {
		v, ok := result.Normalized[name].(string)
		if !ok || v == "" {
			return ""
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, "|")
}

func joinDomain(domain []string) string {
	return strings.Join(domain, ", ")
}
