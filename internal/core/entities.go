package core

// entities.go declares the import templates for the three registers.
// Each FieldSpec drives the downloadable template (header, hint row,
// example row, valid-values sheet) and the validator, so there is a
// single source of truth for what a column accepts.

// unitsOfMeasure is the closed UOM domain shared by all registers.
var unitsOfMeasure = []string{
	"PCS", "SET", "KG", "LTR", "MTR", "BOX", "CAN", "DRUM", "ROLL", "PAIR",
}

// componentCategories is the closed domain for Component Category.
var componentCategories = []string{
	"Main Engine",
	"Auxiliary Engine",
	"Electrical",
	"Hull & Deck",
	"Navigation",
	"Safety",
	"Piping & Valves",
	"Cargo Handling",
	"Accommodation",
}

// storeCategories is the closed domain for store item Category.
var storeCategories = []string{
	"Provisions",
	"Bonded Stores",
	"Chemicals",
	"Lubricants",
	"Paints & Thinners",
	"Cabin Stores",
	"Deck Stores",
	"Engine Stores",
	"Electrical Stores",
	"Stationery",
	"Medical",
}

func init() {
	RegisterTemplate(TemplateDefinition{
		Entity: EntityComponent,
		Label:  "Components",
		Fields: []FieldSpec{
			{Name: "Component Code", Type: FieldText, Required: true, Key: true, Example: "ME-601", Hint: "Unique code, required"},
			{Name: "Component Name", Type: FieldText, Required: true, Example: "Main Engine", Hint: "Required"},
			{Name: "Component Category", Type: FieldEnum, Required: true, EnumValues: componentCategories, Example: "Main Engine"},
			{Name: "Maker", Type: FieldText, Example: "MAN B&W"},
			{Name: "Model", Type: FieldText, Example: "6S60MC-C"},
			{Name: "Serial No", Type: FieldText, Example: "SN-88210"},
			{Name: "Location", Type: FieldText, Example: "Engine Room"},
			{Name: "Critical", Type: FieldFlag, Example: "Yes"},
			{Name: "Quantity", Type: FieldNumeric, Example: "1", Hint: "Number, zero or greater"},
			{Name: "UOM", Type: FieldEnum, EnumValues: unitsOfMeasure, Example: "PCS"},
		},
	})

	RegisterTemplate(TemplateDefinition{
		Entity: EntitySpare,
		Label:  "Spare Parts",
		Fields: []FieldSpec{
			{Name: "Part Code", Type: FieldText, Required: true, Key: true, Example: "SP-1204", Hint: "Unique code, required"},
			{Name: "Part Name", Type: FieldText, Required: true, Example: "Fuel Injection Valve", Hint: "Required"},
			{Name: "Component Code", Type: FieldCrossRef, Required: true, RefEntity: EntityComponent, Example: "ME-601", Hint: "Parent component code, required"},
			{Name: "Maker Ref", Type: FieldText, Example: "90101-56-302"},
			{Name: "UOM", Type: FieldEnum, EnumValues: unitsOfMeasure, Example: "PCS"},
			{Name: "Min", Type: FieldNumeric, Example: "2", Hint: "Number, zero or greater"},
			{Name: "Max", Type: FieldNumeric, Example: "6", Hint: "Number, zero or greater"},
			{Name: "ROB", Type: FieldNumeric, Example: "4", Hint: "Remaining on board, zero or greater"},
			{Name: "Critical", Type: FieldFlag, Example: "Yes"},
			{Name: "Storage Location", Type: FieldText, Example: "Store Room B, Shelf 3"},
		},
	})

	RegisterTemplate(TemplateDefinition{
		Entity: EntityStore,
		Label:  "Store Items",
		Fields: []FieldSpec{
			{Name: "Item Code", Type: FieldText, Required: true, Key: true, Example: "ST-0033", Hint: "Unique code, required"},
			{Name: "Item Name", Type: FieldText, Required: true, Example: "Cotton Rags", Hint: "Required"},
			{Name: "Category", Type: FieldEnum, Required: true, EnumValues: storeCategories, Example: "Engine Stores"},
			{Name: "UOM", Type: FieldEnum, EnumValues: unitsOfMeasure, Example: "KG"},
			{Name: "Min", Type: FieldNumeric, Example: "10", Hint: "Number, zero or greater"},
			{Name: "ROB", Type: FieldNumeric, Example: "25", Hint: "Remaining on board, zero or greater"},
			{Name: "Remarks", Type: FieldText, Example: "For engine room use"},
		},
	})
}
