// Package util provides reflection helpers for mapping Go structs onto JSON
// payloads and primary-key filters.
package util

import (
	"errors"
	"reflect"
	"sort"
	"strings"
)

// PrimaryKeyInfo holds information about primary key fields.
// Supports both single PK and composite PK (CPK).
type PrimaryKeyInfo struct {
	Fields  []reflect.StructField // Struct fields in declaration order
	Values  []reflect.Value       // Field values in declaration order
	Columns []string              // Wire column names in declaration order
}

// IsSingle returns true if this is a single-column primary key.
func (pk *PrimaryKeyInfo) IsSingle() bool {
	return len(pk.Columns) == 1
}

// IsComposite returns true if this is a composite primary key.
func (pk *PrimaryKeyInfo) IsComposite() bool {
	return len(pk.Columns) > 1
}

// parseDBTag parses db tag to extract column name and pk flag.
//
// Supported formats:
//   - "pk"           -> column="pk", isPK=true (legacy single PK)
//   - "column"       -> column="column", isPK=false
//   - "column,pk"    -> column="column", isPK=true (composite PK)
//   - "-"            -> column="-", isPK=false (skip field)
func parseDBTag(tag string) (column string, isPK bool) {
	parts := strings.Split(tag, ",")
	column = strings.TrimSpace(parts[0])

	// Check for pk in additional parts
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "pk" {
			isPK = true
			break
		}
	}

	// Legacy: db:"pk" means column IS "pk" AND it's a primary key
	if column == "pk" {
		isPK = true
	}

	return column, isPK
}

// parseJSONTag parses a json tag into its name and omitempty flag.
// An empty name means the field name applies unchanged.
func parseJSONTag(tag string) (name string, omitempty, skip bool) {
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "-" && len(parts) == 1 {
		return "", false, true
	}
	for _, part := range parts[1:] {
		if part == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

// ColumnName resolves the wire name of a struct field. The json tag wins
// because payloads travel as JSON; a db tag covers structs shared with SQL
// code; the Go field name is the fallback.
func ColumnName(field reflect.StructField) (name string, omitempty, skip bool) {
	if tag, ok := field.Tag.Lookup("json"); ok {
		jsonName, jsonOmit, jsonSkip := parseJSONTag(tag)
		if jsonSkip {
			return "", false, true
		}
		if jsonName != "" {
			return jsonName, jsonOmit, false
		}
		omitempty = jsonOmit
	}

	if tag, ok := field.Tag.Lookup("db"); ok {
		column, _ := parseDBTag(tag)
		if column == "-" {
			return "", false, true
		}
		if column != "" && column != "pk" {
			return column, omitempty, false
		}
	}

	return field.Name, omitempty, false
}

// FindPrimaryKeyFields finds all primary key fields in a struct.
//
// Priority for single PK (backwards compatible):
//  1. Field with db:"pk" tag (explicit single PK)
//  2. Fields with db:"column,pk" tags (composite PK)
//  3. Field named "ID" (fallback)
//  4. Field named "Id" (last resort)
//
// For composite PK, fields are returned in struct declaration order.
//
//nolint:cyclop,gocognit,gocyclo,funlen // Acceptable complexity for PK field search with multiple priorities.
func FindPrimaryKeyFields(v reflect.Value) (*PrimaryKeyInfo, error) {
	// Handle pointer
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, errors.New("FindPrimaryKeyFields: nil pointer")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil, errors.New("FindPrimaryKeyFields: not a struct")
	}

	t := v.Type()

	// Collect all PK fields with their indices for ordering
	type pkField struct {
		index  int
		field  reflect.StructField
		value  reflect.Value
		column string
	}
	var pkFields []pkField
	var legacyPKField *pkField // db:"pk" (legacy single PK)
	var idFieldIndex = -1
	var idcaseFieldIndex = -1

	// First pass: find all PK fields
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		// Track "ID" field as fallback
		if field.Name == "ID" && idFieldIndex == -1 {
			idFieldIndex = i
		}
		// Track "Id" field as last resort
		if field.Name == "Id" && idcaseFieldIndex == -1 {
			idcaseFieldIndex = i
		}

		tag, hasTag := field.Tag.Lookup("db")
		if !hasTag {
			continue
		}

		column, isPK := parseDBTag(tag)

		// Skip db:"-" fields
		if column == "-" {
			continue
		}

		if isPK {
			pf := pkField{
				index:  i,
				field:  field,
				value:  v.Field(i),
				column: column,
			}

			// Legacy db:"pk" is special - column name is "pk"
			if column == "pk" {
				legacyPKField = &pf
			} else {
				pkFields = append(pkFields, pf)
			}
		}
	}

	// Decision logic:
	// 1. If we have composite PKs (db:"col,pk"), use them
	// 2. Else if we have legacy PK (db:"pk"), use it alone
	// 3. Else fallback to ID/Id field

	if len(pkFields) > 0 {
		// Composite PK or single PK with explicit column name
		// Sort by struct field index to maintain declaration order
		sort.Slice(pkFields, func(i, j int) bool {
			return pkFields[i].index < pkFields[j].index
		})

		info := &PrimaryKeyInfo{
			Fields:  make([]reflect.StructField, len(pkFields)),
			Values:  make([]reflect.Value, len(pkFields)),
			Columns: make([]string, len(pkFields)),
		}
		for i := range pkFields {
			info.Fields[i] = pkFields[i].field
			info.Values[i] = pkFields[i].value
			info.Columns[i] = pkFields[i].column
		}
		return info, nil
	}

	if legacyPKField != nil {
		// Legacy single PK: db:"pk"
		// Column name defaults to field name lowercased unless json renames it
		column := strings.ToLower(legacyPKField.field.Name)
		if tag, ok := legacyPKField.field.Tag.Lookup("json"); ok {
			if name, _, skip := parseJSONTag(tag); !skip && name != "" {
				column = name
			}
		}
		return &PrimaryKeyInfo{
			Fields:  []reflect.StructField{legacyPKField.field},
			Values:  []reflect.Value{legacyPKField.value},
			Columns: []string{column},
		}, nil
	}

	// Fallback to "ID" field
	if idFieldIndex >= 0 {
		return singleFieldPK(t.Field(idFieldIndex), v.Field(idFieldIndex)), nil
	}

	// Last resort: "Id" field
	if idcaseFieldIndex >= 0 {
		return singleFieldPK(t.Field(idcaseFieldIndex), v.Field(idcaseFieldIndex)), nil
	}

	return nil, errors.New("FindPrimaryKeyFields: no primary key found")
}

// singleFieldPK builds the info for an ID/Id fallback field, whose wire
// column defaults to "id" unless a tag renames it.
func singleFieldPK(field reflect.StructField, value reflect.Value) *PrimaryKeyInfo {
	column := "id"
	if name, _, skip := ColumnName(field); !skip && name != field.Name {
		column = name
	}
	return &PrimaryKeyInfo{
		Fields:  []reflect.StructField{field},
		Values:  []reflect.Value{value},
		Columns: []string{column},
	}
}

// StructToMap converts a struct to map[string]interface{} using json tags,
// falling back to db tags and the field name (see ColumnName).
//
// Rules:
//   - Unexported fields are skipped.
//   - json:"-" and db:"-" fields are skipped.
//   - json:",omitempty" fields are skipped when their value is zero.
//   - Zero values are otherwise included.
//
// Returns error if:
//   - data is not a struct or *struct.
//   - data is nil pointer.
func StructToMap(data interface{}) (map[string]interface{}, error) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, errors.New("StructToMap: nil pointer")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil, errors.New("StructToMap: expected struct, got " + v.Kind().String())
	}

	t := v.Type()
	result := make(map[string]interface{})

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip unexported fields.
		if !field.IsExported() {
			continue
		}

		name, omitempty, skip := ColumnName(field)
		if skip {
			continue
		}

		// Get field value.
		fieldValue := v.Field(i)
		if !fieldValue.IsValid() {
			continue
		}
		if omitempty && fieldValue.IsZero() {
			continue
		}

		result[name] = fieldValue.Interface()
	}

	return result, nil
}

// FindPrimaryKeyField finds the primary key field in a struct.
//
// Priority:
//  1. Field with db:"pk" tag (for explicit PK marking)
//  2. Field named "ID"
//  3. Field named "Id"
//
// Returns:
//   - StructField: metadata about the field
//   - Value: reflect.Value of the field
//   - error: if no PK found or composite PK detected
//
// For composite PKs, use FindPrimaryKeyFields instead.
// This function returns error for composite PKs to maintain backwards compatibility.
func FindPrimaryKeyField(v reflect.Value) (reflect.StructField, reflect.Value, error) {
	pkInfo, err := FindPrimaryKeyFields(v)
	if err != nil {
		return reflect.StructField{}, reflect.Value{}, err
	}

	// Return error for composite PK (backwards compatibility)
	if pkInfo.IsComposite() {
		return reflect.StructField{}, reflect.Value{},
			errors.New("FindPrimaryKeyField: composite primary keys not supported, use FindPrimaryKeyFields")
	}

	return pkInfo.Fields[0], pkInfo.Values[0], nil
}

// IsPrimaryKeyZero checks if primary key value is zero (row not yet persisted).
//
// Handles:
//   - int types: v.Int() == 0
//   - uint types: v.Uint() == 0
//   - strings: empty string (UUID columns)
//   - pointers: v.IsNil() || (deref and check)
//
// Returns false for other types.
func IsPrimaryKeyZero(v reflect.Value) bool {
	// Handle invalid values.
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.String:
		return v.String() == ""
	case reflect.Ptr:
		if v.IsNil() {
			return true
		}
		// Recursively check dereferenced value.
		return IsPrimaryKeyZero(v.Elem())
	default:
		return false
	}
}
