package core

import (
	"context"
	"reflect"
	"strings"

	"github.com/coregx/pgrest/internal/syntax"
	"github.com/coregx/pgrest/internal/util"
)

// ModelQuery handles CRUD operations on struct models: the resource name
// is inferred from the type, the payload from its fields, and the target
// row from its primary key. Mutations ask for the created or updated
// representation back and decode it into the model, so server-assigned
// values (ids, defaults, timestamps) appear on the struct after the call.
type ModelQuery struct {
	client  *Client
	model   interface{}
	table   string
	exclude map[string]bool
	ctx     context.Context
	err     error
}

func newModelQuery(c *Client, model interface{}) *ModelQuery {
	mq := &ModelQuery{
		client:  c,
		model:   model,
		exclude: make(map[string]bool),
	}
	v := reflect.ValueOf(model)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		mq.err = ErrInvalidModelType
		return mq
	}
	mq.table = inferTableName(model)
	return mq
}

// inferTableName determines the resource name from the struct.
func inferTableName(model interface{}) string {
	// Check for TableName() method.
	if tn, ok := model.(interface{ TableName() string }); ok {
		return tn.TableName()
	}

	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	name := t.Name()
	// Simple pluralization.
	if !strings.HasSuffix(name, "s") {
		name += "s"
	}

	return strings.ToLower(name)
}

// WithContext sets the context used by the terminal call.
func (mq *ModelQuery) WithContext(ctx context.Context) *ModelQuery {
	mq.ctx = ctx
	return mq
}

// Table overrides the inferred resource name.
func (mq *ModelQuery) Table(name string) *ModelQuery {
	mq.table = name
	return mq
}

// Exclude excludes columns from the operation.
func (mq *ModelQuery) Exclude(attrs ...string) *ModelQuery {
	for _, attr := range attrs {
		mq.exclude[attr] = true
	}
	return mq
}

// primaryKey resolves the model's primary key columns and current values.
func (mq *ModelQuery) primaryKey() (map[string]interface{}, error) {
	v := reflect.ValueOf(mq.model).Elem()
	info, err := util.FindPrimaryKeyFields(v)
	if err != nil {
		return nil, ErrMissingPrimaryKey
	}
	pk := make(map[string]interface{}, len(info.Columns))
	for i, col := range info.Columns {
		if util.IsPrimaryKeyZero(info.Values[i]) {
			return nil, configErrorf("Model", "zero primary key value for column %q", col)
		}
		pk[col] = info.Values[i].Interface()
	}
	return pk, nil
}

// filterFields applies the only/exclude column filters.
func (mq *ModelQuery) filterFields(data map[string]interface{}, only []string) map[string]interface{} {
	result := make(map[string]interface{})

	// If only specified - take only those.
	if len(only) > 0 {
		for _, field := range only {
			if v, ok := data[field]; ok && !mq.exclude[field] {
				result[field] = v
			}
		}
		return result
	}

	// Otherwise take all except excluded.
	for k, v := range data {
		if !mq.exclude[k] {
			result[k] = v
		}
	}

	return result
}

// Insert inserts the model and decodes the created row back into it.
// Passing attrs restricts the payload to those columns.
func (mq *ModelQuery) Insert(attrs ...string) error {
	if mq.err != nil {
		return mq.err
	}
	if mq.table == "" {
		return configErrorf("Model", "table name not specified")
	}

	dataMap, err := util.StructToMap(mq.model)
	if err != nil {
		return err
	}
	filtered := mq.filterFields(dataMap, attrs)

	return mq.client.Insert(mq.table, filtered).
		WithContext(mq.ctx).
		One(mq.model)
}

// Update patches the row matching the model's primary key and decodes the
// updated row back into the model. Passing attrs restricts the payload to
// those columns.
func (mq *ModelQuery) Update(attrs ...string) error {
	if mq.err != nil {
		return mq.err
	}
	if mq.table == "" {
		return configErrorf("Model", "table name not specified")
	}

	dataMap, err := util.StructToMap(mq.model)
	if err != nil {
		return err
	}
	filtered := mq.filterFields(dataMap, attrs)

	pk, err := mq.primaryKey()
	if err != nil {
		return err
	}
	// The key selects the row; it is not part of the patch.
	for col := range pk {
		delete(filtered, col)
	}

	return mq.client.Update(mq.table).
		WithContext(mq.ctx).
		Set(filtered).
		Match(pk).
		One(mq.model)
}

// Delete deletes the row matching the model's primary key.
func (mq *ModelQuery) Delete() error {
	if mq.err != nil {
		return mq.err
	}
	if mq.table == "" {
		return configErrorf("Model", "table name not specified")
	}

	pk, err := mq.primaryKey()
	if err != nil {
		return err
	}

	env, err := mq.client.Delete(mq.table).
		WithContext(mq.ctx).
		Match(pk).
		Returning(syntax.ReturnMinimal).
		Exec()
	if err != nil {
		return err
	}
	if env.Error != nil {
		return env.Error
	}
	return nil
}
