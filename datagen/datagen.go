// SPDX-License-Identifier: MIT

// Package datagen produces synthetic, deliberately messy schema
// snapshots with known ground truth, for training runs and regression
// fixtures. Real-world column naming is inconsistent; each ontology
// property here owns a pool of naming variants and plausible datatypes,
// and the generator samples them with an explicit seed so a dataset is
// fully reproducible from (tables, seed).
package datagen

import (
	"fmt"
	"math/rand"

	"github.com/ontoforge/schemamap/schema"
)

// pattern maps one ontology property onto its messy surface forms.
type pattern struct {
	property  string
	names     []string
	datatypes []string
}

// patterns is the closed generation vocabulary. Order is fixed so a
// seed always replays the same dataset.
var patterns = []pattern{
	{"hasIdentifier", []string{"id", "pk", "record_id", "uid"}, []string{"int", "bigint", "uuid"}},
	{"hasName", []string{"name", "full_name", "nm", "title", "label"}, []string{"varchar(255)", "text"}},
	{"hasEmail", []string{"email", "email_address", "mail", "contact_email"}, []string{"varchar(255)"}},
	{"hasPrice", []string{"price", "unit_price", "cost", "price_amt"}, []string{"decimal(10,2)", "float"}},
	{"hasQuantity", []string{"qty", "quantity", "item_count", "units"}, []string{"int", "smallint"}},
	{"hasTimestamp", []string{"created_at", "created", "dt", "event_time"}, []string{"timestamp", "datetime"}},
	{"hasDescription", []string{"description", "desc", "notes", "comment_text"}, []string{"text"}},
	{"hasStatus", []string{"status", "stat", "state", "current_status"}, []string{"varchar(32)", "char(1)"}},
	{"hasFlag", []string{"active", "is_enabled", "deleted_flag"}, []string{"boolean", "bool"}},
}

var tableNames = []string{
	"customers", "orders", "products", "invoices", "shipments",
	"suppliers", "payments", "warehouses", "returns", "accounts",
}

// Properties returns the ontology entries the generator labels with, in
// generation order. Feeding them to schema.NewVocabulary reproduces the
// label set of any generated dataset.
func Properties() []schema.Property {
	props := make([]schema.Property, len(patterns))
	for i, p := range patterns {
		props[i] = schema.Property{Name: p.property, Datatype: p.datatypes[0]}
	}

	return props
}

// Dataset is one generated schema snapshot with full ground truth.
type Dataset struct {
	Fields        []schema.FieldDescriptor
	Relationships []schema.RelationshipPair
}

// Generate builds a dataset of the given table count. Every table gets
// an identifier column, a messy sample of the remaining properties, and
// every table after the first declares one foreign key back to an
// earlier table. Identical (tables, seed) pairs produce identical
// datasets.
func Generate(tables int, seed int64) *Dataset {
	if tables <= 0 {
		tables = 1
	}

	rng := rand.New(rand.NewSource(seed))
	ds := &Dataset{}

	idFields := make([]schema.FieldRef, tables)
	for t := 0; t < tables; t++ {
		table := tableName(t)

		idName := patterns[0].names[rng.Intn(len(patterns[0].names))]
		ds.Fields = append(ds.Fields, schema.FieldDescriptor{
			TableName:           table,
			FieldName:           idName,
			RawDatatype:         pick(rng, patterns[0].datatypes),
			GroundTruthProperty: patterns[0].property,
		})
		idFields[t] = schema.FieldRef{TableName: table, FieldName: idName}

		// a messy sample of the non-identifier properties
		for _, p := range patterns[1:] {
			if rng.Float64() < 0.35 {
				continue
			}
			ds.Fields = append(ds.Fields, schema.FieldDescriptor{
				TableName:           table,
				FieldName:           pick(rng, p.names),
				RawDatatype:         pick(rng, p.datatypes),
				GroundTruthProperty: p.property,
			})
		}

		if t > 0 {
			ref := rng.Intn(t)
			fkName := tableName(ref) + "_id"
			ds.Fields = append(ds.Fields, schema.FieldDescriptor{
				TableName:           table,
				FieldName:           fkName,
				RawDatatype:         "int",
				GroundTruthProperty: patterns[0].property,
			})
			ds.Relationships = append(ds.Relationships, schema.RelationshipPair{
				A: schema.FieldRef{TableName: table, FieldName: fkName},
				B: idFields[ref],
			})
		}
	}

	return ds
}

func tableName(i int) string {
	if i < len(tableNames) {
		return tableNames[i]
	}

	return fmt.Sprintf("%s_%d", tableNames[i%len(tableNames)], i/len(tableNames))
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}
