// SPDX-License-Identifier: MIT

package encode

import (
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/ontoforge/schemamap/schema"
)

// Block widths of the feature vector, in order of appearance.
const (
	// lexCharStats covers coarse character statistics of the field name.
	lexCharStats = 6
	// lexAbbrevFlags covers presence of common column-name abbreviations.
	lexAbbrevFlags = 10
	// lexBigramBuckets and lexTrigramBuckets hold hashed n-gram counts.
	lexBigramBuckets  = 24
	lexTrigramBuckets = 24

	// datatypeSlots is the closed datatype vocabulary plus one trailing
	// "unknown" bucket, so unseen raw datatypes are absorbed, not rejected.
	datatypeSlots = len(knownDatatypes) + 1

	// contextStats covers the field's position among its table's fields
	// and the table's position among all tables.
	contextStats = 10

	// indicatorFlags covers the looks-like-primary-key and nullable hints.
	indicatorFlags = 2

	// FeatureDim is the total vector width D. It is fixed for the lifetime
	// of a run; the model input width must match it exactly.
	FeatureDim = lexCharStats + lexAbbrevFlags + lexBigramBuckets +
		lexTrigramBuckets + datatypeSlots + contextStats + indicatorFlags
)

// knownDatatypes is the closed raw-datatype vocabulary. Order is frozen:
// slot i of the one-hot block always means the same type. Matching is done
// on the lowercased base type with any "(...)" size suffix stripped.
var knownDatatypes = [...]string{
	"varchar", "char", "text", "string",
	"int", "integer", "bigint", "smallint",
	"float", "double", "decimal", "numeric",
	"boolean", "bool",
	"date", "datetime", "timestamp", "time",
	"uuid",
}

// abbrevTokens are column-name fragments that strongly hint at a semantic
// role. Each contributes one boolean slot of the lexical block.
var abbrevTokens = [...]string{
	"id", "no", "num", "dt", "nm", "val", "amt", "qty", "desc", "stat",
}

// TableContext situates a field among its siblings for the positional
// part of the encoding. Indices are zero-based; counts are ≥ 1 for any
// field that actually exists.
type TableContext struct {
	TableIndex int // position of the field's table in canonical table order
	TableCount int // total number of tables in the snapshot
	FieldIndex int // position of the field inside its table, canonical order
	FieldCount int // total number of fields in the field's table
}

// Encode maps one field descriptor plus its table context onto a vector of
// exactly FeatureDim entries.
//
// Implementation: Stage 1 derives lexical statistics and hashed n-gram
// counts from the field name. Stage 2 one-hot encodes the normalized raw
// datatype, falling back to the trailing unknown bucket. Stage 3 appends
// positional context statistics. Stage 4 appends indicator flags.
//
// Complexity: O(len(fieldName)). Never fails.
func Encode(fd schema.FieldDescriptor, ctx TableContext) []float64 {
	vec := make([]float64, 0, FeatureDim)

	vec = appendLexical(vec, fd.FieldName)
	vec = appendDatatype(vec, fd.RawDatatype)
	vec = appendContext(vec, ctx)
	vec = appendFlags(vec, fd, ctx)

	return vec
}

// EncodeAll encodes a field slice in the given order into an N×FeatureDim
// row set. Table contexts are derived from the fields themselves, so the
// caller is expected to pass fields in canonical order (schema.CanonicalOrder).
func EncodeAll(fields []schema.FieldDescriptor) [][]float64 {
	ctxs := deriveContexts(fields)

	rows := make([][]float64, len(fields))
	for i, fd := range fields {
		rows[i] = Encode(fd, ctxs[i])
	}

	return rows
}

// deriveContexts computes a TableContext per field from a canonically
// ordered field slice. Fields of one table are contiguous after canonical
// ordering, so a single linear scan suffices.
func deriveContexts(fields []schema.FieldDescriptor) []TableContext {
	tableIndex := make(map[string]int)
	fieldCount := make(map[string]int)
	order := make([]string, 0)
	for _, fd := range fields {
		if _, seen := tableIndex[fd.TableName]; !seen {
			tableIndex[fd.TableName] = len(order)
			order = append(order, fd.TableName)
		}
		fieldCount[fd.TableName]++
	}

	ctxs := make([]TableContext, len(fields))
	pos := make(map[string]int)
	for i, fd := range fields {
		ctxs[i] = TableContext{
			TableIndex: tableIndex[fd.TableName],
			TableCount: len(order),
			FieldIndex: pos[fd.TableName],
			FieldCount: fieldCount[fd.TableName],
		}
		pos[fd.TableName]++
	}

	return ctxs
}

// appendLexical emits character statistics, abbreviation flags and hashed
// n-gram counts for the field name.
func appendLexical(vec []float64, name string) []float64 {
	lower := strings.ToLower(name)
	n := len(name)

	var digits, unders, uppers, vowels int
	for _, r := range name {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '_':
			unders++
		case unicode.IsUpper(r):
			uppers++
		}
		switch unicode.ToLower(r) {
		case 'a', 'e', 'i', 'o', 'u':
			vowels++
		}
	}

	tokens := splitTokens(lower)

	inv := 0.0
	if n > 0 {
		inv = 1.0 / float64(n)
	}
	vec = append(vec,
		clamp01(float64(n)/32.0),          // normalized length
		float64(digits)*inv,               // digit ratio
		float64(unders)*inv,               // underscore ratio
		float64(uppers)*inv,               // uppercase ratio
		float64(vowels)*inv,               // vowel ratio
		clamp01(float64(len(tokens))/8.0), // normalized token count
	)

	tokenSet := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = true
	}
	for _, abbr := range abbrevTokens {
		if tokenSet[abbr] {
			vec = append(vec, 1.0)
		} else {
			vec = append(vec, 0.0)
		}
	}

	vec = appendNGramBuckets(vec, lower, 2, lexBigramBuckets)
	vec = appendNGramBuckets(vec, lower, 3, lexTrigramBuckets)

	return vec
}

// appendNGramBuckets folds the character n-grams of s into `buckets`
// fixed slots using FNV-1a and normalizes counts by the n-gram total, so
// the block is scale-independent of name length.
func appendNGramBuckets(vec []float64, s string, n, buckets int) []float64 {
	counts := make([]float64, buckets)
	total := 0
	for i := 0; i+n <= len(s); i++ {
		h := fnv.New32a()
		_, _ = h.Write([]byte(s[i : i+n]))
		counts[int(h.Sum32())%buckets]++
		total++
	}
	if total > 0 {
		for i := range counts {
			counts[i] /= float64(total)
		}
	}

	return append(vec, counts...)
}

// appendDatatype one-hot encodes the normalized raw datatype. Unknown
// types set the trailing slot instead of failing.
func appendDatatype(vec []float64, raw string) []float64 {
	base := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}

	slot := len(knownDatatypes) // unknown bucket
	for i, dt := range knownDatatypes {
		if base == dt {
			slot = i
			break
		}
	}

	block := make([]float64, datatypeSlots)
	block[slot] = 1.0

	return append(vec, block...)
}

// appendContext emits positional statistics of the field and its table.
func appendContext(vec []float64, ctx TableContext) []float64 {
	fieldPos := ratio(ctx.FieldIndex, ctx.FieldCount-1)
	tablePos := ratio(ctx.TableIndex, ctx.TableCount-1)

	firstField, lastField := 0.0, 0.0
	if ctx.FieldIndex == 0 {
		firstField = 1.0
	}
	if ctx.FieldCount > 0 && ctx.FieldIndex == ctx.FieldCount-1 {
		lastField = 1.0
	}

	firstHalf := 0.0
	if ctx.FieldCount > 0 && ctx.FieldIndex*2 < ctx.FieldCount {
		firstHalf = 1.0
	}

	return append(vec,
		fieldPos,
		clamp01(float64(ctx.FieldCount)/32.0),
		tablePos,
		clamp01(float64(ctx.TableCount)/32.0),
		firstField,
		lastField,
		firstHalf,
		1.0/float64(ctx.FieldIndex+1),
		inverseCount(ctx.FieldCount),
		inverseCount(ctx.TableCount),
	)
}

// appendFlags emits the looks-like-primary-key and nullable hints.
func appendFlags(vec []float64, fd schema.FieldDescriptor, ctx TableContext) []float64 {
	lower := strings.ToLower(fd.FieldName)

	pk := 0.0
	if lower == "id" || lower == "pk" ||
		(strings.HasSuffix(lower, "_id") && ctx.FieldIndex == 0) {
		pk = 1.0
	}

	nullable := 0.0
	rawLower := strings.ToLower(fd.RawDatatype)
	if strings.Contains(rawLower, "null") && !strings.Contains(rawLower, "not null") {
		nullable = 1.0
	}

	return append(vec, pk, nullable)
}

// splitTokens splits an already lowercased identifier on underscores and
// digit boundaries, dropping empty fragments.
func splitTokens(lower string) []string {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsDigit(r)
	})

	return fields
}

func ratio(i, max int) float64 {
	if max <= 0 {
		return 0
	}

	return float64(i) / float64(max)
}

func inverseCount(n int) float64 {
	if n <= 0 {
		return 0
	}

	return 1.0 / float64(n)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}

	return v
}
