package compare

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sdejongh/semdiff/pkg/config"
	"github.com/sdejongh/semdiff/pkg/models"
)

// JSONComparator compares two JSON documents structurally. Arrays are
// always order-significant; object key order is significant unless
// tolerances say otherwise. The comparison does not short-circuit: all
// divergences are collected in a single pass.
type JSONComparator struct{}

// NewJSONComparator creates a new structural JSON comparator
func NewJSONComparator() *JSONComparator {
	return &JSONComparator{}
}

// Class returns the content class this comparator handles
func (c *JSONComparator) Class() models.ContentClass {
	return models.ClassJSON
}

// Compare parses both sides and collects every point of divergence
func (c *JSONComparator) Compare(ctx context.Context, pair Pair, tol *config.Tolerances) (*models.FileDetail, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !gjson.ValidBytes(pair.Expected) {
		return nil, models.NewCompareError(models.ErrDecode, pair.Path, models.SideExpected,
			fmt.Errorf("malformed JSON document"))
	}
	if !gjson.ValidBytes(pair.Actual) {
		return nil, models.NewCompareError(models.ErrDecode, pair.Path, models.SideActual,
			fmt.Errorf("malformed JSON document"))
	}

	expected := gjson.ParseBytes(pair.Expected)
	actual := gjson.ParseBytes(pair.Actual)

	d := &jsonDiffer{ignoreKeyOrder: tol.JSONIgnoreObjectKeyOrder}
	d.compare("", expected, actual)

	return &models.FileDetail{
		Class: models.ClassJSON,
		Equal: len(d.diffs) == 0,
		JSON:  &models.JSONDetail{Diffs: d.diffs},
	}, nil
}

type jsonDiffer struct {
	ignoreKeyOrder bool
	diffs          []models.JSONDiff
}

func (d *jsonDiffer) record(diff models.JSONDiff) {
	d.diffs = append(d.diffs, diff)
}

func (d *jsonDiffer) compare(path string, expected, actual gjson.Result) {
	et, at := valueType(expected), valueType(actual)
	if et != at {
		d.record(models.JSONDiff{
			Path:     path,
			Kind:     models.JSONTypeChange,
			Expected: renderValue(expected),
			Actual:   renderValue(actual),
		})
		return
	}

	switch et {
	case typeObject:
		d.compareObjects(path, expected, actual)
	case typeArray:
		d.compareArrays(path, expected, actual)
	default:
		if !scalarEqual(expected, actual) {
			d.record(models.JSONDiff{
				Path:     path,
				Kind:     models.JSONChangedValue,
				Expected: renderValue(expected),
				Actual:   renderValue(actual),
			})
		}
	}
}

func (d *jsonDiffer) compareObjects(path string, expected, actual gjson.Result) {
	expectedKeys, expectedVals := orderedMembers(expected)
	actualKeys, actualVals := orderedMembers(actual)

	actualIndex := make(map[string]int, len(actualKeys))
	for i, k := range actualKeys {
		actualIndex[k] = i
	}
	expectedIndex := make(map[string]int, len(expectedKeys))
	for i, k := range expectedKeys {
		expectedIndex[k] = i
	}

	// Removed keys, in expected declaration order
	for i, k := range expectedKeys {
		if _, ok := actualIndex[k]; !ok {
			d.record(models.JSONDiff{
				Path:     joinPointer(path, k),
				Kind:     models.JSONRemovedKey,
				Expected: renderValue(expectedVals[i]),
			})
		}
	}

	// Added keys, in actual declaration order
	for i, k := range actualKeys {
		if _, ok := expectedIndex[k]; !ok {
			d.record(models.JSONDiff{
				Path:   joinPointer(path, k),
				Kind:   models.JSONAddedKey,
				Actual: renderValue(actualVals[i]),
			})
		}
	}

	// Shared keys recurse in expected declaration order
	for i, k := range expectedKeys {
		if j, ok := actualIndex[k]; ok {
			d.compare(joinPointer(path, k), expectedVals[i], actualVals[j])
		}
	}

	// With key order significant, a pure reorder of the shared keys is
	// itself one divergence at the object's path
	if !d.ignoreKeyOrder {
		var sharedExpected, sharedActual []string
		for _, k := range expectedKeys {
			if _, ok := actualIndex[k]; ok {
				sharedExpected = append(sharedExpected, k)
			}
		}
		for _, k := range actualKeys {
			if _, ok := expectedIndex[k]; ok {
				sharedActual = append(sharedActual, k)
			}
		}
		for i := range sharedExpected {
			if sharedExpected[i] != sharedActual[i] {
				d.record(models.JSONDiff{
					Path:     path,
					Kind:     models.JSONKeyOrder,
					Expected: strings.Join(sharedExpected, ", "),
					Actual:   strings.Join(sharedActual, ", "),
				})
				break
			}
		}
	}
}

func (d *jsonDiffer) compareArrays(path string, expected, actual gjson.Result) {
	expectedItems := expected.Array()
	actualItems := actual.Array()

	common := len(expectedItems)
	if len(actualItems) < common {
		common = len(actualItems)
	}

	for i := 0; i < common; i++ {
		d.compare(fmt.Sprintf("%s/%d", path, i), expectedItems[i], actualItems[i])
	}
	for i := common; i < len(expectedItems); i++ {
		d.record(models.JSONDiff{
			Path:     fmt.Sprintf("%s/%d", path, i),
			Kind:     models.JSONRemovedKey,
			Expected: renderValue(expectedItems[i]),
		})
	}
	for i := common; i < len(actualItems); i++ {
		d.record(models.JSONDiff{
			Path:   fmt.Sprintf("%s/%d", path, i),
			Kind:   models.JSONAddedKey,
			Actual: renderValue(actualItems[i]),
		})
	}
}

// orderedMembers returns an object's keys and values in declaration order
func orderedMembers(obj gjson.Result) ([]string, []gjson.Result) {
	var keys []string
	var vals []gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		keys = append(keys, k.Str)
		vals = append(vals, v)
		return true
	})
	return keys, vals
}

type jsonType int

const (
	typeNull jsonType = iota
	typeBool
	typeNumber
	typeString
	typeArray
	typeObject
)

func valueType(v gjson.Result) jsonType {
	switch {
	case v.IsObject():
		return typeObject
	case v.IsArray():
		return typeArray
	case v.Type == gjson.String:
		return typeString
	case v.Type == gjson.Number:
		return typeNumber
	case v.Type == gjson.True, v.Type == gjson.False:
		return typeBool
	default:
		return typeNull
	}
}

// scalarEqual compares two same-type scalars. Numeric comparison is
// exact, not tolerance-based: integer literals compare digit for digit
// so values beyond float64 precision do not collapse.
func scalarEqual(expected, actual gjson.Result) bool {
	switch valueType(expected) {
	case typeNumber:
		expectedRaw := strings.TrimSpace(expected.Raw)
		actualRaw := strings.TrimSpace(actual.Raw)
		if isIntegerLiteral(expectedRaw) && isIntegerLiteral(actualRaw) {
			return expectedRaw == actualRaw
		}
		return expected.Num == actual.Num
	case typeString:
		return expected.Str == actual.Str
	case typeBool:
		return expected.Type == actual.Type
	default: // null
		return true
	}
}

// isIntegerLiteral reports whether raw is a plain JSON integer with no
// fraction or exponent part. JSON forbids leading zeros, so equal
// integers always share the same digit string.
func isIntegerLiteral(raw string) bool {
	if raw != "" && raw[0] == '-' {
		raw = raw[1:]
	}
	if raw == "" {
		return false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return false
		}
	}
	return true
}

// renderValue produces a compact representation of a value for
// diagnostics, truncated so a huge subtree cannot blow up the report
func renderValue(v gjson.Result) string {
	const maxLen = 120
	raw := v.Raw
	if v.Type == gjson.Null && raw == "" {
		raw = "null"
	}
	if len(raw) > maxLen {
		return raw[:maxLen] + "…"
	}
	return raw
}

// joinPointer appends one key segment to a JSON-pointer-like path,
// escaping per RFC 6901
func joinPointer(path, key string) string {
	key = strings.ReplaceAll(key, "~", "~0")
	key = strings.ReplaceAll(key, "/", "~1")
	return path + "/" + key
}
