package tabular

import (
	"strconv"
	"time"

	"doctrack-be/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ColumnKind declares how a column's values compare. Declaring the kind per
// column instead of sniffing values at sort time keeps date parsing away from
// arbitrary text: only kindDate columns are ever compared as timestamps,
// generic strings always take the locale-aware path.
type ColumnKind int

const (
	kindString ColumnKind = iota
	kindNumber
	kindDate
	kindBool
)

// SortConfig pairs a column key with a direction. The zero value means
// "unsorted".
type SortConfig struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending"`
}

type column struct {
	kind  ColumnKind
	value func(c *models.Customer) (interface{}, bool)
}

// columns maps sortable column keys to their kind and value accessor. The
// second return reports presence: absent values sort last in ascending order
// and first in descending order.
var columns = map[string]column{
	"id":   {kindString, func(c *models.Customer) (interface{}, bool) { return c.ID, c.ID != "" }},
	"name": {kindString, func(c *models.Customer) (interface{}, bool) { return c.Name, c.Name != "" }},
	"inProcess": {kindNumber, func(c *models.Customer) (interface{}, bool) {
		return float64(c.InProcess), true
	}},
	"other": {kindNumber, func(c *models.Customer) (interface{}, bool) {
		return float64(c.Other), true
	}},
	"inbox": {kindNumber, func(c *models.Customer) (interface{}, bool) {
		return float64(c.Inbox), true
	}},
	"total": {kindNumber, func(c *models.Customer) (interface{}, bool) {
		return float64(c.Total), true
	}},
	"active": {kindBool, func(c *models.Customer) (interface{}, bool) { return c.Active, true }},
	"updatedAt": {kindDate, func(c *models.Customer) (interface{}, bool) {
		return c.UpdatedAt, !c.UpdatedAt.IsZero()
	}},
	"adminMail": {kindString, func(c *models.Customer) (interface{}, bool) {
		return c.AdminMail, c.AdminMail != ""
	}},
	"source": {kindString, func(c *models.Customer) (interface{}, bool) {
		return c.Source, c.Source != ""
	}},
	"sourceRoot": {kindString, func(c *models.Customer) (interface{}, bool) {
		return c.SourceRoot, c.SourceRoot != ""
	}},
	"updatedBy": {kindString, func(c *models.Customer) (interface{}, bool) {
		if c.UpdatedBy == nil {
			return "", false
		}
		return c.UpdatedBy.Value, c.UpdatedBy.Value != ""
	}},
}

// IsSortable reports whether key names a known column.
func IsSortable(key string) bool {
	_, ok := columns[key]
	return ok
}

var collator = collate.New(language.Und, collate.Loose)

// compareCustomers orders a against b by the given column, ascending.
// Absent values compare greater than any present value, so they land at the
// end ascending and at the front once the caller flips the comparison for
// descending order.
func compareCustomers(a, b *models.Customer, col column) int {
	av, aok := col.value(a)
	bv, bok := col.value(b)
	if !aok && !bok {
		return 0
	}
	if !aok {
		return 1
	}
	if !bok {
		return -1
	}

	switch col.kind {
	case kindString:
		return collator.CompareString(av.(string), bv.(string))
	case kindNumber:
		af, bf := av.(float64), bv.(float64)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case kindDate:
		at, bt := av.(time.Time), bv.(time.Time)
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		}
		return 0
	case kindBool:
		ab, bb := av.(bool), bv.(bool)
		switch {
		case !ab && bb:
			return -1
		case ab && !bb:
			return 1
		}
		return 0
	}
	// Fallback: stringify both operands and compare with the collator.
	return collator.CompareString(stringify(av), stringify(bv))
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	}
	return ""
}
