// Package tabular owns the in-memory customer collection behind the
// dashboard table and the currently visible searched, sorted, paginated
// projection of it. All reads and mutations are safe for concurrent use;
// refreshes arrive from the change-notification goroutine while user
// actions arrive from request handlers.
package tabular

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"doctrack-be/internal/models"
)

// DefaultPageSize is the dashboard's initial page size.
const DefaultPageSize = 10

// Engine maintains the authoritative customer collection and derives the
// visible projection from the current search text, sort config and page.
type Engine struct {
	mu       sync.Mutex
	rows     []models.Customer // authoritative, load order preserved
	visible  []models.Customer // searched + sorted projection
	search   string
	sortCfg  SortConfig
	page     int
	pageSize int
	version  uint64 // bumped only when the projection actually changes
}

func NewEngine() *Engine {
	return &Engine{pageSize: DefaultPageSize}
}

// Load replaces the authoritative collection, unless rows is structurally
// identical to what is already loaded: a change notification that did not
// actually change this view's data must not churn downstream consumers.
// Returns whether the collection was replaced.
func (e *Engine) Load(rows []models.Customer) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rows != nil && reflect.DeepEqual(e.rows, rows) {
		return false
	}
	e.rows = make([]models.Customer, len(rows))
	copy(e.rows, rows)
	e.project()
	return true
}

// SetSearchText filters by case-insensitive substring over id, name,
// source root and administration mail. Blank or whitespace-only text clears
// the filter. Changing the search resets pagination to the first page.
func (e *Engine) SetSearchText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.search = strings.TrimSpace(text)
	e.page = 0
	e.project()
}

// SortBy sorts by the given column, flipping direction when the engine is
// already sorted by it and resetting to ascending otherwise. Unknown columns
// are ignored.
func (e *Engine) SortBy(columnKey string) {
	if !IsSortable(columnKey) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sortCfg.Column == columnKey {
		e.sortCfg.Descending = !e.sortCfg.Descending
	} else {
		e.sortCfg = SortConfig{Column: columnKey}
	}
	e.project()
}

// SetPage moves to the given zero-based page, clamped into range.
func (e *Engine) SetPage(page int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.page = e.clampPage(page)
	e.version++
}

// SetPageSize changes the page size and resets to the first page.
func (e *Engine) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pageSize = size
	e.page = 0
	e.version++
}

// Projection is a consistent snapshot of the visible page and its metadata.
type Projection struct {
	Rows      []models.Customer `json:"rows"`
	Page      int               `json:"page"`
	PageSize  int               `json:"pageSize"`
	PageCount int               `json:"pageCount"`
	Total     int               `json:"total"`
	Sort      SortConfig        `json:"sort"`
	Search    string            `json:"search"`
	Version   uint64            `json:"version"`
}

// Snapshot returns the current page slice plus paging, sort and search state.
func (e *Engine) Snapshot() Projection {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := e.page * e.pageSize
	end := start + e.pageSize
	if start > len(e.visible) {
		start = len(e.visible)
	}
	if end > len(e.visible) {
		end = len(e.visible)
	}
	rows := make([]models.Customer, end-start)
	copy(rows, e.visible[start:end])

	return Projection{
		Rows:      rows,
		Page:      e.page,
		PageSize:  e.pageSize,
		PageCount: e.pageCount(),
		Total:     len(e.visible),
		Sort:      e.sortCfg,
		Search:    e.search,
		Version:   e.version,
	}
}

// Version returns the projection version counter. Loading identical data
// twice leaves it unchanged.
func (e *Engine) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// project rebuilds the visible slice from rows, sort and search, keeping the
// current page in range. Callers must hold e.mu.
func (e *Engine) project() {
	projected := make([]models.Customer, len(e.rows))
	copy(projected, e.rows)

	if col, ok := columns[e.sortCfg.Column]; ok {
		desc := e.sortCfg.Descending
		sort.SliceStable(projected, func(i, j int) bool {
			if desc {
				return compareCustomers(&projected[j], &projected[i], col) < 0
			}
			return compareCustomers(&projected[i], &projected[j], col) < 0
		})
	}

	if e.search != "" {
		needle := strings.ToLower(e.search)
		filtered := projected[:0]
		for _, c := range projected {
			if matches(&c, needle) {
				filtered = append(filtered, c)
			}
		}
		projected = filtered
	}

	e.visible = projected
	e.page = e.clampPage(e.page)
	e.version++
}

func matches(c *models.Customer, needle string) bool {
	return strings.Contains(strings.ToLower(c.ID), needle) ||
		strings.Contains(strings.ToLower(c.Name), needle) ||
		strings.Contains(strings.ToLower(c.SourceRoot), needle) ||
		strings.Contains(strings.ToLower(c.AdminMail), needle)
}

func (e *Engine) pageCount() int {
	if len(e.visible) == 0 {
		return 0
	}
	return (len(e.visible) + e.pageSize - 1) / e.pageSize
}

func (e *Engine) clampPage(page int) int {
	if page < 0 {
		return 0
	}
	if max := e.pageCount() - 1; max >= 0 && page > max {
		return max
	}
	return page
}
