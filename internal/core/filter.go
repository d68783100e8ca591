// Package core provides filtering, sorting, and lookup logic over stack
// entries.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/creak/internal/ledger"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // Field name: position, name, class, summary, pid, height, created, expires
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	// Cached parsed values
	regex  *regexp.Regexp
	intVal int
	age    time.Duration // created: how long ago; expires: how far ahead
}

// FilterExpr represents a compound filter expression.
// Multiple conditions are ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// FilterOptions specifies simple criteria for filtering entries.
type FilterOptions struct {
	Position string // Exact match on position class
	Name     string // Exact match on name
	Class    string // Exact match on class
	Limit    int    // Maximum results (0=unlimited)
}

// Filter filters entries based on the provided options.
func Filter(entries []ledger.Entry, opts FilterOptions) []ledger.Entry {
	result := make([]ledger.Entry, 0, len(entries))

	for _, e := range entries {
		if opts.Position != "" && e.Position != opts.Position {
			continue
		}
		if opts.Name != "" && e.Name != opts.Name {
			continue
		}
		if opts.Class != "" && e.Class != opts.Class {
			continue
		}
		result = append(result, e)
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// ParseDuration parses a duration string with extended formats.
// Supports: 48h, 7d, 1w, 0
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if s == "0" || s == "" {
		return 0, nil
	}

	// Handle day suffix (7d -> 168h)
	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	// Handle week suffix (1w -> 168h)
	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2,field3>value3"
// Multiple conditions are comma-separated and ANDed together.
//
// Supported fields: position, name, class, summary, pid, height, created, expires
// Supported operators: = (equal), != (not equal), ~ (contains), ~= (regex), >, <, >=, <=
//
// Examples:
//   - "name=volume" - entries named volume
//   - "summary~battery" - summary contains "battery"
//   - "position=bottom-right,height>100" - tall bottom-right popups
//   - "created<30s" - shown more than 30 seconds ago
//   - "expires<5s" - disappearing within five seconds
func ParseFilter(expr string) (*FilterExpr, error) {
	if expr == "" {
		return &FilterExpr{}, nil
	}

	filter := &FilterExpr{
		Conditions: make([]FilterCondition, 0),
	}

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}

	return filter, nil
}

// parseCondition parses a single condition like "name=volume" or "summary~low"
func parseCondition(s string) (FilterCondition, error) {
	// Longest operators first
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpGreaterEq,
		FilterOpLessEq,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
		FilterOpGreater,
		FilterOpLess,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx > 0 {
			cond := FilterCondition{
				Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
				Operator: op,
				Value:    strings.TrimSpace(s[idx+len(op):]),
			}
			if err := cond.init(); err != nil {
				return FilterCondition{}, err
			}
			return cond, nil
		}
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// init pre-parses and validates the condition value.
func (c *FilterCondition) init() error {
	switch c.Field {
	case "position", "pos":
		c.Field = "position"
	case "name", "app":
		c.Field = "name"
	case "class":
	case "summary", "message", "title":
		c.Field = "summary"
	case "pid", "height":
		n, err := strconv.Atoi(c.Value)
		if err != nil {
			return fmt.Errorf("invalid %s value: %s", c.Field, c.Value)
		}
		c.intVal = n
	case "created", "age":
		c.Field = "created"
		d, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid created value: %w", err)
		}
		c.age = d
	case "expires", "remaining":
		c.Field = "expires"
		d, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid expires value: %w", err)
		}
		c.age = d
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}

	return nil
}

// Match tests if an entry matches the filter expression at now.
// All conditions must match (AND logic).
func (f *FilterExpr) Match(e ledger.Entry, now time.Time) bool {
	for _, cond := range f.Conditions {
		if !cond.Match(e, now) {
			return false
		}
	}
	return true
}

// Match tests if an entry matches this single condition at now.
func (c *FilterCondition) Match(e ledger.Entry, now time.Time) bool {
	switch c.Field {
	case "position":
		return c.matchString(e.Position)
	case "name":
		return c.matchString(e.Name)
	case "class":
		return c.matchString(e.Class)
	case "summary":
		return c.matchString(e.Summary)
	case "pid":
		return c.matchInt(e.PID)
	case "height":
		return c.matchInt(e.Height)
	case "created":
		return c.matchDuration(now.Sub(time.UnixMilli(int64(e.CreatedAt))))
	case "expires":
		// Entries without a deadline never match a remaining-time bound.
		if e.ExpiresAt == 0 {
			return false
		}
		return c.matchDuration(time.UnixMilli(int64(e.ExpiresAt)).Sub(now))
	default:
		return false
	}
}

// matchString matches a string field.
func (c *FilterCondition) matchString(fieldValue string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.Value
	case FilterOpNotEqual:
		return fieldValue != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(fieldValue)
	default:
		return false
	}
}

// matchInt matches an integer field with numeric comparison.
func (c *FilterCondition) matchInt(fieldValue int) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.intVal
	case FilterOpNotEqual:
		return fieldValue != c.intVal
	case FilterOpGreater:
		return fieldValue > c.intVal
	case FilterOpLess:
		return fieldValue < c.intVal
	case FilterOpGreaterEq:
		return fieldValue >= c.intVal
	case FilterOpLessEq:
		return fieldValue <= c.intVal
	default:
		return false
	}
}

// matchDuration compares an elapsed or remaining duration.
func (c *FilterCondition) matchDuration(d time.Duration) bool {
	switch c.Operator {
	case FilterOpGreater:
		return d > c.age
	case FilterOpLess:
		return d < c.age
	case FilterOpGreaterEq:
		return d >= c.age
	case FilterOpLessEq:
		return d <= c.age
	default:
		return false
	}
}

// FilterWithExpr filters entries using a filter expression.
func FilterWithExpr(entries []ledger.Entry, expr *FilterExpr, now time.Time) []ledger.Entry {
	if expr == nil || len(expr.Conditions) == 0 {
		return entries
	}

	result := make([]ledger.Entry, 0, len(entries))
	for _, e := range entries {
		if expr.Match(e, now) {
			result = append(result, e)
		}
	}
	return result
}
