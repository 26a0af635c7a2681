// Package schema holds the SQL script that creates the catalog tables.
package schema

import _ "embed"

// CreateMealTable creates the meals and battles tables if they are missing.
//
//go:embed create_meal_table.sql
var CreateMealTable string
