// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package result turns the rows fetched from a driver cursor into a result set
of the requested shape.

Every cell is coerced according to the database type of its column. Integer
types become int64, decimal and floating point types become float64 and date
and time types become text in a fixed layout. Values that cannot be coerced
are kept as returned by the driver.

The array shape is a list of rows whose first element is the list of column
names. The record shape is a list of maps from lower cased column name to
value, with no header.
*/
package result
