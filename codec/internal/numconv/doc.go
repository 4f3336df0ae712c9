// Package numconv converts between heapcodec.Number and fixed-width Go
// numeric types.
//
// Narrowing conversions are checked: a Number that does not fit the
// requested width reports ok=false instead of truncating.
package numconv
