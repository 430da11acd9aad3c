// Package gh holds small GitHub Actions helpers: mapping snap architectures
// to runner labels and writing workflow output variables.
package gh
