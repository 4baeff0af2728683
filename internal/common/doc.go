// Package common holds small helpers shared across the mapper packages.
package common
