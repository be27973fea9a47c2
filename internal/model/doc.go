// Package model contain gorm model for recording data to database
package model
