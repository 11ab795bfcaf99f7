// Package models holds the gorm entities persisted by the service
package models

// AllModels lists every table the service owns, in creation order
func AllModels() []any {
	return []any{
		&Vehicle{},
		&Video{},
		&Playlist{},
	}
}
