package specification

import "gorm.io/gorm"

// Specification is a composable query filter applied to a GORM statement.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
