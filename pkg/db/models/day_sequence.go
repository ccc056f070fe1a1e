package models

import "time"

// DaySequence is the per-calendar-day token counter. Day is formatted yyyymmdd.
type DaySequence struct {
	Day       string    `gorm:"column:day;primaryKey"`
	Counter   int       `gorm:"column:counter;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
