package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// DailyAmount is the net movement of a single calendar day; negative when
// expenses outweigh income.
type DailyAmount struct {
	Date   Date
	Amount Money
}
