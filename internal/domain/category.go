package domain

// DefaultCategory is used when a transaction is recorded without one.
const DefaultCategory = "general"

// Category is a suggested label for the transaction form. Categories are not
// enforced: any non-blank label is accepted.
type Category struct {
	Value string
	Label string
}

// Categories lists the labels offered by the entry form.
var Categories = []Category{
	{Value: "salary", Label: "Salary"},
	{Value: "investment", Label: "Investment"},
	{Value: "food", Label: "Food & Dining"},
	{Value: "transport", Label: "Transportation"},
	{Value: "utilities", Label: "Utilities"},
	{Value: "entertainment", Label: "Entertainment"},
	{Value: "healthcare", Label: "Healthcare"},
	{Value: "shopping", Label: "Shopping"},
	{Value: "other", Label: "Other"},
}
