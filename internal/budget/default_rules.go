package budget

import "github.com/Veraticus/the-books-must-balance/internal/model"

// DefaultRules returns the built-in classification rules.
func DefaultRules() []Rule {
	return []Rule{
		// Savings
		{
			Name:     "Savings",
			Class:    model.ClassSaving,
			Regex:    `\b(savings?|emergency\s*fund|invest\w*|brokerage|retirement|401k|ira|pension)\b`,
			Priority: 100,
		},
		{
			Name:     "Debt Payoff",
			Class:    model.ClassSaving,
			Regex:    `\b(extra\s*payment|pay\s*off|prepay\w*)\b`,
			Priority: 95,
		},

		// Needs
		{
			Name:     "Housing",
			Class:    model.ClassNeed,
			Regex:    `\b(rent|mortgage|hoa|property\s*tax)\b`,
			Priority: 90,
		},
		{
			Name:     "Utilities",
			Class:    model.ClassNeed,
			Regex:    `\b(utilit\w*|electric\w*|water|gas|internet|phone|mobile)\b`,
			Priority: 85,
		},
		{
			Name:     "Groceries",
			Class:    model.ClassNeed,
			Regex:    `\b(grocer\w*|supermarket|market)\b`,
			Priority: 85,
		},
		{
			Name:     "Health",
			Class:    model.ClassNeed,
			Regex:    `\b(insurance|pharmac\w*|medical|doctor|hospital|dentist|health)\b`,
			Priority: 85,
		},
		{
			Name:     "Transport",
			Class:    model.ClassNeed,
			Regex:    `\b(transport\w*|bus|metro|train|fuel|petrol|parking)\b`,
			Priority: 80,
		},
		{
			Name:     "Obligations",
			Class:    model.ClassNeed,
			Regex:    `\b(loan|installment|tuition|school|childcare|tax(es)?)\b`,
			Priority: 80,
		},

		// Wants
		{
			Name:     "Dining",
			Class:    model.ClassWant,
			Regex:    `\b(restaurant|dining|takeout|delivery|coffee|cafe|bar)\b`,
			Priority: 70,
		},
		{
			Name:     "Entertainment",
			Class:    model.ClassWant,
			Regex:    `\b(netflix|spotify|cinema|movies?|games?|concert|entertainment|subscription)\b`,
			Priority: 70,
		},
		{
			Name:     "Leisure",
			Class:    model.ClassWant,
			Regex:    `\b(travel|vacation|hotel|shopping|clothes|gifts?|hobby)\b`,
			Priority: 65,
		},
	}
}
