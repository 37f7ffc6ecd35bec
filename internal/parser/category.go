package parser

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/insightdelivered/finance-tracker/internal/models"
)

// keywordSet ties a category to the substrings that select it.
type keywordSet struct {
	Category models.Category
	Keywords []string
}

// categoryTable is ordered: when text matches several categories the
// earliest entry wins. Existing stored data was categorised with exactly
// this table and order.
var categoryTable = []keywordSet{
	{models.CategoryFood, []string{"latte", "coffee", "restaurant", "muffin", "tea", "snack", "cafe", "beverage"}},
	{models.CategoryTravel, []string{"uber", "ola", "auto", "flight", "train", "taxi", "bus", "cab"}},
	{models.CategoryShopping, []string{"amazon", "flipkart", "store", "mall", "purchase", "shopping", "groceries", "supermarket"}},
	{models.CategoryHealth, []string{"clinic", "hospital", "pharmacy", "medicines", "doctor", "health"}},
	{models.CategoryUtilities, []string{"electricity", "water bill", "internet", "recharge", "postpaid", "broadband", "mobile"}},
	{models.CategoryEntertainment, []string{"movie", "cinema", "netflix", "bookmyshow", "hotstar"}},
	{models.CategorySalary, []string{"salary", "credited", "income", "monthly pay", "payment received"}},
	{models.CategoryInvestment, []string{"mutual fund", "sip", "investment", "stock", "shares"}},
	{models.CategoryEducation, []string{"school", "tuition", "coaching", "university", "exam fees"}},
	{models.CategoryRent, []string{"rent", "landlord", "lease", "tenant"}},
}

// Classifier assigns a category to free text by keyword substring matching.
//
// All keywords live in a single Aho-Corasick automaton, so one pass over the
// text finds every keyword present; the winner is the matched keyword whose
// category comes first in the table. It is safe for concurrent use.
type Classifier struct {
	matcher *ahocorasick.Matcher
	rank    []int // keyword index -> position of its category in table
	table   []keywordSet
}

// NewClassifier builds a classifier over an ordered keyword table.
// Keywords are matched lower-case.
func NewClassifier(table []keywordSet) *Classifier {
	var dict []string
	var rank []int
	for i, set := range table {
		for _, kw := range set.Keywords {
			kw = strings.ToLower(kw)
			if kw == "" {
				continue
			}
			dict = append(dict, kw)
			rank = append(rank, i)
		}
	}

	c := &Classifier{rank: rank, table: table}
	if len(dict) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(dict)
	}
	return c
}

// Classify returns the first category in table order with a keyword that
// occurs anywhere in text, or Other.
func (c *Classifier) Classify(text string) models.Category {
	if c.matcher == nil || text == "" {
		return models.CategoryOther
	}

	hits := c.matcher.MatchThreadSafe([]byte(strings.ToLower(text)))
	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(c.rank) {
			continue
		}
		if r := c.rank[idx]; best == -1 || r < best {
			best = r
		}
	}
	if best == -1 {
		return models.CategoryOther
	}
	return c.table[best].Category
}

var defaultClassifier = NewClassifier(categoryTable)

// Classify runs the built-in keyword table over text.
func Classify(text string) models.Category {
	return defaultClassifier.Classify(text)
}

// Categories lists every label in priority order, Other last.
func Categories() []models.Category {
	out := make([]models.Category, 0, len(categoryTable)+1)
	for _, set := range categoryTable {
		out = append(out, set.Category)
	}
	return append(out, models.CategoryOther)
}

// Keywords returns a copy of the keywords that select c.
func Keywords(c models.Category) []string {
	for _, set := range categoryTable {
		if set.Category == c {
			return append([]string(nil), set.Keywords...)
		}
	}
	return nil
}

// IsCategory reports whether s is one of the known labels.
func IsCategory(s string) bool {
	for _, c := range Categories() {
		if string(c) == s {
			return true
		}
	}
	return false
}
