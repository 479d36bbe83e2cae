package ledger

import (
	"regexp"
	"sort"
	"strings"

	"subtracker/internal/models"
)

// categoryKeywords extends categories whose name contains the key.
var categoryKeywords = map[string][]string{
	"salary":             {"salary", "wages", "pay", "payroll", "employment"},
	"investment returns": {"investment return", "mutual fund", "mf", "returns", "dividend", "interest", "redemption", "redeemed"},
	"freelance":          {"freelance", "contract", "consulting", "project", "gig"},
	"other income":       {"miscellaneous", "misc", "other income"},
	"deposit":            {"deposit", "cash deposit", "bank deposit"},
	"food":               {"grocery", "groceries", "food", "dining", "restaurant", "swiggy", "zomato", "supermarket", "mart", "bazaar"},
	"utilities":          {"electricity", "electric", "power", "utility", "internet", "broadband", "water", "bill payment"},
	"transportation":     {"transport", "fuel", "petrol", "diesel", "metro", "bus", "taxi", "uber", "ola", "travel", "cab"},
	"health":             {"health", "medical", "doctor", "hospital", "pharmacy", "medicine", "clinic", "prescription", "gym"},
	"shopping":           {"shopping", "purchase", "store", "retail", "amazon", "flipkart", "mall", "market", "shop"},
	"emi":                {"emi", "loan", "credit card", "mortgage", "debt", "installment", "insurance", "repaid"},
	"investment":         {"invest", "mutual fund", "stocks", "shares", "securities", "sip", "portfolio"},
	"entertainment":      {"entertainment", "movie", "theatre", "recreation", "game", "sports", "leisure"},
	"internal transfer":  {"transfer", "internal", "between accounts"},
	"cash withdrawal":    {"atm", "withdrawal", "cash withdrawal"},
	"wallet":             {"wallet", "paytm", "phonepe", "top up", "topup"},
}

// Words that say nothing about the category, including the journal's
// top-level account names.
var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "from": true, "with": true, "to": true, "of": true,
	"other": true, "self": true, "account": true, "accounts": true,
	"income": true, "expense": true, "expenses": true, "assets": true, "liabilities": true,
	"bank": true, "banking": true, "payments": true,
}

// fallbackCategory is used when nothing matches.
var fallbackCategory = map[models.TransactionType][]string{
	models.TransactionTypeIncome:   {"Other Income"},
	models.TransactionTypeExpense:  {"Other Expense", "Shopping"},
	models.TransactionTypeTransfer: {"Internal Transfer"},
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

func normalize(s string) string {
	return strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(s), " "))
}

type candidate struct {
	category models.Category
	keywords []string
}

// Matcher picks a category for a journal entry from its description and
// account names.
type Matcher struct {
	byType map[models.CategoryType][]candidate
	byName map[string]models.Category
}

// NewMatcher builds keyword lists for categories. Name and description words
// are keywords too.
func NewMatcher(categories []models.Category) *Matcher {
	sorted := append([]models.Category(nil), categories...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	m := &Matcher{
		byType: make(map[models.CategoryType][]candidate),
		byName: make(map[string]models.Category),
	}
	for _, c := range sorted {
		m.byName[strings.ToLower(c.Name)] = c
		m.byType[c.Type] = append(m.byType[c.Type], candidate{category: c, keywords: keywordsFor(c)})
	}
	return m
}

func keywordsFor(c models.Category) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, w := range strings.Fields(normalize(c.Name + " " + c.Description)) {
		if len(w) > 2 && !stopWords[w] {
			add(w)
		}
	}
	name := strings.ToLower(c.Name)
	for key, words := range categoryKeywords {
		if strings.Contains(name, key) {
			for _, w := range words {
				add(normalize(w))
			}
		}
	}
	return out
}

// Match returns the category of the given type whose keywords occur most often
// as whole words in description and account, with the number of keyword hits.
// Ties go to the lower ID. With no hits it returns the fallback category and 0;
// ok is false only when the type has no categories at all.
func (m *Matcher) Match(description, account string, t models.TransactionType) (models.Category, int, bool) {
	text := " " + normalize(description+" "+account) + " "

	var (
		best     models.Category
		bestHits int
	)
	for _, c := range m.byType[models.CategoryType(t)] {
		hits := 0
		for _, k := range c.keywords {
			if strings.Contains(text, " "+k+" ") {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = c.category, hits
		}
	}
	if bestHits > 0 {
		return best, bestHits, true
	}

	for _, name := range fallbackCategory[t] {
		if c, ok := m.byName[strings.ToLower(name)]; ok && string(c.Type) == string(t) {
			return c, 0, true
		}
	}
	if cs := m.byType[models.CategoryType(t)]; len(cs) > 0 {
		return cs[0].category, 0, true
	}
	return models.Category{}, 0, false
}
