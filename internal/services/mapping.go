package services

import (
	"fmt"
	"strconv"
	"strings"

	"complyforge/internal/models"
)

// Static correspondence tables between EU AI Act articles and NIST AI RMF
// subcategories. Fixed reference data, never derived at runtime.

var euToNIST = map[string][]string{
	"Article_5":  {"GOVERN.1.1"},
	"Article_6":  {"GOVERN.1.1", "MAP.1.1"},
	"Article_8":  {"GOVERN.1.2", "GOVERN.1.3"},
	"Article_9":  {"GOVERN.1.3", "MAP.1.1", "MAP.5.1", "MEASURE.3.1", "MANAGE.1.2"},
	"Article_10": {"MAP.2.3", "MEASURE.2.3", "MEASURE.2.11"},
	"Article_11": {"GOVERN.1.6", "MAP.2.3", "MANAGE.5.1"},
	"Article_12": {"GOVERN.1.6", "MEASURE.2.4", "MANAGE.5.1"},
	"Article_13": {"GOVERN.4.2", "MEASURE.2.8", "MANAGE.5.2"},
	"Article_14": {"GOVERN.3.2", "MAP.3.5", "MANAGE.2.4"},
	"Article_15": {"MEASURE.2.5", "MEASURE.2.6", "MEASURE.2.7", "MEASURE.2.9"},
	"Article_26": {"MANAGE.2.4", "MEASURE.2.4", "GOVERN.2.1"},
	"Article_27": {"MAP.3.5", "GOVERN.3.2", "MAP.3.1"},
	"Article_50": {"GOVERN.4.2", "MEASURE.2.8", "MANAGE.5.2"},
}

var nistToEU = map[string][]string{
	// GOVERN
	"GOVERN.1.1": {"Article_5", "Article_6"},
	"GOVERN.1.2": {"Article_8"},
	"GOVERN.1.3": {"Article_8", "Article_9"},
	"GOVERN.1.6": {"Article_11", "Article_12"},
	"GOVERN.2.1": {"Article_26"},
	"GOVERN.3.2": {"Article_14", "Article_27"},
	"GOVERN.4.2": {"Article_13", "Article_50"},

	// MAP
	"MAP.1.1": {"Article_6", "Article_9"},
	"MAP.2.3": {"Article_10", "Article_11"},
	"MAP.3.1": {"Article_27"},
	"MAP.3.5": {"Article_14", "Article_27"},
	"MAP.5.1": {"Article_9"},

	// MEASURE
	"MEASURE.2.3":  {"Article_10"},
	"MEASURE.2.4":  {"Article_12", "Article_26"},
	"MEASURE.2.5":  {"Article_15"},
	"MEASURE.2.6":  {"Article_15"},
	"MEASURE.2.7":  {"Article_15"},
	"MEASURE.2.8":  {"Article_13", "Article_50"},
	"MEASURE.2.9":  {"Article_15"},
	"MEASURE.2.11": {"Article_10"},
	"MEASURE.3.1":  {"Article_9"},

	// MANAGE
	"MANAGE.1.2": {"Article_9"},
	"MANAGE.2.4": {"Article_14", "Article_26"},
	"MANAGE.5.1": {"Article_11", "Article_12"},
	"MANAGE.5.2": {"Article_13", "Article_50"},
}

// ArticleKey renders an article number as the mapping key, e.g. "Article_9".
func ArticleKey(article int) string {
	return fmt.Sprintf("Article_%d", article)
}

// BuildCrossMapping returns the bidirectional associations restricted to the
// articles and subcategories actually surfaced by this assessment. Entries
// for requirements that were not surfaced are omitted on both sides.
func BuildCrossMapping(euArticles []int, nistSubcategories []string) models.CrossFrameworkMapping {
	mapping := models.CrossFrameworkMapping{
		EUToNIST: make(map[string][]string),
		NISTToEU: make(map[string][]string),
	}

	surfacedSubcategories := make(map[string]bool, len(nistSubcategories))
	for _, subcat := range nistSubcategories {
		surfacedSubcategories[subcat] = true
	}

	surfacedArticles := make(map[int]bool, len(euArticles))
	for _, article := range euArticles {
		surfacedArticles[article] = true
	}

	for _, article := range euArticles {
		key := ArticleKey(article)
		var related []string
		for _, subcat := range euToNIST[key] {
			if surfacedSubcategories[subcat] {
				related = append(related, subcat)
			}
		}
		if len(related) > 0 {
			mapping.EUToNIST[key] = related
		}
	}

	for _, subcat := range nistSubcategories {
		var related []string
		for _, articleKey := range nistToEU[subcat] {
			if surfacedArticles[articleNumber(articleKey)] {
				related = append(related, articleKey)
			}
		}
		if len(related) > 0 {
			mapping.NISTToEU[subcat] = related
		}
	}

	return mapping
}

// RelatedNISTSubcategories returns every subcategory associated with an EU
// article in the reference table.
func RelatedNISTSubcategories(article int) []string {
	return append([]string(nil), euToNIST[ArticleKey(article)]...)
}

// RelatedEUArticles returns every article key associated with a NIST
// subcategory in the reference table.
func RelatedEUArticles(subcategory string) []string {
	return append([]string(nil), nistToEU[subcategory]...)
}

func articleNumber(articleKey string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(articleKey, "Article_"))
	if err != nil {
		return 0
	}
	return n
}
