package recommender

import (
	"strings"

	"securecam-site/models"
)

// matchLevel records which stage of the search chain found a product
type matchLevel int

const (
	noMatch matchLevel = iota
	keywordMatch
	anyTagMatch
	exactTagMatch
)

// findProduct runs the search chain: products carrying every tag, then products
// carrying any tag, then products matching a keyword phrase. The first stage with
// candidates wins and the cheapest candidate is returned; ties keep input order.
func findProduct(products []models.Product, tags []string, keywords []string) (models.Product, matchLevel) {
	return findProductIn(products, tags, tags, keywords)
}

// findProductIn is findProduct with a separate tag list for the any-tag stage,
// so a sized lookup can fall back to its family tag alone without a bare size
// tag pulling in a device of another family
func findProductIn(products []models.Product, allTags, anyTags []string, keywords []string) (models.Product, matchLevel) {
	if p, ok := cheapest(products, func(p models.Product) bool { return p.HasAllTags(allTags) }); ok {
		return p, exactTagMatch
	}
	if p, ok := cheapest(products, func(p models.Product) bool { return p.HasAnyTag(anyTags) }); ok {
		return p, anyTagMatch
	}
	if p, ok := cheapest(products, func(p models.Product) bool { return matchesAnyPhrase(p, keywords) }); ok {
		return p, keywordMatch
	}
	return models.Product{}, noMatch
}

// withoutCameras drops camera products; they are never suggested as system hardware
func withoutCameras(products []models.Product, cameraTags []string) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !p.HasAnyTag(cameraTags) {
			out = append(out, p)
		}
	}
	return out
}

func cheapest(products []models.Product, match func(models.Product) bool) (models.Product, bool) {
	var best models.Product
	found := false
	for _, p := range products {
		if !match(p) {
			continue
		}
		if !found || p.PriceNet < best.PriceNet {
			best = p
			found = true
		}
	}
	return best, found
}

// matchesAnyPhrase reports whether p matches at least one phrase. A phrase
// matches when each of its words appears as a whole word somewhere in the
// product text.
func matchesAnyPhrase(p models.Product, phrases []string) bool {
	for _, phrase := range phrases {
		words := strings.Fields(phrase)
		if len(words) == 0 {
			continue
		}
		all := true
		for _, w := range words {
			if !p.MatchesKeyword(w) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
