package imagesearch

import (
	"strings"

	"github.com/kmenu/backend/internal/domain"
)

// Scoring weights for Korean search candidates
const (
	weightTrustedBlog    = 10 // URL hosted on an authentic Korean food blog
	weightNameInTitle    = 5  // dish name appears in the candidate title
	weightFoodKeyword    = 3  // per food/cuisine keyword in the title
	weightNoiseKeyword   = -5 // per incidental non-food keyword in the title
	weightStockExactName = 5  // exact dish-name keyword in stock alt text
	weightStockKorean    = 3  // "korean" in stock alt text
	weightStockFood      = 2  // per generic food keyword in stock alt text
)

// Accuracy tier thresholds shared by all adapters
const (
	scoreHighThreshold   = 8
	scoreMediumThreshold = 4
)

// trustedBlogDomains are Korean blog/content hosts whose food photos are
// overwhelmingly authentic. A hit forces accuracy high regardless of the
// numeric score.
var trustedBlogDomains = []string{
	"blog.naver.com",
	"m.blog.naver.com",
	"post.naver.com",
	"tistory.com",
	"blog.daum.net",
}

// excludedDomains block external fetches (hotlink protection) or serve
// commerce listings instead of dish photos. Candidates from these hosts
// are skipped regardless of score.
var excludedDomains = []string{
	"shopping.naver.com",
	"shop-phinf.pstatic.net",
	"smartstore.naver.com",
	"shopping.phinf.naver.net",
	"coupang.com",
	"gmarket.co.kr",
}

// foodTitleKeywords indicate the candidate title is about food or cooking
var foodTitleKeywords = []string{
	"음식", "요리", "맛집", "레시피", "한식", "식당", "먹방", "반찬",
	"food", "recipe", "dish", "cuisine", "restaurant",
}

// noiseTitleKeywords indicate the image is probably not of the dish itself
var noiseTitleKeywords = []string{
	"사람", "인물", "건물", "풍경", "인테리어", "지도", "간판",
	"people", "person", "building", "landscape", "interior", "map",
}

// koreanCandidate is one raw result from the Korean-specialized search
type koreanCandidate struct {
	Title string
	Link  string
}

// isExcludedDomain reports whether the URL belongs to a host known to
// block external fetches
func isExcludedDomain(url string) bool {
	lower := strings.ToLower(url)
	for _, domain := range excludedDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// isTrustedBlog reports whether the URL is hosted on an authentic Korean
// blog domain
func isTrustedBlog(url string) bool {
	lower := strings.ToLower(url)
	for _, domain := range trustedBlogDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// scoreKoreanCandidate computes the relevance of one Korean search result
// for the target dish. Pure function: no network, fully unit-testable.
func scoreKoreanCandidate(c koreanCandidate, koreanName string) int {
	score := 0
	title := strings.ToLower(c.Title)

	if isTrustedBlog(c.Link) {
		score += weightTrustedBlog
	}

	if koreanName != "" && strings.Contains(c.Title, koreanName) {
		score += weightNameInTitle
	}

	for _, kw := range foodTitleKeywords {
		if strings.Contains(title, kw) {
			score += weightFoodKeyword
		}
	}

	for _, kw := range noiseTitleKeywords {
		if strings.Contains(title, kw) {
			score += weightNoiseKeyword
		}
	}

	return score
}

// koreanAccuracy derives the accuracy tier for a Korean search candidate.
// Authentic blog origin forces high regardless of the numeric score.
func koreanAccuracy(c koreanCandidate, score int) domain.Accuracy {
	if isTrustedBlog(c.Link) {
		return domain.AccuracyHigh
	}
	return accuracyFromScore(score)
}

// scoreStockCandidate computes the relevance of a stock photo's alt
// text/tags for the target dish name
func scoreStockCandidate(altText, dishName string) int {
	score := 0
	alt := strings.ToLower(altText)
	dish := strings.ToLower(dishName)

	if dish != "" {
		// Exact dish-name keyword match is weighted highest
		for _, token := range strings.Fields(dish) {
			if len(token) > 2 && strings.Contains(alt, token) {
				score += weightStockExactName
			}
		}
	}

	if strings.Contains(alt, "korean") {
		score += weightStockKorean
	}

	for _, kw := range []string{"food", "dish", "cuisine", "meal", "cooking"} {
		if strings.Contains(alt, kw) {
			score += weightStockFood
		}
	}

	return score
}

// accuracyFromScore maps a numeric relevance score to a coarse tier
func accuracyFromScore(score int) domain.Accuracy {
	switch {
	case score >= scoreHighThreshold:
		return domain.AccuracyHigh
	case score >= scoreMediumThreshold:
		return domain.AccuracyMedium
	default:
		return domain.AccuracyLow
	}
}
