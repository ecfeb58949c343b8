package extract

import "regexp"

// noisePatterns match class/id attributes of elements that carry page
// furniture rather than content. Matched case-insensitively.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bad(s|vert|vertisement)?\b`),
	regexp.MustCompile(`(?i)\b(nav|navbar|navigation|menu|breadcrumbs?)\b`),
	regexp.MustCompile(`(?i)\b(footer|site-footer|page-footer)\b`),
	regexp.MustCompile(`(?i)\b(sidebar|side-bar|widget|promo)\b`),
	regexp.MustCompile(`(?i)\b(comments?|disqus|discussion)\b`),
	regexp.MustCompile(`(?i)\b(share|sharing|social|sociable)\b`),
	regexp.MustCompile(`(?i)\b(cookie|consent|gdpr)\b`),
	regexp.MustCompile(`(?i)\b(popup|modal|overlay|banner)\b`),
	regexp.MustCompile(`(?i)\b(newsletter|subscribe|signup)\b`),
	regexp.MustCompile(`(?i)\b(related|recommended|read-more|more-stories)\b`),
}

// contentMarker matches class/id attributes that typically wrap the main
// article body. Used by the marker strategy after semantic containers fail.
var contentMarker = regexp.MustCompile(`(?i)\b(article|main|content|post|entry|story|body|text)\b`)

// nonContentTags are removed wholesale before any text extraction.
const nonContentTags = "script, style, noscript, iframe, svg, form, button"

func isNoise(classAttr, idAttr string) bool {
	attr := classAttr + " " + idAttr
	if attr == " " {
		return false
	}
	for _, p := range noisePatterns {
		if p.MatchString(attr) {
			return true
		}
	}
	return false
}
