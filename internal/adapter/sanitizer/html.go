package sanitizer

import (
	"fmt"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer keeps the rich text subset the listing editor produces.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer builds the policy. Image sources must match imageSrcPattern.
func NewHTMLSanitizer(imageSrcPattern string) (*HTMLSanitizer, error) {
	srcPattern, err := regexp.Compile(imageSrcPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid image src pattern %q: %w", imageSrcPattern, err)
	}

	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowElements(
		"p", "br", "b", "strong", "i", "em", "u", "s",
		"ul", "ol", "li", "blockquote", "hr",
		"h1", "h2", "h3", "h4", "span",
	)
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	p.AllowDataURIImages()
	p.AllowAttrs("src").Matching(srcPattern).OnElements("img")
	p.AllowAttrs("alt", "width", "height").OnElements("img")

	return &HTMLSanitizer{policy: p}, nil
}

func (s *HTMLSanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
