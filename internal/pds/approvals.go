package pds

import (
	"regexp"
	"strings"
)

var (
	// manufacturer / standards-body prefixes that identify an approval item
	approvalKeepRe = regexp.MustCompile(`(?i)\b(API|ACEA|ILSAC|JASO|SAE|VW|MB|BMW|FORD|GM|DEXOS|PSA|FIAT|RENAULT|VOLVO|MAN|SCANIA|DAF|MTU|ZF|CUMMINS|ALLISON|CAT|DEUTZ|JLR|PORSCHE)\b`)

	// item separators within an approvals fragment
	approvalSplitRe = regexp.MustCompile(`[;,\n•]`)

	codeTokenRe = regexp.MustCompile(`^[A-Za-z]*\d[\w./-]*$`)
)

// Below this ratio of code-shaped tokens a fragment is treated as
// free-running prose and skipped.
const minCodeTokenDensity = 0.5

// ApprovalsParser extracts approval/specification codes from an approvals
// section.
type ApprovalsParser struct{}

// NewApprovalsParser creates an approvals parser.
func NewApprovalsParser() *ApprovalsParser {
	return &ApprovalsParser{}
}

// Parse returns the ordered-unique approval codes found in the section.
// A nil section or a section without matching tokens yields an empty slice,
// never an error.
func (p *ApprovalsParser) Parse(section *Section) []string {
	out := []string{}
	if section == nil {
		return out
	}

	seen := make(map[string]bool)
	for _, frag := range section.Body() {
		text := collapseWhitespace(frag.Text)
		if text == "" || codeTokenDensity(text) < minCodeTokenDensity {
			continue
		}
		for _, part := range approvalSplitRe.Split(text, -1) {
			item := collapseWhitespace(part)
			if item == "" || !approvalKeepRe.MatchString(item) {
				continue
			}
			key := strings.ToLower(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
		}
	}
	return out
}

// codeTokenDensity is the ratio of code-shaped tokens to total tokens in a
// fragment. Approval lists score high, prose sentences score low.
func codeTokenDensity(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	code := 0
	for _, f := range fields {
		f = strings.Trim(f, ",;:.")
		if f == "" {
			continue
		}
		if approvalKeepRe.MatchString(f) || codeTokenRe.MatchString(f) || isShortUpper(f) {
			code++
		}
	}
	return float64(code) / float64(len(fields))
}

// isShortUpper matches bare grade tokens like "SN" or "C3".
func isShortUpper(s string) bool {
	if len(s) == 0 || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '/' {
			return false
		}
	}
	return true
}
