package evaluator

import (
	"regexp"

	"originate-hq/meridian/pkg/loan"
	"originate-hq/meridian/pkg/rules"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// interpolate resolves {{placeholder}} tokens in question instructions
// against the merged evaluation context (entity fields already win over
// loan fields there). Placeholders normalize like field names; unresolved
// placeholders are left literal so a template typo is visible rather than
// silently blank.
func interpolate(instructions string, evalCtx rules.Context) string {
	return placeholderPattern.ReplaceAllStringFunc(instructions, func(token string) string {
		name := placeholderPattern.FindStringSubmatch(token)[1]
		v, ok := evalCtx[loan.NormalizeFieldName(name)]
		if !ok || v.IsNull() {
			return token
		}
		return v.Display()
	})
}
