package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy
)

// sanitizeHelp keeps the inline markup a formula author may use in help
// text (links, emphasis, code) and strips everything else.
func sanitizeHelp(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	helpPolicyOnce.Do(func() {
		helpPolicy = bluemonday.UGCPolicy()
		helpPolicy.RequireNoFollowOnLinks(true)
		helpPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})
	return helpPolicy.Sanitize(trimmed)
}
