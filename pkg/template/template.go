// Package template substitutes {{dot.path}} expressions against an execution
// context. Unresolved tokens are left verbatim so a partial context never
// crashes a run.
package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/cascadehq/cascade/pkg/models"
)

var (
	tokenPattern      = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+(?:\.[a-zA-Z0-9_]+)*)\s*\}\}`)
	wholeTokenPattern = regexp.MustCompile(`^\{\{\s*([a-zA-Z0-9_]+(?:\.[a-zA-Z0-9_]+)*)\s*\}\}$`)
)

// Render resolves every {{path}} token in the template against the context.
// Tokens whose path does not resolve are kept unchanged.
func Render(input string, executionCtx *models.ExecutionContext) string {
	return RenderMap(input, executionCtx.AsMap())
}

// RenderMap is Render against a bare context map.
func RenderMap(input string, context map[string]any) string {
	return tokenPattern.ReplaceAllStringFunc(input, func(token string) string {
		path := tokenPattern.FindStringSubmatch(token)[1]

		value, ok := models.LookupPath(context, path)
		if !ok {
			return token
		}

		return stringify(value)
	})
}

// RenderValue recurses into maps and slices, applying Render to every string
// leaf. A string that is exactly one token resolves to the referenced value
// itself, so configs can carry arrays and numbers through templates instead
// of their stringified form. Used to templatize whole action-config objects.
func RenderValue(value any, executionCtx *models.ExecutionContext) any {
	return renderValue(value, executionCtx.AsMap())
}

func renderValue(value any, context map[string]any) any {
	switch v := value.(type) {
	case string:
		if match := wholeTokenPattern.FindStringSubmatch(v); match != nil {
			resolved, ok := models.LookupPath(context, match[1])
			if !ok {
				return v
			}

			return resolved
		}

		return RenderMap(v, context)
	case map[string]any:
		rendered := make(map[string]any, len(v))
		for key, nested := range v {
			rendered[key] = renderValue(nested, context)
		}

		return rendered
	case []any:
		rendered := make([]any, len(v))
		for i, nested := range v {
			rendered[i] = renderValue(nested, context)
		}

		return rendered
	default:
		return value
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}
