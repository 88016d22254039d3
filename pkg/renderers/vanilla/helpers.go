package vanilla

import "strings"

func componentControlID(id string) string {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return ""
	}
	return "rf-" + trimmed
}

func componentLabelID(id string) string {
	return suffixed(componentControlID(id), "label")
}

func componentHintID(id string) string {
	return suffixed(componentControlID(id), "hint")
}

func componentErrorID(id string) string {
	return suffixed(componentControlID(id), "errors")
}

func suffixed(id, suffix string) string {
	if id == "" {
		return ""
	}
	return id + "-" + suffix
}

// formMethod maps verbs browsers cannot submit onto POST plus an override
// input.
func formMethod(method string) (string, string) {
	switch upper := strings.ToUpper(strings.TrimSpace(method)); upper {
	case "", "POST":
		return "post", ""
	case "GET":
		return "get", ""
	default:
		return "post", upper
	}
}
