package sigv4

// Rule defines an interface for header validation rules.
// Reference: AWS SDK v4 signer internal/v4/header_rules.go
type Rule interface {
	IsValid(value string) bool
}

// MapRule is a map-based rule.
type MapRule map[string]struct{}

// IsValid returns true if the value exists in the map.
func (m MapRule) IsValid(value string) bool {
	_, ok := m[value]
	return ok
}

// ExcludeList is a rule that excludes values matching the inner rule.
type ExcludeList struct {
	Rule
}

// IsValid returns true if the value does NOT match the inner rule.
func (e ExcludeList) IsValid(value string) bool {
	return !e.Rule.IsValid(value)
}

// IgnoredHeaders lists headers that are never signed, regardless of
// whether the caller set them.
// Reference: AWS SDK v4 signer internal/v4/headers.go IgnoredHeaders
var IgnoredHeaders = ExcludeList{
	Rule: MapRule{
		"Authorization":     struct{}{},
		"User-Agent":        struct{}{},
		"X-Amzn-Trace-Id":   struct{}{},
		"Expect":            struct{}{},
		"Transfer-Encoding": struct{}{},
	},
}
