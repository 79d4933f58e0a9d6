package utils

// ToStringSlice filters a JSON-decoded []any down to its string members.
// Claim values round-trip through JSON, so string slices come back as []any.
func ToStringSlice(slice []any) []string {
	stringSlice := make([]string, 0)
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}
