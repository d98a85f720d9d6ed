package utils

// Unique removes duplicate values from a slice, keeping first occurrences in order.
func Unique[T comparable](slice []T) []T {
	keys := make(map[T]struct{}, len(slice))
	list := make([]T, 0, len(slice))
	for _, entry := range slice {
		if _, seen := keys[entry]; !seen {
			keys[entry] = struct{}{}
			list = append(list, entry)
		}
	}
	return list
}

// Toggle adds v when absent or removes it when present, reporting whether v is now a member.
func Toggle[T comparable](slice []T, v T) ([]T, bool) {
	for i, entry := range slice {
		if entry == v {
			return append(slice[:i:i], slice[i+1:]...), false
		}
	}
	return append(slice, v), true
}
