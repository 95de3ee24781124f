package types

import (
	"reflect"
)

// SliceUnique returns a new slice with unique values from the given slice.
func SliceUnique[T comparable](slice []T) []T {
	visited := make(map[T]bool)
	var result []T
	for _, item := range slice {
		if _, ok := visited[item]; !ok {
			visited[item] = true
			result = append(result, item)
		}
	}
	return result
}

// SliceUnion appends values missing from data, keeping the order of first appearance.
// Values are compared deeply so literals decoded from documents (maps, slices) work too.
func SliceUnion[T any](data []T, values ...T) []T {
	for _, v := range values {
		found := false
		for _, existing := range data {
			if reflect.DeepEqual(existing, v) {
				found = true
				break
			}
		}
		if !found {
			data = append(data, v)
		}
	}
	return data
}

// AppendSliceFirstNonEmpty appends the first non-empty value to the given slice.
func AppendSliceFirstNonEmpty[T comparable](data []T, value ...T) []T {
	var empty T

	for _, v := range value {
		if v != empty {
			return append(data, v)
		}
	}
	return data
}
