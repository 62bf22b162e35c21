package main

import (
	"fmt"
	"strings"
)

// flagSet represents a flag that is either set (true) or not set (false).
type flagSet struct {
	name  string
	isSet bool
}

// requireAtMostOne returns an error if more than one of the given flags is set.
func requireAtMostOne(flags ...flagSet) error {
	var set []string
	for _, f := range flags {
		if f.isSet {
			set = append(set, f.name)
		}
	}
	if len(set) > 1 {
		return fmt.Errorf("%s cannot be used together", strings.Join(set, " and "))
	}
	return nil
}

// parseHeaders converts ["key:value", ...] to map[string]string
func parseHeaders(headers []string) map[string]string {
	result := make(map[string]string)
	for _, h := range headers {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) == 2 {
			result[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return result
}
