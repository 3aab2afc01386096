package domain

import "strings"

type Location struct {
	ID                    ID     `json:"id"`
	Name                  string `json:"name"`
	Address               string `json:"address,omitempty"`
	NumberOfActiveDevices int    `json:"numberOfActiveDevices"`
}

// SearchTerms splits free text on whitespace; each term is sent as its own searchTerms value.
func SearchTerms(text string) []string {
	return strings.Fields(text)
}
