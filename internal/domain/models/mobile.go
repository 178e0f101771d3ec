package models

import "fmt"

// Mobile is a phone catalog entry
type Mobile struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Price   Money  `json:"price"`
}

func NewMobile(name, version string, price Money) Mobile {
	return Mobile{Name: name, Version: version, Price: price}
}

// PhonePrices returns "<name> <version>". Price is not part of the output.
func (m Mobile) PhonePrices() string {
	return fmt.Sprintf("%s %s", m.Name, m.Version)
}
