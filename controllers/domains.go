package controllers

import (
	"nagarseva-be/models"
)

// Domain carries the per-domain wiring for the shared request controller:
// which collection backs it, which typed-category field the payload uses and
// which values that field accepts. Lifecycle vocabulary lives on
// models.RequestDomain.
type Domain struct {
	Name       models.RequestDomain
	Collection string
	TypeField  string
	TypeValues map[string]bool
}

var wasteDomain = Domain{
	Name:       models.DomainWaste,
	Collection: "wasterequests",
	TypeField:  "wasteType",
	TypeValues: map[string]bool{
		"Household": true, "E-Waste": true, "Construction Debris": true,
		"Garden": true, "Hazardous": true, "Other": true,
	},
}

var waterDomain = Domain{
	Name:       models.DomainWater,
	Collection: "waterrequests",
	TypeField:  "issueType",
	TypeValues: map[string]bool{
		"Leakage": true, "No Supply": true, "Contamination": true,
		"Low Pressure": true, "Sewage Overflow": true, "Other": true,
	},
}

// Domains returns the service domains the request routes are registered for.
func Domains() []Domain {
	return []Domain{wasteDomain, waterDomain}
}
