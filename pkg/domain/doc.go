// Package domain contains the core domain entities and types used by the
// application. These types represent the business concepts (disposable domain
// sets, authorization decisions, refresh outcomes and email check results) and
// are intentionally free of infrastructure concerns so they can be shared
// across packages.
package domain
