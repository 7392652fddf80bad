// Package types defines the shared data model of the Pathwei admin core:
// fetch results, server-reported pagination, pagination state, CRUD flags,
// access roles, the admin entities, the Collection interface, configuration,
// and the standard error values.
package types
