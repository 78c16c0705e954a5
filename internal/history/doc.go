// Package history persists device state transitions.
//
// Every transition observed by the lifecycle layer is recorded with its
// origin (command, reconciliation poll, or terminal exit), giving an audit
// trail queryable per device through the API.
package history
