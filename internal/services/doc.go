// Package services contains the business logic layer between HTTP
// transport and the license store. Services own orchestration, logging
// and metrics; the protocol rules themselves live in internal/license and
// the critical section in internal/store.
package services
