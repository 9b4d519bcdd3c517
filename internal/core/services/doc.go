// Package services holds the ingestion, answering and settings logic.
//
// Services depend only on domain types and driven ports; every adapter is
// injected through a constructor.
package services
