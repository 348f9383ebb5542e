// Package services runs the warehouse load phases.
//
// SchemaManager drops and recreates the tables under the lenient-continue
// policy. LoadOrchestrator copies S3 files into the staging tables and then
// populates the star schema under the fail-fast policy. Pipeline runs both in
// sequence on separate sessions.
//
// Every statement is committed on its own, so work done before a failure
// persists. Nothing is retried.
package services
