// Package pollledger implements the public poll ledger inside the
// governance context.
//
// The module owns poll lifecycle orchestration (create/vote/close), tally
// and voter-record reads, and poll event production through outbox-backed
// workers. It keeps business rules in application/domain layers and isolates
// infrastructure concerns behind ports and adapters.
package pollledger
