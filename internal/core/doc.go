// Package core provides the business logic of the nutrition table.
//
// This package ties the table engine to the remote store and is independent
// of any UI or transport layer. The web server, the terminal UI and tests
// all drive it the same way.
//
// # Architecture
//
//   - Service: one per process. Owns the gateway, the table defaults and the
//     global request limiter.
//   - Session: one per user. Owns a [table.Table], the add/update form and
//     pending notices. Load, Save and DeleteSelected talk to the gateway.
//   - Registry: live sessions by id, swept when idle.
//
// # Consistency
//
// Gateway calls run with no lock held. When a call completes its outcome is
// applied to the table as one mutation batch, so a reader never observes a
// selection that names a missing row or a page past the end. Delete fans
// out one request per selected row, waits for all of them, then removes
// successes and remote not-founds together. Failed rows stay selected.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError].
// Each category has a code for support reference:
//
//   - NET001-NET003: network failures and timeouts
//   - PARSE001: unreadable remote data
//   - VAL001-VAL003: rejected drafts
//   - NF001, TBL001-TBL003: missing rows and bad table intents
//   - DEL001: partial delete
package core
