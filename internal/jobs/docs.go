// Package jobs provides scheduled background tasks for the fulfillment
// system, implemented with github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. PaymentTimeoutJob - Runs every minute to sweep orders whose payment
// window expired, reconciling against the gateway before abandoning.
//
// 2. ShipmentStatusJob - Runs every five minutes to poll the carrier for
// shipped orders, announcing real track numbers and delivery progress.
//
// 3. OutboxDispatchJob - Runs every five seconds to deliver committed
// outbox messages to the buyer's chat and the status event stream.
//
// All jobs are thin schedulers around command handlers; the handlers own
// the transactional semantics.
package jobs
