// Package retry provides bounded retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max
// attempts, initial delay, and maximum delay; it is used for cloud API
// calls and SSH dialing. [WithFixedDelay] retries with a constant delay
// and an optional recovery hook between attempts; it is used for the
// cluster init and join sequences.
package retry
