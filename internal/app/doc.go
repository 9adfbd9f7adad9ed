// Package app is the application layer, the only component that references
// multiple domain components. It owns the stream lifecycle state machine:
// merchant actions drive the durable record forward, webhook events from the
// video platform update the liveness hint and, in terminal cases, the record.
package app
