// Package broker fans call events out to front-end subscribers. A call's
// worker publishes its progress and terminal events to a topic; any number
// of hooks (tabs, status bars, remote viewers) subscribe without affecting
// the call itself. The local broker serves in-process front-ends; the NATS
// broker serves front-ends on the other side of a connection.
//
// Events are advisory for subscribers. The call's own terminal emission
// goes through its Call future, never through the broker, so a slow or
// dropped subscriber cannot lose a result.
package broker
