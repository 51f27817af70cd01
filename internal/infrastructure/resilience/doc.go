/*
Package resilience provides circuit breakers for graceful degradation.

# Overview

A Breaker stops calling a dependency that keeps failing and lets a few
trial calls through once a timeout has passed. A Group hands out one
breaker per name; the module registry uses it to isolate misbehaving
module types, and the remote fragment client uses a single breaker for its
upstream.

# Usage

	breaker := resilience.New("remote-fragments", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	err := breaker.Do(func() error {
		return fetch()
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
