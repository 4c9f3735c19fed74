// Package clock provides the time source used by the credential packages.
//
// Every component that compares against wall-clock time (TOTP counters, token
// expiry) takes a Clock instead of calling time.Now directly, so tests and
// callers can pin time to a known instant.
//
// # Usage
//
//	c := clock.System()
//	fmt.Println(clock.UnixSeconds(c))
//
//	m := clock.NewMock(time.Unix(59, 0))
//	m.Advance(30 * time.Second)
//
// Mock is safe for concurrent use.
package clock
