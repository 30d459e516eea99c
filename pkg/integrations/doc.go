// Package integrations fetches the STIX objects that location2stix stamps
// onto everything it produces.
//
// Two objects are fetched per run: the authoring identity and its marking
// definition. Each is a single GET with no retry; any transport failure,
// non-2xx status or malformed body aborts the run.
//
//	c := integrations.NewClient(10*time.Second, nil)
//	identity, err := c.FetchObject(ctx, integrations.DefaultIdentityURL)
//
// Errors carry both a sentinel ([ErrNetwork], [ErrNotFound]) for errors.Is
// and a code from the errors package.
package integrations
